// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is the raw-HTTP chat-completion client shared by every
// model-backed stage. Each stage wraps it behind its own small interface so
// tests can supply a mock; this package only knows how to move a prompt to
// the API and a message back.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/AlenaBukilic/research-helper/internal/httputil"
	"github.com/AlenaBukilic/research-helper/internal/trace"
	"github.com/AlenaBukilic/research-helper/pkg/types"
)

// APIURL is the chat-completions endpoint. Package-level var for test substitution.
var APIURL = "https://api.openai.com/v1/chat/completions"

// Client calls an OpenAI-compatible chat-completion API.
type Client struct {
	APIKey     string
	Model      string
	UserAgent  string
	MaxRetries int
	HTTPClient *http.Client
}

// NewClient builds a client from the shared AI and HTTP configuration.
func NewClient(ai types.AIConfig, httpCfg types.HTTPConfig) *Client {
	return &Client{
		APIKey:     ai.APIKey,
		Model:      ai.Model,
		UserAgent:  httpCfg.UserAgent,
		MaxRetries: ai.MaxRetries,
		HTTPClient: &http.Client{Timeout: httpCfg.Timeout},
	}
}

// Request is one chat-completion call: a system instruction, a user input,
// and whether the response must be a JSON object.
type Request struct {
	// Model overrides the client's default model when non-empty.
	Model string

	// Instructions is the system prompt defining the agent's role.
	Instructions string

	// Input is the user message for this call.
	Input string

	// JSONObject requests the API's JSON response mode so the reply can be
	// decoded into a structured type.
	JSONObject bool
}

// chat API wire types.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
	User           string              `json:"user,omitempty"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat-completion request and returns the reply text.
// The run's correlation identifier, when present on the context, rides along
// as the API user field so provider-side logs can group one run's calls.
func (c *Client) Complete(ctx context.Context, r Request) (string, error) {
	model := r.Model
	if model == "" {
		model = c.Model
	}

	var messages []chatMessage
	if r.Instructions != "" {
		messages = append(messages, chatMessage{Role: "system", Content: r.Instructions})
	}
	messages = append(messages, chatMessage{Role: "user", Content: r.Input})

	reqBody := chatRequest{
		Model:    model,
		Messages: messages,
		User:     trace.RunID(ctx),
	}
	if r.JSONObject {
		reqBody.ResponseFormat = &chatResponseFormat{Type: "json_object"}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, APIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling model API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("model API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding model response: %w", err)
	}

	if len(cResp.Choices) == 0 {
		return "", fmt.Errorf("model API returned no choices")
	}

	return cResp.Choices[0].Message.Content, nil
}
