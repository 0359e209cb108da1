// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deliver hands a finished report to the email delivery agent and
// recovers the clean report body from the agent's confirmation-framed
// response.
package deliver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AlenaBukilic/research-helper/internal/httputil"
	"github.com/AlenaBukilic/research-helper/internal/llm"
	"github.com/AlenaBukilic/research-helper/pkg/types"
)

// ConfirmationMarker is the fixed prefix the delivery agent puts in front of
// a successful send. The gate's stripping logic is a parsing contract
// against this exact string; change both together or not at all.
const ConfirmationMarker = "✅ Email sent successfully"

// SendGridAPIURL is the SendGrid v3 mail send endpoint. Package-level var
// for test substitution.
var SendGridAPIURL = "https://api.sendgrid.com/v3/mail/send"

// ErrMissingAddress is returned when delivery is requested without a
// recipient address.
var ErrMissingAddress = errors.New("recipient address is required")

// emailInstructions is the system prompt for the email-composition model.
const emailInstructions = `You are an email agent that sends research reports via email.
You will receive a research report in markdown format. Your job is to:
1. Convert the markdown report to clean, well-presented HTML
2. Create an appropriate subject line for the email

Respond with a JSON object of the form {"subject": "...", "html_body": "..."}. Do not include any text outside the JSON object.`

// Completer abstracts the model call so tests can supply a mock.
type Completer interface {
	Complete(ctx context.Context, r llm.Request) (string, error)
}

// Deliverer sends a finished report to an address and returns the agent's
// response text, which frames the report body with a confirmation preamble.
type Deliverer interface {
	Deliver(ctx context.Context, report types.ReportDraft, address string) (string, error)
}

// EmailAgent composes an email from the report via the model and sends it
// through the SendGrid v3 API.
type EmailAgent struct {
	Backend    Completer
	HTTPClient *http.Client

	// APIKey authenticates the SendGrid call; From is the sender address.
	APIKey string
	From   string

	MaxRetries int
}

// emailContent is the model's wire shape for the composed email.
type emailContent struct {
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

// SendGrid v3 wire types.
type sgMail struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgAddress struct {
	Email string `json:"email"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Deliver converts the report to an email via the model, sends it once
// through SendGrid, and returns the confirmation-framed response text the
// gate expects.
func (a *EmailAgent) Deliver(ctx context.Context, report types.ReportDraft, address string) (string, error) {
	if strings.TrimSpace(address) == "" {
		return "", ErrMissingAddress
	}

	out, err := a.Backend.Complete(ctx, llm.Request{
		Instructions: emailInstructions,
		Input:        report.MarkdownReport,
		JSONObject:   true,
	})
	if err != nil {
		return "", fmt.Errorf("email composition: %w", err)
	}

	var content emailContent
	if err := json.Unmarshal([]byte(out), &content); err != nil {
		return "", fmt.Errorf("decoding email composition: %w", err)
	}
	if strings.TrimSpace(content.Subject) == "" {
		content.Subject = "Your research report"
	}
	if strings.TrimSpace(content.HTMLBody) == "" {
		return "", fmt.Errorf("email composition returned an empty body")
	}

	if err := a.send(ctx, content, address); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s to %s.\n\n%s", ConfirmationMarker, address, report.MarkdownReport), nil
}

// send posts the composed email to the SendGrid v3 mail send API.
func (a *EmailAgent) send(ctx context.Context, content emailContent, address string) error {
	mail := sgMail{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: strings.TrimSpace(address)}}}},
		From:             sgAddress{Email: a.From},
		Subject:          content.Subject,
		Content:          []sgContent{{Type: "text/html", Value: content.HTMLBody}},
	}

	bodyBytes, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("marshaling mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, SendGridAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.APIKey)

	client := a.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, a.MaxRetries)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SendGrid returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
