// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search performs the planned web searches. A Searcher resolves one
// task into a free-text summary; the Executor fans all tasks of a stage out
// concurrently and collects whatever summaries come back.
package search

import (
	"context"
	"fmt"

	"github.com/AlenaBukilic/research-helper/internal/llm"
	"github.com/AlenaBukilic/research-helper/pkg/types"
)

// searcherInstructions is the system prompt for the search model.
const searcherInstructions = `You are a research assistant. Given a search term, you search the web for that term and produce a concise summary of the results. The summary must be 2-3 paragraphs and less than 300 words. Capture the main points. Write succinctly; no need for complete sentences or perfect grammar. This will be consumed by someone synthesizing a report, so it is vital you capture the essence and ignore any fluff. Do not include any additional commentary other than the summary itself.`

// Searcher resolves one search task into a summary.
type Searcher interface {
	Search(ctx context.Context, task types.SearchTask) (string, error)
}

// Completer abstracts the model call so tests can supply a mock.
type Completer interface {
	Complete(ctx context.Context, r llm.Request) (string, error)
}

// AgentSearcher performs a search by delegating to a web-search capable
// model.
type AgentSearcher struct {
	Backend Completer

	// Model optionally overrides the backend's default model; search runs
	// often use a cheaper or search-tuned model than synthesis.
	Model string
}

// Search runs one search task and returns the model's summary.
func (s *AgentSearcher) Search(ctx context.Context, task types.SearchTask) (string, error) {
	input := fmt.Sprintf("Search term: %s\nReason for searching: %s", task.Term, task.Reason)
	out, err := s.Backend.Complete(ctx, llm.Request{
		Model:        s.Model,
		Instructions: searcherInstructions,
		Input:        input,
	})
	if err != nil {
		return "", fmt.Errorf("search %q: %w", task.Term, err)
	}
	return out, nil
}
