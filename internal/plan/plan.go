// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan turns a research query into a validated list of web search
// tasks via the planner model.
package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AlenaBukilic/research-helper/internal/llm"
	"github.com/AlenaBukilic/research-helper/pkg/types"
)

// ErrInvalidPlan marks a planner response that could not be decoded into a
// usable search plan. Planning failures are fatal to the run.
var ErrInvalidPlan = errors.New("invalid search plan")

// plannerInstructions is the system prompt for the planner model.
const plannerInstructions = `You are a helpful research assistant. Given a research query, come up with a set of web searches to perform to best answer the query. Output between 3 and 5 search terms.

For each search provide:
- query: the web search term
- reason: why this search is important to answering the research query

Respond with a JSON object of the form {"searches": [{"query": "...", "reason": "..."}]}. Do not include any text outside the JSON object.`

// Completer abstracts the model call so tests can supply a mock.
type Completer interface {
	Complete(ctx context.Context, r llm.Request) (string, error)
}

// Planner is the search-planning adapter.
type Planner struct {
	Backend Completer
}

// searchPlan is the planner model's wire shape.
type searchPlan struct {
	Searches []types.SearchTask `json:"searches"`
}

// Plan asks the planner model for search tasks covering the query. A
// response that cannot be decoded, contains no searches, or contains a
// blank search term is reported as ErrInvalidPlan.
func (p *Planner) Plan(ctx context.Context, query string) ([]types.SearchTask, error) {
	out, err := p.Backend.Complete(ctx, llm.Request{
		Instructions: plannerInstructions,
		Input:        "Query: " + query,
		JSONObject:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("planner call: %w", err)
	}

	var sp searchPlan
	if err := json.Unmarshal([]byte(out), &sp); err != nil {
		return nil, fmt.Errorf("%w: decoding planner response: %v", ErrInvalidPlan, err)
	}

	if len(sp.Searches) == 0 {
		return nil, fmt.Errorf("%w: planner returned no searches", ErrInvalidPlan)
	}
	for i, task := range sp.Searches {
		if strings.TrimSpace(task.Term) == "" {
			return nil, fmt.Errorf("%w: search %d has an empty term", ErrInvalidPlan, i)
		}
	}

	return sp.Searches, nil
}
