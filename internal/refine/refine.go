// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refine rewrites a research query using evaluator feedback, for the
// case where the query itself — not the collected evidence — is the problem.
package refine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlenaBukilic/research-helper/internal/llm"
)

// ErrEmptyRefinement marks an optimizer response with no usable query text.
var ErrEmptyRefinement = errors.New("empty refined query")

// refinerInstructions is the system prompt for the optimizer model.
const refinerInstructions = `You are a query optimizer for research. Your job is to refine and improve research queries based on evaluation feedback.

Given an original query and evaluation feedback, generate an improved, more focused research query that addresses the gaps and issues identified in the evaluation.

The refined query should:
- Maintain the core intent of the original query
- Address specific gaps mentioned in the evaluation
- Be more precise and focused
- Lead to better search results

Return only the refined query text, no additional commentary.`

// Completer abstracts the model call so tests can supply a mock.
type Completer interface {
	Complete(ctx context.Context, r llm.Request) (string, error)
}

// Refiner is the query-optimization adapter.
type Refiner struct {
	Backend Completer
}

// Refine returns an improved query for the given original and feedback.
func (r *Refiner) Refine(ctx context.Context, query, feedback string) (string, error) {
	input := fmt.Sprintf("Original query: %s\n\nEvaluation feedback:\n%s", query, feedback)

	out, err := r.Backend.Complete(ctx, llm.Request{
		Instructions: refinerInstructions,
		Input:        input,
	})
	if err != nil {
		return "", fmt.Errorf("refiner call: %w", err)
	}

	refined := strings.TrimSpace(out)
	if refined == "" {
		return "", ErrEmptyRefinement
	}
	return refined, nil
}
