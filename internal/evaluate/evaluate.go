// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evaluate grades a report draft against the research query via the
// evaluator model and enforces the verdict's structural contract.
package evaluate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AlenaBukilic/research-helper/internal/llm"
	"github.com/AlenaBukilic/research-helper/pkg/types"
)

// ErrInvalidVerdict marks an evaluator response that could not be decoded
// into a usable verdict. Evaluation failures are fatal to the run.
var ErrInvalidVerdict = errors.New("invalid evaluation verdict")

// evaluatorInstructions is the system prompt for the evaluator model.
const evaluatorInstructions = `You are a quality evaluator for research reports. Your job is to assess whether a research report adequately addresses the original query.

Evaluate the report on:
1. Completeness - Does it fully answer the original query?
2. Quality - Is the information accurate, well-structured, and comprehensive?
3. Gaps - What aspects of the query are missing or insufficiently covered?
4. Search needs - Would additional searches improve the report?

Be thorough but fair. If the report is high quality and complete, indicate that. If there are gaps, be specific about what's missing and suggest what additional searches might help.

Respond with a JSON object of the form {"quality_score": 0.0-1.0, "is_complete": true|false, "missing_aspects": ["..."], "needs_more_searches": true|false, "suggested_searches": ["..."], "feedback": "..."}. quality_score grades the report where 1.0 is excellent and complete; suggested_searches must be empty unless needs_more_searches is true. Do not include any text outside the JSON object.`

// Completer abstracts the model call so tests can supply a mock.
type Completer interface {
	Complete(ctx context.Context, r llm.Request) (string, error)
}

// Evaluator is the report-quality adapter.
type Evaluator struct {
	Backend Completer
}

// verdictWire mirrors EvaluationVerdict with a pointer for is_complete so
// an absent field is distinguishable from an explicit false.
type verdictWire struct {
	QualityScore      float64  `json:"quality_score"`
	IsComplete        *bool    `json:"is_complete"`
	MissingAspects    []string `json:"missing_aspects"`
	NeedsMoreSearches bool     `json:"needs_more_searches"`
	SuggestedSearches []string `json:"suggested_searches"`
	Feedback          string   `json:"feedback"`
}

// Evaluate asks the evaluator model to judge the report against the query.
// A response that cannot be decoded, omits is_complete, or carries a
// quality_score outside [0.0, 1.0] is reported as ErrInvalidVerdict.
func (e *Evaluator) Evaluate(ctx context.Context, query string, report types.ReportDraft) (types.EvaluationVerdict, error) {
	input := fmt.Sprintf("Original query: %s\n\nReport to evaluate:\n%s", query, report.MarkdownReport)

	out, err := e.Backend.Complete(ctx, llm.Request{
		Instructions: evaluatorInstructions,
		Input:        input,
		JSONObject:   true,
	})
	if err != nil {
		return types.EvaluationVerdict{}, fmt.Errorf("evaluator call: %w", err)
	}

	var wire verdictWire
	if err := json.Unmarshal([]byte(out), &wire); err != nil {
		return types.EvaluationVerdict{}, fmt.Errorf("%w: decoding evaluator response: %v", ErrInvalidVerdict, err)
	}

	if wire.IsComplete == nil {
		return types.EvaluationVerdict{}, fmt.Errorf("%w: is_complete is missing", ErrInvalidVerdict)
	}
	if wire.QualityScore < 0.0 || wire.QualityScore > 1.0 {
		return types.EvaluationVerdict{}, fmt.Errorf("%w: quality_score %v out of range", ErrInvalidVerdict, wire.QualityScore)
	}

	return types.EvaluationVerdict{
		QualityScore:      wire.QualityScore,
		IsComplete:        *wire.IsComplete,
		MissingAspects:    wire.MissingAspects,
		NeedsMoreSearches: wire.NeedsMoreSearches,
		SuggestedSearches: wire.SuggestedSearches,
		Feedback:          wire.Feedback,
	}, nil
}
