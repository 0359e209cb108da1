// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package write synthesizes collected search summaries into a structured
// research report via the writer model.
package write

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AlenaBukilic/research-helper/internal/llm"
	"github.com/AlenaBukilic/research-helper/pkg/types"
)

// ErrInvalidReport marks a writer response that could not be decoded into a
// report draft. Synthesis failures are fatal to the run.
var ErrInvalidReport = errors.New("invalid report")

// writerInstructions is the system prompt for the writer model.
const writerInstructions = `You are a senior researcher tasked with writing a cohesive report for a research query. You will be provided with the original query and summarized search results.

First come up with an outline for the report that describes its structure and flow. Then generate the report. The final output should be in markdown format, lengthy and detailed: aim for 5-10 pages of content, at least 1000 words.

Respond with a JSON object of the form {"short_summary": "...", "markdown_report": "...", "follow_up_questions": ["..."]} where short_summary is a 2-3 sentence summary of the findings and follow_up_questions lists suggested topics to research further. Do not include any text outside the JSON object.`

// Completer abstracts the model call so tests can supply a mock.
type Completer interface {
	Complete(ctx context.Context, r llm.Request) (string, error)
}

// Writer is the report-synthesis adapter.
type Writer struct {
	Backend Completer
}

// Write asks the writer model for a report covering the query, grounded in
// the collected summaries. The summary set may be empty; the writer then
// works from the query alone. An undecodable response or one with an empty
// report body is reported as ErrInvalidReport.
func (w *Writer) Write(ctx context.Context, query string, summaries []string) (types.ReportDraft, error) {
	var input strings.Builder
	fmt.Fprintf(&input, "Original query: %s\n", query)
	input.WriteString("Summarized search results:\n")
	if len(summaries) == 0 {
		input.WriteString("(no search results were collected)\n")
	}
	for i, s := range summaries {
		fmt.Fprintf(&input, "[%d] %s\n", i+1, s)
	}

	out, err := w.Backend.Complete(ctx, llm.Request{
		Instructions: writerInstructions,
		Input:        input.String(),
		JSONObject:   true,
	})
	if err != nil {
		return types.ReportDraft{}, fmt.Errorf("writer call: %w", err)
	}

	var draft types.ReportDraft
	if err := json.Unmarshal([]byte(out), &draft); err != nil {
		return types.ReportDraft{}, fmt.Errorf("%w: decoding writer response: %v", ErrInvalidReport, err)
	}
	if strings.TrimSpace(draft.MarkdownReport) == "" {
		return types.ReportDraft{}, fmt.Errorf("%w: empty markdown_report", ErrInvalidReport)
	}

	return draft, nil
}
