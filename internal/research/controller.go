// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research drives the iterative research loop: plan the searches,
// run them, synthesize a report, evaluate it, and keep going until the
// quality bar is met or the iteration budget runs out.
package research

import (
	"context"
	"fmt"

	"github.com/AlenaBukilic/research-helper/pkg/types"
)

// Terminal states of one research run.
type State string

const (
	// StateDone means the evaluator accepted the report.
	StateDone State = "done"

	// StateExhausted means the iteration cap was reached without meeting
	// the quality bar; the latest report stands.
	StateExhausted State = "exhausted"
)

// Policy defaults when ResearchConfig leaves them zero.
const (
	DefaultQualityThreshold = 0.8
	DefaultMaxIterations    = 3
)

// Planner plans the web searches for a query.
type Planner interface {
	Plan(ctx context.Context, query string) ([]types.SearchTask, error)
}

// SearchExecutor runs a stage's search tasks and returns the summaries of
// the ones that succeeded.
type SearchExecutor interface {
	Execute(ctx context.Context, tasks []types.SearchTask, progress func(completed, total int)) []string
}

// Writer synthesizes a report from the query and collected summaries.
type Writer interface {
	Write(ctx context.Context, query string, summaries []string) (types.ReportDraft, error)
}

// Evaluator judges a report against the query.
type Evaluator interface {
	Evaluate(ctx context.Context, query string, report types.ReportDraft) (types.EvaluationVerdict, error)
}

// Refiner rewrites the query from evaluator feedback.
type Refiner interface {
	Refine(ctx context.Context, query, feedback string) (string, error)
}

// Controller is the research-loop state machine. It owns the iteration
// state exclusively and performs no I/O of its own; all external work goes
// through the injected collaborators.
type Controller struct {
	Planner   Planner
	Searches  SearchExecutor
	Writer    Writer
	Evaluator Evaluator
	Refiner   Refiner

	Config types.ResearchConfig

	// Progress, when set, receives the human-readable stage messages in
	// transition order.
	Progress func(msg string)
}

// Outcome is the terminal result of a run: which terminal state was
// reached, the final report, the verdict that ended the loop, and how many
// evaluate cycles ran.
type Outcome struct {
	State      State
	Report     types.ReportDraft
	Verdict    types.EvaluationVerdict
	Iterations int

	// Query is the query the final report answers; it differs from the
	// input when the loop refined it along the way.
	Query string
}

func (c *Controller) emit(msg string) {
	if c.Progress != nil {
		c.Progress(msg)
	}
}

func (c *Controller) searchProgress(completed, total int) {
	c.emit(fmt.Sprintf("Searching... %d/%d completed", completed, total))
}

// Run executes the loop for the given query. Planning, synthesis,
// evaluation, and refinement failures abort the run; search failures never
// do. On success or exhaustion the latest report is returned — no
// best-so-far is tracked.
func (c *Controller) Run(ctx context.Context, query string) (Outcome, error) {
	threshold := c.Config.QualityThreshold
	if threshold <= 0 {
		threshold = DefaultQualityThreshold
	}
	maxIterations := c.Config.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	tasks, err := c.Planner.Plan(ctx, query)
	if err != nil {
		return Outcome{}, fmt.Errorf("planning searches: %w", err)
	}
	c.emit("Searches planned, starting to search...")

	var summaries []string
	iterations := 0

	for {
		summaries = append(summaries, c.Searches.Execute(ctx, tasks, c.searchProgress)...)
		c.emit("Searches complete, writing report...")

		report, err := c.Writer.Write(ctx, query, summaries)
		if err != nil {
			return Outcome{}, fmt.Errorf("writing report: %w", err)
		}
		c.emit("Report written, evaluating...")

		verdict, err := c.Evaluator.Evaluate(ctx, query, report)
		if err != nil {
			return Outcome{}, fmt.Errorf("evaluating report: %w", err)
		}
		iterations++

		outcome := Outcome{
			Report:     report,
			Verdict:    verdict,
			Iterations: iterations,
			Query:      query,
		}

		if verdict.QualityScore >= threshold && verdict.IsComplete {
			outcome.State = StateDone
			c.emit("Evaluation passed, research complete")
			return outcome, nil
		}
		if iterations >= maxIterations {
			outcome.State = StateExhausted
			c.emit("Iteration limit reached, returning latest report")
			return outcome, nil
		}

		switch {
		case verdict.NeedsMoreSearches && len(verdict.SuggestedSearches) > 0:
			// Cheaper corrective action first: run the suggested searches
			// directly, keeping everything already collected.
			tasks = tasksFromSuggestions(verdict)
			c.emit("More searches needed, searching again...")

		case !verdict.NeedsMoreSearches && len(verdict.MissingAspects) > 0:
			// The query itself is judged to be the problem: rewrite it and
			// start over with a fresh evidence set.
			refined, err := c.Refiner.Refine(ctx, query, verdict.Feedback)
			if err != nil {
				return Outcome{}, fmt.Errorf("refining query: %w", err)
			}
			query = refined
			summaries = nil
			c.emit("Query refined, replanning searches...")

			tasks, err = c.Planner.Plan(ctx, query)
			if err != nil {
				return Outcome{}, fmt.Errorf("planning searches: %w", err)
			}
			c.emit("Searches planned, starting to search...")

		default:
			// No corrective signal (or suggestions were promised but
			// missing): re-plan the current query and take another pass,
			// keeping the collected summaries.
			tasks, err = c.Planner.Plan(ctx, query)
			if err != nil {
				return Outcome{}, fmt.Errorf("planning searches: %w", err)
			}
			c.emit("Evaluation inconclusive, searching again...")
		}
	}
}

// tasksFromSuggestions turns the verdict's suggested search terms into
// tasks. The suggestions carry no per-term reasons, so the verdict's
// feedback serves as the shared reason.
func tasksFromSuggestions(verdict types.EvaluationVerdict) []types.SearchTask {
	reason := verdict.Feedback
	if reason == "" {
		reason = "Suggested by report evaluation"
	}
	tasks := make([]types.SearchTask, 0, len(verdict.SuggestedSearches))
	for _, term := range verdict.SuggestedSearches {
		tasks = append(tasks, types.SearchTask{Term: term, Reason: reason})
	}
	return tasks
}
