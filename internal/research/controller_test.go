// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlenaBukilic/research-helper/pkg/types"
)

// fakePlanner returns a scripted plan per call, recording the queries it
// was asked to plan for.
type fakePlanner struct {
	plans   [][]types.SearchTask
	err     error
	queries []string
}

func (p *fakePlanner) Plan(ctx context.Context, query string) ([]types.SearchTask, error) {
	p.queries = append(p.queries, query)
	if p.err != nil {
		return nil, p.err
	}
	call := len(p.queries) - 1
	if call >= len(p.plans) {
		call = len(p.plans) - 1
	}
	return p.plans[call], nil
}

// fakeExecutor returns one summary per task and records every stage's
// tasks.
type fakeExecutor struct {
	stages [][]types.SearchTask
}

func (e *fakeExecutor) Execute(ctx context.Context, tasks []types.SearchTask, progress func(completed, total int)) []string {
	e.stages = append(e.stages, tasks)
	summaries := make([]string, 0, len(tasks))
	for i, task := range tasks {
		summaries = append(summaries, fmt.Sprintf("summary of %q", task.Term))
		if progress != nil {
			progress(i+1, len(tasks))
		}
	}
	return summaries
}

// fakeWriter numbers its reports and records the summaries each one saw.
type fakeWriter struct {
	calls     int
	summaries [][]string
	err       error
}

func (w *fakeWriter) Write(ctx context.Context, query string, summaries []string) (types.ReportDraft, error) {
	if w.err != nil {
		return types.ReportDraft{}, w.err
	}
	w.calls++
	w.summaries = append(w.summaries, append([]string(nil), summaries...))
	return types.ReportDraft{
		ShortSummary:   fmt.Sprintf("draft %d", w.calls),
		MarkdownReport: fmt.Sprintf("# Report %d", w.calls),
	}, nil
}

// fakeEvaluator hands out scripted verdicts in order.
type fakeEvaluator struct {
	verdicts []types.EvaluationVerdict
	calls    int
	err      error
}

func (e *fakeEvaluator) Evaluate(ctx context.Context, query string, report types.ReportDraft) (types.EvaluationVerdict, error) {
	if e.err != nil {
		return types.EvaluationVerdict{}, e.err
	}
	verdict := e.verdicts[e.calls]
	e.calls++
	return verdict, nil
}

type fakeRefiner struct {
	refined string
	calls   int
	err     error
}

func (r *fakeRefiner) Refine(ctx context.Context, query, feedback string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.refined, nil
}

func passingVerdict() types.EvaluationVerdict {
	return types.EvaluationVerdict{QualityScore: 0.9, IsComplete: true}
}

func newController(planner Planner, executor SearchExecutor, writer Writer, evaluator Evaluator, refiner Refiner) *Controller {
	return &Controller{
		Planner:   planner,
		Searches:  executor,
		Writer:    writer,
		Evaluator: evaluator,
		Refiner:   refiner,
	}
}

func TestControllerDoneFirstIteration(t *testing.T) {
	planner := &fakePlanner{plans: [][]types.SearchTask{{
		{Term: "go schedulers", Reason: "core topic"},
		{Term: "goroutine preemption", Reason: "background"},
	}}}
	executor := &fakeExecutor{}
	writer := &fakeWriter{}
	evaluator := &fakeEvaluator{verdicts: []types.EvaluationVerdict{passingVerdict()}}
	refiner := &fakeRefiner{}

	outcome, err := newController(planner, executor, writer, evaluator, refiner).Run(context.Background(), "how do go schedulers work")
	require.NoError(t, err)

	assert.Equal(t, StateDone, outcome.State)
	assert.Equal(t, 1, outcome.Iterations)
	assert.Equal(t, "# Report 1", outcome.Report.MarkdownReport)
	assert.Equal(t, "how do go schedulers work", outcome.Query)
	assert.Zero(t, refiner.calls)
	require.Len(t, writer.summaries, 1)
	assert.Len(t, writer.summaries[0], 2)
}

func TestControllerExhaustsIterationBudget(t *testing.T) {
	failing := types.EvaluationVerdict{QualityScore: 0.4, IsComplete: false}
	planner := &fakePlanner{plans: [][]types.SearchTask{{{Term: "q", Reason: "r"}}}}
	executor := &fakeExecutor{}
	writer := &fakeWriter{}
	evaluator := &fakeEvaluator{verdicts: []types.EvaluationVerdict{failing, failing, failing}}

	controller := newController(planner, executor, writer, evaluator, &fakeRefiner{})
	controller.Config.MaxIterations = 3

	outcome, err := controller.Run(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, StateExhausted, outcome.State)
	assert.Equal(t, 3, outcome.Iterations)
	assert.Equal(t, 3, evaluator.calls)
	// The latest report stands, not the first one.
	assert.Equal(t, "# Report 3", outcome.Report.MarkdownReport)
}

func TestControllerRunsSuggestedSearches(t *testing.T) {
	planner := &fakePlanner{plans: [][]types.SearchTask{{{Term: "initial", Reason: "start"}}}}
	executor := &fakeExecutor{}
	writer := &fakeWriter{}
	evaluator := &fakeEvaluator{verdicts: []types.EvaluationVerdict{
		{
			QualityScore:      0.5,
			NeedsMoreSearches: true,
			SuggestedSearches: []string{"deeper term", "another angle"},
			Feedback:          "coverage is thin",
		},
		passingVerdict(),
	}}

	outcome, err := newController(planner, executor, writer, evaluator, &fakeRefiner{}).Run(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, StateDone, outcome.State)
	assert.Equal(t, 2, outcome.Iterations)

	// One plan only; the second stage comes from the verdict.
	assert.Len(t, planner.queries, 1)
	require.Len(t, executor.stages, 2)
	require.Len(t, executor.stages[1], 2)
	assert.Equal(t, "deeper term", executor.stages[1][0].Term)
	assert.Equal(t, "coverage is thin", executor.stages[1][0].Reason)

	// Summaries accumulate across stages.
	require.Len(t, writer.summaries, 2)
	assert.Len(t, writer.summaries[1], 3)
}

func TestControllerRefinesQuery(t *testing.T) {
	planner := &fakePlanner{plans: [][]types.SearchTask{
		{{Term: "broad", Reason: "first pass"}, {Term: "also broad", Reason: "first pass"}},
		{{Term: "focused", Reason: "after refinement"}},
	}}
	executor := &fakeExecutor{}
	writer := &fakeWriter{}
	evaluator := &fakeEvaluator{verdicts: []types.EvaluationVerdict{
		{
			QualityScore:   0.3,
			MissingAspects: []string{"cost analysis"},
			Feedback:       "no cost analysis",
		},
		passingVerdict(),
	}}
	refiner := &fakeRefiner{refined: "query, including cost analysis"}

	outcome, err := newController(planner, executor, writer, evaluator, refiner).Run(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, StateDone, outcome.State)
	assert.Equal(t, 1, refiner.calls)
	assert.Equal(t, []string{"query", "query, including cost analysis"}, planner.queries)
	assert.Equal(t, "query, including cost analysis", outcome.Query)

	// Refinement starts the evidence set over: the second report sees only
	// the second stage's single summary.
	require.Len(t, writer.summaries, 2)
	assert.Len(t, writer.summaries[0], 2)
	assert.Len(t, writer.summaries[1], 1)
}

func TestControllerReplansWithoutCorrectiveSignal(t *testing.T) {
	planner := &fakePlanner{plans: [][]types.SearchTask{{{Term: "q", Reason: "r"}}}}
	executor := &fakeExecutor{}
	writer := &fakeWriter{}
	evaluator := &fakeEvaluator{verdicts: []types.EvaluationVerdict{
		{QualityScore: 0.6, IsComplete: false},
		passingVerdict(),
	}}
	refiner := &fakeRefiner{}

	outcome, err := newController(planner, executor, writer, evaluator, refiner).Run(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, StateDone, outcome.State)
	assert.Zero(t, refiner.calls)
	assert.Equal(t, []string{"query", "query"}, planner.queries)

	// Collected summaries are kept across the replan.
	require.Len(t, writer.summaries, 2)
	assert.Len(t, writer.summaries[1], 2)
}

func TestControllerMoreSearchesTakesPrecedenceOverRefinement(t *testing.T) {
	planner := &fakePlanner{plans: [][]types.SearchTask{{{Term: "q", Reason: "r"}}}}
	evaluator := &fakeEvaluator{verdicts: []types.EvaluationVerdict{
		{
			QualityScore:      0.5,
			NeedsMoreSearches: true,
			SuggestedSearches: []string{"extra"},
			MissingAspects:    []string{"depth"},
			Feedback:          "needs both",
		},
		passingVerdict(),
	}}
	refiner := &fakeRefiner{refined: "should not be used"}

	outcome, err := newController(planner, &fakeExecutor{}, &fakeWriter{}, evaluator, refiner).Run(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, StateDone, outcome.State)
	assert.Zero(t, refiner.calls)
	assert.Equal(t, "query", outcome.Query)
}

func TestControllerStageErrors(t *testing.T) {
	stageErr := errors.New("backend unreachable")
	passing := passingVerdict()

	tests := []struct {
		name  string
		build func() *Controller
		want  string
	}{
		{
			name: "planner",
			build: func() *Controller {
				return newController(&fakePlanner{err: stageErr}, &fakeExecutor{}, &fakeWriter{}, &fakeEvaluator{}, &fakeRefiner{})
			},
			want: "planning searches",
		},
		{
			name: "writer",
			build: func() *Controller {
				planner := &fakePlanner{plans: [][]types.SearchTask{{{Term: "q", Reason: "r"}}}}
				return newController(planner, &fakeExecutor{}, &fakeWriter{err: stageErr}, &fakeEvaluator{}, &fakeRefiner{})
			},
			want: "writing report",
		},
		{
			name: "evaluator",
			build: func() *Controller {
				planner := &fakePlanner{plans: [][]types.SearchTask{{{Term: "q", Reason: "r"}}}}
				return newController(planner, &fakeExecutor{}, &fakeWriter{}, &fakeEvaluator{err: stageErr}, &fakeRefiner{})
			},
			want: "evaluating report",
		},
		{
			name: "refiner",
			build: func() *Controller {
				planner := &fakePlanner{plans: [][]types.SearchTask{{{Term: "q", Reason: "r"}}}}
				evaluator := &fakeEvaluator{verdicts: []types.EvaluationVerdict{
					{QualityScore: 0.2, MissingAspects: []string{"depth"}, Feedback: "shallow"},
					passing,
				}}
				return newController(planner, &fakeExecutor{}, &fakeWriter{}, evaluator, &fakeRefiner{err: stageErr})
			},
			want: "refining query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Run(context.Background(), "query")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.ErrorIs(t, err, stageErr)
		})
	}
}

func TestControllerProgressOrder(t *testing.T) {
	planner := &fakePlanner{plans: [][]types.SearchTask{{{Term: "q", Reason: "r"}}}}
	evaluator := &fakeEvaluator{verdicts: []types.EvaluationVerdict{passingVerdict()}}

	controller := newController(planner, &fakeExecutor{}, &fakeWriter{}, evaluator, &fakeRefiner{})
	var messages []string
	controller.Progress = func(msg string) { messages = append(messages, msg) }

	_, err := controller.Run(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Searches planned, starting to search...",
		"Searching... 1/1 completed",
		"Searches complete, writing report...",
		"Report written, evaluating...",
		"Evaluation passed, research complete",
	}, messages)
}
