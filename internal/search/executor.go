// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"

	"github.com/AlenaBukilic/research-helper/pkg/types"
)

// Executor runs all planned search tasks of a stage concurrently and
// collects the successful summaries. Search is best-effort: a failing task
// contributes nothing and is otherwise ignored, so partial search failure
// never aborts a run.
type Executor struct {
	Searcher Searcher
}

// outcome is one task's result crossing the fan-in channel.
type outcome struct {
	summary string
	ok      bool
}

// Execute launches every task at once and returns the summaries of the
// tasks that succeeded, in completion order. progress, when non-nil, is
// called once per completed task (success or failure) with the running
// completion count and the stage total. An empty task list returns
// immediately with no calls made. Which summary belonged to which task is
// not preserved.
func (e *Executor) Execute(ctx context.Context, tasks []types.SearchTask, progress func(completed, total int)) []string {
	if len(tasks) == 0 {
		return nil
	}

	results := make(chan outcome, len(tasks))
	for _, task := range tasks {
		go func(t types.SearchTask) {
			summary, err := e.Searcher.Search(ctx, t)
			results <- outcome{summary: summary, ok: err == nil && summary != ""}
		}(task)
	}

	var summaries []string
	for completed := 1; completed <= len(tasks); completed++ {
		r := <-results
		if r.ok {
			summaries = append(summaries, r.summary)
		}
		if progress != nil {
			progress(completed, len(tasks))
		}
	}
	return summaries
}
