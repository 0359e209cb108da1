// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/AlenaBukilic/research-helper/internal/compose"
	"github.com/AlenaBukilic/research-helper/internal/trace"
	"github.com/AlenaBukilic/research-helper/pkg/types"
)

// Finalizer resolves the final user-visible text for a finished run,
// optionally delivering it by email first. A non-nil error means the text
// is a failure message rather than the report.
type Finalizer interface {
	Finalize(ctx context.Context, report types.ReportDraft, send bool, address string) (string, error)
}

// emailPattern accepts syntactically plausible addresses; real validation
// is SendGrid's job.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RunRequest carries one research request from the surface layer.
type RunRequest struct {
	// Query is the user's research query, before clarification.
	Query string

	// Answers are the user's answers to the clarifying questions, in
	// question order. Blank entries are skipped; nil means the
	// clarification step was skipped entirely.
	Answers []string

	// SendEmail requests delivery of the finished report to Recipient.
	SendEmail bool
	Recipient string
}

// Manager ties the research loop to delivery and streams progress to the
// caller.
type Manager struct {
	Controller *Controller
	Gate       Finalizer
}

// Run starts a research run and returns its progress stream. The first
// message carries the run's trace ID, intermediate messages report stage
// transitions, and the last message is always the final text: the report
// on success, the delivery confirmation when email was requested, or an
// "Error:" line when the run could not finish. The channel is closed once
// the final message is sent.
func (m *Manager) Run(ctx context.Context, req RunRequest) <-chan string {
	out := make(chan string, 16)

	go func() {
		defer close(out)

		if strings.TrimSpace(req.Query) == "" {
			out <- "Error: Please enter a research query."
			return
		}
		if req.SendEmail {
			addr := strings.TrimSpace(req.Recipient)
			if addr == "" {
				out <- "Error: An email address is required to send the report."
				return
			}
			if !emailPattern.MatchString(addr) {
				out <- "Error: Please provide a valid email address."
				return
			}
		}

		runID := trace.NewRunID()
		ctx := trace.WithRunID(ctx, runID)
		out <- fmt.Sprintf("Trace ID: %s", runID)
		out <- "Starting research..."

		query := compose.Compose(req.Query, req.Answers)

		controller := *m.Controller
		controller.Progress = func(msg string) { out <- msg }

		outcome, err := controller.Run(ctx, query)
		if err != nil {
			out <- fmt.Sprintf("Error: %v", err)
			return
		}

		if req.SendEmail && outcome.State == StateDone {
			out <- "Report written, sending email..."
			final, err := m.Gate.Finalize(ctx, outcome.Report, true, req.Recipient)
			if err != nil {
				out <- final
				return
			}
			out <- "Email sent, research complete"
			out <- final
			return
		}

		out <- "Report complete"
		final, _ := m.Gate.Finalize(ctx, outcome.Report, false, "")
		out <- final
	}()

	return out
}
