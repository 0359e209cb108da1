// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures and configuration for
// the research loop.
package types

// SearchTask is one planned web search: the term to search for and the
// planner's reason for wanting it. Immutable once planned.
type SearchTask struct {
	// Term is the search query text.
	Term string `json:"query" yaml:"query"`

	// Reason explains why this search contributes to the research query.
	Reason string `json:"reason" yaml:"reason"`
}

// ReportDraft is one synthesized research report. Every synthesis pass
// produces a fresh draft; drafts are never patched in place.
type ReportDraft struct {
	// ShortSummary is a 2-3 sentence summary of the findings.
	ShortSummary string `json:"short_summary" yaml:"short_summary"`

	// MarkdownReport is the full report body.
	MarkdownReport string `json:"markdown_report" yaml:"markdown_report"`

	// FollowUpQuestions lists suggested topics for further research.
	FollowUpQuestions []string `json:"follow_up_questions" yaml:"follow_up_questions"`
}

// EvaluationVerdict is the evaluator's structured judgement of one report.
type EvaluationVerdict struct {
	// QualityScore grades the report from 0.0 to 1.0.
	QualityScore float64 `json:"quality_score" yaml:"quality_score"`

	// IsComplete reports whether the report fully addresses the query.
	IsComplete bool `json:"is_complete" yaml:"is_complete"`

	// MissingAspects lists topics the report does not cover adequately.
	MissingAspects []string `json:"missing_aspects" yaml:"missing_aspects"`

	// NeedsMoreSearches indicates additional searches would improve the report.
	NeedsMoreSearches bool `json:"needs_more_searches" yaml:"needs_more_searches"`

	// SuggestedSearches lists search terms to run when NeedsMoreSearches is set.
	SuggestedSearches []string `json:"suggested_searches" yaml:"suggested_searches"`

	// Feedback is free-text commentary on quality and gaps.
	Feedback string `json:"feedback" yaml:"feedback"`
}

// ClarifyingQuestion is a single question refining a research query.
type ClarifyingQuestion struct {
	Question string `json:"question" yaml:"question"`
}

// ClarifyingQuestions holds the fixed set of three questions the clarifier
// produces for a query.
type ClarifyingQuestions struct {
	Questions []ClarifyingQuestion `json:"questions" yaml:"questions"`
}
