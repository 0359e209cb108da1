// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no client timeout;
	// a model call is then bounded only by the caller's context.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-helper/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for components that call a chat-completion API.
type AIConfig struct {
	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for rate-limited or
	// transiently failing API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ResearchConfig holds the iteration policy for the research loop.
type ResearchConfig struct {
	// QualityThreshold is the minimum evaluator score that, together with a
	// complete verdict, ends the loop (default 0.8).
	QualityThreshold float64 `json:"quality_threshold" yaml:"quality_threshold"`

	// MaxIterations caps the number of search/write/evaluate cycles before
	// the loop gives up and returns the latest report (default 3).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// SearchModel optionally overrides the model used for individual
	// searches; empty means AIConfig.Model.
	SearchModel string `json:"search_model,omitempty" yaml:"search_model,omitempty"`
}

// EmailConfig holds settings for the email delivery agent.
type EmailConfig struct {
	// SendGridAPIKey authenticates against the SendGrid v3 mail send API.
	SendGridAPIKey string `json:"sendgrid_api_key,omitempty" yaml:"sendgrid_api_key,omitempty"`

	// FromAddress is the sender address for outgoing reports.
	FromAddress string `json:"from_address" yaml:"from_address"`
}

// HelperConfig groups all component configurations for a run.
type HelperConfig struct {
	HTTP     HTTPConfig     `json:"http" yaml:"http"`
	AI       AIConfig       `json:"ai" yaml:"ai"`
	Research ResearchConfig `json:"research" yaml:"research"`
	Email    EmailConfig    `json:"email" yaml:"email"`
}
