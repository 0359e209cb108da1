// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trace provides the per-run correlation identifier threaded through
// every external call. The identifier is an opaque token with no business
// meaning; it exists so one run's model calls can be grouped in provider-side
// logs and dashboards.
package trace

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ctxKey is the private context key type for run identifiers.
type ctxKey struct{}

// NewRunID returns a fresh correlation token of the form "trace_<32 hex>".
func NewRunID() string {
	return "trace_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// WithRunID returns a context carrying the given run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RunID extracts the run identifier from the context, or "" when absent.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
