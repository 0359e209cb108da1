// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package write

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlenaBukilic/research-helper/internal/llm"
)

type fakeBackend struct {
	out     string
	err     error
	lastReq llm.Request
}

func (f *fakeBackend) Complete(_ context.Context, r llm.Request) (string, error) {
	f.lastReq = r
	return f.out, f.err
}

func TestWrite_DecodesDraft(t *testing.T) {
	backend := &fakeBackend{out: `{
		"short_summary": "Remote work reshaped housing demand.",
		"markdown_report": "# Report\n\nBody.",
		"follow_up_questions": ["What about rural areas?"]
	}`}
	w := &Writer{Backend: backend}

	draft, err := w.Write(context.Background(), "remote work", []string{"summary one", "summary two"})
	require.NoError(t, err)

	assert.Equal(t, "Remote work reshaped housing demand.", draft.ShortSummary)
	assert.Equal(t, "# Report\n\nBody.", draft.MarkdownReport)
	assert.Equal(t, []string{"What about rural areas?"}, draft.FollowUpQuestions)

	assert.True(t, backend.lastReq.JSONObject)
	assert.Contains(t, backend.lastReq.Input, "Original query: remote work")
	assert.Contains(t, backend.lastReq.Input, "[1] summary one")
	assert.Contains(t, backend.lastReq.Input, "[2] summary two")
}

func TestWrite_ToleratesEmptySummaries(t *testing.T) {
	backend := &fakeBackend{out: `{"short_summary":"s","markdown_report":"# R","follow_up_questions":[]}`}
	w := &Writer{Backend: backend}

	_, err := w.Write(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Contains(t, backend.lastReq.Input, "no search results were collected")
}

func TestWrite_Failures(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		wantErr error
	}{
		{
			name:    "backend error propagates",
			backend: &fakeBackend{err: errors.New("boom")},
		},
		{
			name:    "undecodable response",
			backend: &fakeBackend{out: "## just markdown, no json"},
			wantErr: ErrInvalidReport,
		},
		{
			name:    "empty report body",
			backend: &fakeBackend{out: `{"short_summary":"s","markdown_report":"  "}`},
			wantErr: ErrInvalidReport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Writer{Backend: tt.backend}
			_, err := w.Write(context.Background(), "q", []string{"s"})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
