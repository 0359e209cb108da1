// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clarify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlenaBukilic/research-helper/internal/llm"
	"github.com/AlenaBukilic/research-helper/pkg/types"
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

func TestQuestions_DecodesExactlyThree(t *testing.T) {
	backend := &fakeBackend{out: `{"questions":[
		{"question":"Which region?"},
		{"question":"What time frame?"},
		{"question":"Residential or commercial?"}
	]}`}
	c := &Clarifier{Backend: backend}

	qs, err := c.Questions(context.Background(), "remote work and housing")
	require.NoError(t, err)

	require.Len(t, qs.Questions, 3)
	assert.Equal(t, "Which region?", qs.Questions[0].Question)
	assert.Equal(t, "Research query: remote work and housing", backend.lastReq.Input)
}

func TestQuestions_Failures(t *testing.T) {
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
			backend: &fakeBackend{out: "1. Which region?"},
			wantErr: ErrInvalidQuestions,
		},
		{
			name:    "too few questions",
			backend: &fakeBackend{out: `{"questions":[{"question":"One?"},{"question":"Two?"}]}`},
			wantErr: ErrInvalidQuestions,
		},
		{
			name: "too many questions",
			backend: &fakeBackend{out: `{"questions":[{"question":"1?"},{"question":"2?"},` +
				`{"question":"3?"},{"question":"4?"}]}`},
			wantErr: ErrInvalidQuestions,
		},
		{
			name:    "empty question text",
			backend: &fakeBackend{out: `{"questions":[{"question":"1?"},{"question":"  "},{"question":"3?"}]}`},
			wantErr: ErrInvalidQuestions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Clarifier{Backend: tt.backend}
			_, err := c.Questions(context.Background(), "q")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	qs := types.ClarifyingQuestions{Questions: []types.ClarifyingQuestion{
		{Question: "Which region?"},
		{Question: "What time frame?"},
		{Question: "Residential or commercial?"},
	}}

	got := Markdown(qs)
	assert.Contains(t, got, "## Clarifying Questions")
	assert.Contains(t, got, "1. Which region?")
	assert.Contains(t, got, "3. Residential or commercial?")
	assert.Contains(t, got, "refine your research query")
}
