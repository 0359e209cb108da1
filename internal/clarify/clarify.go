// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package clarify generates the fixed set of three clarifying questions
// offered to the user before a research run.
package clarify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AlenaBukilic/research-helper/internal/llm"
	"github.com/AlenaBukilic/research-helper/pkg/types"
)

// QuestionCount is the fixed number of clarifying questions per query.
const QuestionCount = 3

// ErrInvalidQuestions marks a clarifier response that does not contain
// exactly QuestionCount non-empty questions.
var ErrInvalidQuestions = errors.New("invalid clarifying questions")

// clarifierInstructions is the system prompt for the clarifier model.
const clarifierInstructions = `You are a helpful research assistant that asks clarifying questions to better understand research queries.
Given an initial research query, generate exactly 3 clarifying questions that will help refine and focus the research.
The questions should:
- Help understand the user's specific interests or goals
- Clarify ambiguous aspects of the query
- Identify the scope or depth of information needed
- Be concise and easy to answer

Respond with a JSON object of the form {"questions": [{"question": "..."}, {"question": "..."}, {"question": "..."}]} containing exactly 3 questions. Do not include any text outside the JSON object.`

// Completer abstracts the model call so tests can supply a mock.
type Completer interface {
	Complete(ctx context.Context, r llm.Request) (string, error)
}

// Clarifier is the clarifying-questions adapter.
type Clarifier struct {
	Backend Completer
}

// Questions asks the clarifier model for exactly three clarifying
// questions. Any other arity, or an empty question, is a decode failure.
func (c *Clarifier) Questions(ctx context.Context, query string) (types.ClarifyingQuestions, error) {
	out, err := c.Backend.Complete(ctx, llm.Request{
		Instructions: clarifierInstructions,
		Input:        "Research query: " + query,
		JSONObject:   true,
	})
	if err != nil {
		return types.ClarifyingQuestions{}, fmt.Errorf("clarifier call: %w", err)
	}

	var qs types.ClarifyingQuestions
	if err := json.Unmarshal([]byte(out), &qs); err != nil {
		return types.ClarifyingQuestions{}, fmt.Errorf("%w: decoding clarifier response: %v", ErrInvalidQuestions, err)
	}

	if len(qs.Questions) != QuestionCount {
		return types.ClarifyingQuestions{}, fmt.Errorf("%w: got %d questions, want %d", ErrInvalidQuestions, len(qs.Questions), QuestionCount)
	}
	for i, q := range qs.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return types.ClarifyingQuestions{}, fmt.Errorf("%w: question %d is empty", ErrInvalidQuestions, i+1)
		}
	}

	return qs, nil
}

// Markdown renders the questions as the numbered list shown to the user.
func Markdown(qs types.ClarifyingQuestions) string {
	var b strings.Builder
	b.WriteString("## Clarifying Questions\n\n")
	for i, q := range qs.Questions {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, q.Question)
	}
	b.WriteString("Please answer these questions to help refine your research query.")
	return b.String()
}
