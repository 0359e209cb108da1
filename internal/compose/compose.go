// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compose merges a research query with optional clarification
// answers into the refined query the rest of the pipeline operates on.
package compose

import "strings"

// clarificationHeader introduces the appended answers block.
const clarificationHeader = "Additional context from clarification:"

// Compose appends the non-blank clarification answers to the original query
// as a bulleted block under a fixed header. With no usable answers the
// original query is returned unchanged. Pure; never fails.
func Compose(original string, answers []string) string {
	var bullets []string
	for _, a := range answers {
		if strings.TrimSpace(a) == "" {
			continue
		}
		bullets = append(bullets, "- "+a)
	}
	if len(bullets) == 0 {
		return original
	}

	return original + "\n\n" + clarificationHeader + "\n" + strings.Join(bullets, "\n")
}
