// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// RequestFile is the on-disk representation of a research request. A query
// can be clarified once, saved with its answers, and re-run later without
// retyping them.
type RequestFile struct {
	Query     string   `yaml:"query"`
	Questions []string `yaml:"questions,omitempty"`
	Answers   []string `yaml:"answers,omitempty"`

	SendEmail bool   `yaml:"send_email,omitempty"`
	Recipient string `yaml:"recipient,omitempty"`

	Saved time.Time `yaml:"saved"`
}

// WriteRequestFile saves a request to a YAML file.
func WriteRequestFile(path string, rf RequestFile) error {
	if rf.Saved.IsZero() {
		rf.Saved = time.Now()
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling request file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRequestFile loads a previously saved request file from disk.
func ReadRequestFile(path string) (*RequestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading request file: %w", err)
	}
	var rf RequestFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing request file: %w", err)
	}
	if strings.TrimSpace(rf.Query) == "" {
		return nil, fmt.Errorf("request file %s has no query", path)
	}
	return &rf, nil
}

// ToRequest converts a stored request back into a RunRequest.
func (rf *RequestFile) ToRequest() RunRequest {
	return RunRequest{
		Query:     rf.Query,
		Answers:   rf.Answers,
		SendEmail: rf.SendEmail,
		Recipient: rf.Recipient,
	}
}
