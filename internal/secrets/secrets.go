// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: openai-api-key, sendgrid-api-key, email-from.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// envNames maps secret key files to the environment variables consulted when
// the file is absent. Environment fallback keeps container deployments
// working without a mounted .secrets/ directory.
var envNames = map[string]string{
	"openai-api-key":   "OPENAI_API_KEY",
	"sendgrid-api-key": "SENDGRID_API_KEY",
	"email-from":       "EMAIL_FROM",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns whatever
// it can find. Unreadable files produce a warning on stderr but do not abort.
// Keys not present on disk fall back to their environment variable.
func Load(dir string) (map[string]string, error) {
	secrets := make(map[string]string)

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	for key, env := range envNames {
		if _, ok := secrets[key]; ok {
			continue
		}
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			secrets[key] = v
		}
	}

	return secrets, nil
}
