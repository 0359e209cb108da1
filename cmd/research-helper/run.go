// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AlenaBukilic/research-helper/internal/deliver"
	"github.com/AlenaBukilic/research-helper/internal/evaluate"
	"github.com/AlenaBukilic/research-helper/internal/llm"
	"github.com/AlenaBukilic/research-helper/internal/plan"
	"github.com/AlenaBukilic/research-helper/internal/refine"
	"github.com/AlenaBukilic/research-helper/internal/research"
	"github.com/AlenaBukilic/research-helper/internal/search"
	"github.com/AlenaBukilic/research-helper/internal/write"
	"github.com/AlenaBukilic/research-helper/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Run a full research cycle for a query",
	Long: `Run plans web searches for the query, executes them concurrently,
synthesizes a markdown report, and iterates until the evaluator accepts
the report or the iteration limit is reached. Progress is streamed to
stderr; the final report goes to stdout, or to a file with --output.

Answers to clarifying questions (see the clarify subcommand) can be
supplied with repeated --answer flags, or loaded together with the query
from a file saved by clarify --save via --answers-file. The positional
query and explicit flags override the file's fields.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd, args)
		if err != nil {
			return err
		}

		cfg := loadConfig()
		if model, _ := cmd.Flags().GetString("model"); model != "" {
			cfg.AI.Model = model
		}
		manager, err := buildManager(cfg)
		if err != nil {
			return err
		}

		final := runStream(manager.Run(cmd.Context(), req), cmd.ErrOrStderr())
		if strings.HasPrefix(final, "Error: ") {
			return errors.New(strings.TrimPrefix(final, "Error: "))
		}

		if output, _ := cmd.Flags().GetString("output"); output != "" {
			if err := os.WriteFile(output, []byte(final+"\n"), 0o644); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", output)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), final)
		return nil
	},
}

func init() {
	runCmd.Flags().StringArray("answer", nil, "answer to a clarifying question (repeatable, in question order)")
	runCmd.Flags().String("answers-file", "", "load the query and answers from a YAML file saved by clarify --save")
	runCmd.Flags().Bool("send-email", false, "send the finished report by email")
	runCmd.Flags().String("email", "", "recipient address for --send-email")
	runCmd.Flags().String("model", "", "override the configured model for this run")
	runCmd.Flags().String("output", "", "write the final report to a file instead of stdout")

	rootCmd.AddCommand(runCmd)
}

// requestFromFlags builds the run request, starting from --answers-file
// when given and layering the positional query and any set flags on top.
func requestFromFlags(cmd *cobra.Command, args []string) (research.RunRequest, error) {
	var req research.RunRequest

	if path, _ := cmd.Flags().GetString("answers-file"); path != "" {
		rf, err := research.ReadRequestFile(path)
		if err != nil {
			return req, err
		}
		req = rf.ToRequest()
	}

	if len(args) > 0 {
		req.Query = args[0]
	}
	if cmd.Flags().Changed("answer") {
		req.Answers, _ = cmd.Flags().GetStringArray("answer")
	}
	if cmd.Flags().Changed("send-email") {
		req.SendEmail, _ = cmd.Flags().GetBool("send-email")
	}
	if cmd.Flags().Changed("email") {
		req.Recipient, _ = cmd.Flags().GetString("email")
	}
	return req, nil
}

// runStream drains the progress stream, writing every message but the last
// to w, and returns the final message: the report text or an "Error: "
// line.
func runStream(ch <-chan string, w io.Writer) string {
	var prev string
	seen := false
	for msg := range ch {
		if seen {
			fmt.Fprintln(w, prev)
		}
		prev = msg
		seen = true
	}
	return prev
}

// loadConfig assembles the run configuration from viper, with API keys
// falling back to .secrets/.
func loadConfig() types.HelperConfig {
	viper.SetDefault("http.timeout", "120s")
	viper.SetDefault("http.user_agent", "research-helper/"+version)
	viper.SetDefault("ai.model", "gpt-4o-mini")
	viper.SetDefault("ai.max_retries", 3)
	viper.SetDefault("research.quality_threshold", research.DefaultQualityThreshold)
	viper.SetDefault("research.max_iterations", research.DefaultMaxIterations)
	viper.SetDefault("research.search_model", "gpt-4o-mini")

	timeout, err := time.ParseDuration(viper.GetString("http.timeout"))
	if err != nil {
		timeout = 120 * time.Second
	}

	return types.HelperConfig{
		HTTP: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: viper.GetString("http.user_agent"),
		},
		AI: types.AIConfig{
			Model:      viper.GetString("ai.model"),
			APIKey:     secretDefault("openai-api-key", viper.GetString("ai.api_key")),
			MaxRetries: viper.GetInt("ai.max_retries"),
		},
		Research: types.ResearchConfig{
			QualityThreshold: viper.GetFloat64("research.quality_threshold"),
			MaxIterations:    viper.GetInt("research.max_iterations"),
			SearchModel:      viper.GetString("research.search_model"),
		},
		Email: types.EmailConfig{
			SendGridAPIKey: secretDefault("sendgrid-api-key", viper.GetString("email.sendgrid_api_key")),
			FromAddress:    secretDefault("email-from", viper.GetString("email.from_address")),
		},
	}
}

// buildManager wires the research stages to a shared model client.
func buildManager(cfg types.HelperConfig) (*research.Manager, error) {
	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("no model API key configured: set ai.api_key, OPENAI_API_KEY, or .secrets/openai-api-key")
	}

	client := llm.NewClient(cfg.AI, cfg.HTTP)

	controller := &research.Controller{
		Planner: &plan.Planner{Backend: client},
		Searches: &search.Executor{
			Searcher: &search.AgentSearcher{Backend: client, Model: cfg.Research.SearchModel},
		},
		Writer:    &write.Writer{Backend: client},
		Evaluator: &evaluate.Evaluator{Backend: client},
		Refiner:   &refine.Refiner{Backend: client},
		Config:    cfg.Research,
	}

	gate := &deliver.Gate{Agent: &deliver.EmailAgent{
		Backend:    client,
		HTTPClient: client.HTTPClient,
		APIKey:     cfg.Email.SendGridAPIKey,
		From:       cfg.Email.FromAddress,
		MaxRetries: cfg.AI.MaxRetries,
	}}

	return &research.Manager{Controller: controller, Gate: gate}, nil
}
