// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlenaBukilic/research-helper/internal/clarify"
	"github.com/AlenaBukilic/research-helper/internal/llm"
	"github.com/AlenaBukilic/research-helper/internal/research"
)

var clarifyCmd = &cobra.Command{
	Use:   "clarify <query>",
	Short: "Print the clarifying questions for a research query",
	Long: `Clarify asks the model for three clarifying questions about the query and
prints them as markdown. Answer them with repeated --answer flags on a
subsequent run invocation, or save the query and questions to a file with
--save, fill in the answers, and pass it to run --answers-file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]

		cfg := loadConfig()
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("no model API key configured: set ai.api_key, OPENAI_API_KEY, or .secrets/openai-api-key")
		}

		clarifier := &clarify.Clarifier{Backend: llm.NewClient(cfg.AI, cfg.HTTP)}
		questions, err := clarifier.Questions(cmd.Context(), query)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), clarify.Markdown(questions))

		if save, _ := cmd.Flags().GetString("save"); save != "" {
			rf := research.RequestFile{Query: query}
			for _, q := range questions.Questions {
				rf.Questions = append(rf.Questions, q.Question)
			}
			if err := research.WriteRequestFile(save, rf); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved request to %s\n", save)
		}
		return nil
	},
}

func init() {
	clarifyCmd.Flags().String("save", "", "save the query and questions to an answers file")

	rootCmd.AddCommand(clarifyCmd)
}
