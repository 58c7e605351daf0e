package cli

import (
	"context"
	"fmt"

	"jobassist/internal/common"
	"jobassist/internal/extract"
	"jobassist/internal/types"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the extraction pipeline over a saved model reply",
	Long: `Run the tolerant extraction pipeline over raw model output without calling
a model. Useful for replaying completions captured from logs.`,
}

var extractSectionsCmd = &cobra.Command{
	Use:     "sections [reply-file]",
	Short:   "Extract titled sections from a model reply",
	Args:    cobra.ExactArgs(1),
	PreRunE: prepareOutput(&extractSectionsConfig),
	RunE:    runExtractSections,
}

var extractQuestionsCmd = &cobra.Command{
	Use:     "questions [reply-file]",
	Short:   "Extract per-contact question lists from a model reply",
	Args:    cobra.ExactArgs(1),
	PreRunE: prepareOutput(&extractQuestionsConfig),
	RunE:    runExtractQuestions,
}

var (
	extractSectionsConfig  common.CommandConfig
	extractQuestionsConfig common.CommandConfig
	extractQuestionsCount  int
)

func init() {
	addOutputFlags(extractSectionsCmd, &extractSectionsConfig)
	addOutputFlags(extractQuestionsCmd, &extractQuestionsConfig)
	extractQuestionsCmd.Flags().IntVarP(&extractQuestionsCount, "count", "n", 1, "Number of question lists to return")

	extractCmd.AddCommand(extractSectionsCmd)
	extractCmd.AddCommand(extractQuestionsCmd)
}

func runExtractSections(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	createInput := func(contents []string) (types.ExtractSectionsInput, error) {
		if len(contents) != 1 {
			return types.ExtractSectionsInput{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return types.ExtractSectionsInput{Text: contents[0]}, nil
	}

	operation := func(_ context.Context, input types.ExtractSectionsInput) (types.JobPostingOutput, error) {
		sections, outcome := extract.ExtractSections(input.Text)
		if outcome.Fallback {
			logger.Warn("Reply could not be used, returning default section",
				"reason", outcome.Reason(), "error", outcome.Cause)
		}
		return types.JobPostingOutput{Sections: sections, Fallback: outcome.Fallback, Dropped: outcome.Dropped}, nil
	}

	return common.RunCommand(cmd.Context(), logger, extractSectionsConfig, args, createInput, operation, nil)
}

func runExtractQuestions(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	if extractQuestionsCount < 0 {
		return fmt.Errorf("count must not be negative, got %d", extractQuestionsCount)
	}

	createInput := func(contents []string) (types.ExtractQuestionsInput, error) {
		if len(contents) != 1 {
			return types.ExtractQuestionsInput{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return types.ExtractQuestionsInput{Text: contents[0], Count: extractQuestionsCount}, nil
	}

	logDetails := func(input types.ExtractQuestionsInput, cfg common.CommandConfig) {
		logger.Debug("Extracting question lists", "reply_chars", len(input.Text), "count", input.Count)
	}

	operation := func(_ context.Context, input types.ExtractQuestionsInput) (types.ContactQuestionsOutput, error) {
		lists, outcome := extract.ExtractQuestions(input.Text, input.Count)
		if outcome.Fallback {
			logger.Warn("Reply could not be used, returning empty question lists",
				"reason", outcome.Reason(), "error", outcome.Cause)
		}
		return types.ContactQuestionsOutput{Questions: lists, Fallback: outcome.Fallback, Dropped: outcome.Dropped}, nil
	}

	return common.RunCommand(cmd.Context(), logger, extractQuestionsConfig, args, createInput, operation, logDetails)
}
