package cli

import (
	"context"
	"fmt"

	"jobassist/internal/ai"
	"jobassist/internal/common"
	"jobassist/internal/config"
	"jobassist/internal/errors"
	"jobassist/internal/scrape"
	"jobassist/internal/types"

	"github.com/spf13/cobra"
)

var sectionsCmd = &cobra.Command{
	Use:     "sections [job-posting-file]",
	Aliases: []string{"posting"},
	Short:   "Break a job posting into titled sections",
	Long: `Break a job posting into titled sections such as responsibilities,
requirements and benefits.

The posting is read from a file (text, markdown, PDF or DOCX), from standard
input with "-", or fetched from a web page with --url. When the model reply
cannot be parsed, the whole posting is returned as a single section.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if sectionsURL != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	PreRunE: prepareOutput(&sectionsConfig),
	RunE:    runSections,
}

var (
	sectionsConfig common.CommandConfig
	sectionsURL    string
)

func init() {
	addOutputFlags(sectionsCmd, &sectionsConfig)
	sectionsCmd.Flags().StringVar(&sectionsURL, "url", "", "Fetch the job posting from a web page instead of a file")
}

func runSections(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	aiService, err := newAIService(cfg, logger, config.OperationPosting)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = aiService.Close() }()

	postingOperation := func(ctx context.Context, input types.JobPostingInput) (types.JobPostingOutput, *ai.TokenUsage, error) {
		return aiService.Provider.AnalyzeJobPosting(ctx, input)
	}

	if sectionsURL != "" {
		err = runSectionsFromURL(cmd.Context(), cfg, logger, postingOperation)
	} else {
		err = common.RunAICommand(
			cmd.Context(),
			logger,
			sectionsConfig,
			args,
			func(contents []string) (types.JobPostingInput, error) {
				if len(contents) != 1 {
					return types.JobPostingInput{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
				}
				return types.JobPostingInput{JobDescription: contents[0]}, nil
			},
			postingOperation,
			logPostingDetails(logger),
		)
	}
	if err != nil {
		return fmt.Errorf("failed to break down job posting: %w", err)
	}

	logger.Info("Job posting breakdown completed successfully")
	return nil
}

func runSectionsFromURL(ctx context.Context, cfg *config.Config, logger *errors.Logger,
	operation common.AIOperationFunc[types.JobPostingInput, types.JobPostingOutput]) error {
	page, err := scrape.NewFetcher(cfg.Scrape, logger).Fetch(ctx, sectionsURL)
	if err != nil {
		return err
	}
	if page.Text == "" {
		return errors.NewScrapeError(errors.ErrCodeFetchFailed, "Fetched page has no text", nil).
			WithContext("url", sectionsURL)
	}

	input := types.JobPostingInput{JobDescription: page.Text, SourceURL: page.URL}
	logPostingDetails(logger)(input, sectionsConfig)

	output, usage, err := operation(ctx, input)
	if err != nil {
		return err
	}
	logTokenUsage(logger, usage)

	return common.NewOutputHandler(logger).HandleOutput(output, sectionsConfig)
}

func logPostingDetails(logger *errors.Logger) common.LogDetailsFunc[types.JobPostingInput] {
	return func(input types.JobPostingInput, cfg common.CommandConfig) {
		logger.Info("Starting job posting breakdown",
			"posting_chars", len(input.JobDescription),
			"source_url", input.SourceURL,
			"output_format", cfg.OutputFormat)
	}
}
