package cli

import (
	"context"
	"fmt"

	"jobassist/internal/ai"
	"jobassist/internal/common"
	"jobassist/internal/types"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [resume-file] [job-posting-file]",
	Short: "Build a learning plan that closes the gap between a resume and a job",
	Long: `Build an ordered learning plan from a resume and a job posting.

Each step has a title and a description. When the model reply cannot be
parsed, the raw reply is returned as a single step.`,
	Args:    cobra.ExactArgs(2),
	PreRunE: prepareOutput(&planConfig),
	RunE:    runPlan,
}

var planConfig common.CommandConfig

func init() {
	addOutputFlags(planCmd, &planConfig)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	planAIConfig := cfg.GetPlanConfig()
	aiService, err := ai.NewService(&planAIConfig, "plan", cfg.Prompts(), logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = aiService.Close() }()

	createInput := func(contents []string) (types.LearningPlanInput, error) {
		if len(contents) != 2 {
			return types.LearningPlanInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		return types.LearningPlanInput{
			Resume:         contents[0],
			JobDescription: contents[1],
		}, nil
	}

	logDetails := func(input types.LearningPlanInput, cfg common.CommandConfig) {
		logger.Info("Starting learning plan",
			"resume_chars", len(input.Resume),
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	planOperation := func(ctx context.Context, input types.LearningPlanInput) (types.LearningPlanOutput, *ai.TokenUsage, error) {
		return aiService.Provider.BuildLearningPlan(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		planConfig,
		args,
		createInput,
		planOperation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to build learning plan: %w", err)
	}
	logger.Info("Learning plan completed successfully")
	return nil
}
