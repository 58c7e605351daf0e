package cli

import (
	"context"
	"fmt"

	"jobassist/internal/ai"
	"jobassist/internal/common"
	"jobassist/internal/types"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var questionsCmd = &cobra.Command{
	Use:   "questions [contacts-file]",
	Short: "Suggest questions to ask each contact",
	Long: `Suggest questions to ask the people in your network.

The contacts file is JSON: either an array of contacts or an object with a
"contacts" array and an optional "targetJob". A contact is an object with
name, role, company and note fields, or just a name.

One question list is returned per contact, in input order. Contacts the model
skipped get an empty list.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: prepareOutput(&questionsConfig),
	RunE:    runQuestions,
}

var (
	questionsConfig    common.CommandConfig
	questionsTargetJob string
)

func init() {
	addOutputFlags(questionsCmd, &questionsConfig)
	questionsCmd.Flags().StringVar(&questionsTargetJob, "target-job", "", "Job the questions should help with (overrides targetJob in the file)")
}

func runQuestions(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	questionsAIConfig := cfg.GetQuestionsConfig()
	aiService, err := ai.NewService(&questionsAIConfig, "questions", cfg.Prompts(), logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = aiService.Close() }()

	createInput := func(contents []string) (types.ContactQuestionsInput, error) {
		if len(contents) != 1 {
			return types.ContactQuestionsInput{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		contacts, err := common.ParseContacts(contents[0])
		if err != nil {
			return types.ContactQuestionsInput{}, err
		}
		targetJob := questionsTargetJob
		if targetJob == "" {
			targetJob = gjson.Get(contents[0], "targetJob").String()
		}
		return types.ContactQuestionsInput{Contacts: contacts, TargetJob: targetJob}, nil
	}

	logDetails := func(input types.ContactQuestionsInput, cfg common.CommandConfig) {
		logger.Info("Starting question suggestions",
			"contacts", len(input.Contacts),
			"target_job", input.TargetJob,
			"output_format", cfg.OutputFormat)
	}

	questionsOperation := func(ctx context.Context, input types.ContactQuestionsInput) (types.ContactQuestionsOutput, *ai.TokenUsage, error) {
		return aiService.Provider.SuggestQuestions(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		questionsConfig,
		args,
		createInput,
		questionsOperation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to suggest questions: %w", err)
	}
	logger.Info("Question suggestions completed successfully")
	return nil
}
