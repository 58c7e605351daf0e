package cli

import (
	"context"

	"jobassist/internal/ai"
	"jobassist/internal/common"
	"jobassist/internal/config"
	"jobassist/internal/errors"
	"jobassist/internal/formatters"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}
type vaultKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}
var vaultKey = vaultKeyType{}

var rootCmd = &cobra.Command{
	Use:   "jobassist",
	Short: "A CLI assistant for job postings, networking and learning plans",
	Long: `Jobassist breaks job postings into titled sections, suggests questions
to ask the people in your network, builds learning plans from a resume and a
posting, and maps profile exports into a canonical resume record.

Model completions are parsed tolerantly: when a reply cannot be used, a
default result is returned instead of an error.`,
	SilenceUsage: true,
}

// Execute runs the root command. vault may be nil when Vault is disabled.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger, vault *config.VaultClient) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	ctx = context.WithValue(ctx, vaultKey, vault)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

func getVaultFromContext(ctx context.Context) *config.VaultClient {
	vault, _ := ctx.Value(vaultKey).(*config.VaultClient)
	return vault
}

// addOutputFlags registers --output and --format with shell completion
func addOutputFlags(cmd *cobra.Command, cmdConfig *common.CommandConfig) {
	cmd.Flags().StringVarP(&cmdConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cmdConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatters.GlobalRegistry.GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

// prepareOutput applies configured defaults to cmdConfig and validates the format
func prepareOutput(cmdConfig *common.CommandConfig) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if cmdConfig.OutputFormat == "" {
			cmdConfig.OutputFormat = cfg.App.DefaultFormat
		}
		cmdConfig.MaxFileSize = cfg.App.MaxFileSize
		// Validate format against supported formats
		return common.ValidateOutputFormat(cmdConfig.OutputFormat, cfg.App.SupportedFormats)
	}
}

// newAIService builds the AI service for one operation
func newAIService(cfg *config.Config, logger *errors.Logger, op string) (*ai.Service, error) {
	opCfg, err := cfg.GetOperationConfig(op)
	if err != nil {
		return nil, err
	}
	return ai.NewService(&opCfg, op, cfg.Prompts(), logger)
}

func logTokenUsage(logger *errors.Logger, usage *ai.TokenUsage) {
	if usage == nil {
		return
	}
	logger.Info("AI token usage",
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"total_tokens", usage.TotalTokens)
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
