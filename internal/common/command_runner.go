package common

import (
	"context"
	"fmt"

	"jobassist/internal/ai"
	"jobassist/internal/errors"
)

// CreateInputFunc defines how to create the specific input from file contents.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// AIOperationFunc is a generic function signature for any AI operation with context and token usage.
type AIOperationFunc[Input, Output any] func(context.Context, Input) (Output, *ai.TokenUsage, error)

// LocalOperationFunc transforms an input without calling a model.
type LocalOperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunAICommand reads the files named by args, runs an AI operation over them,
// reports token usage and writes the formatted result.
func RunAICommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	aiOperation AIOperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	return RunCommand(ctx, logger, cmdConfig, args, createInput,
		func(ctx context.Context, input Input) (Output, error) {
			result, tokenUsage, err := aiOperation(ctx, input)
			if err != nil {
				return result, err
			}
			if tokenUsage != nil {
				logger.Info("AI token usage",
					"input_tokens", tokenUsage.InputTokens,
					"output_tokens", tokenUsage.OutputTokens,
					"total_tokens", tokenUsage.TotalTokens)
			}
			return result, nil
		},
		logDetails)
}

// RunCommand is RunAICommand for operations that need no model.
func RunCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation LocalOperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	contents, err := NewFileProcessor(logger, cmdConfig.MaxFileSize).ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	return NewOutputHandler(logger).HandleOutput(result, cmdConfig)
}
