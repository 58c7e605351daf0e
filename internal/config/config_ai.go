package config

import "fmt"

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}

	global := c.AI.Prompts
	if opCfg.Prompts.System == "" {
		opCfg.Prompts.System = global.System
	}
	if opCfg.Prompts.User == "" {
		opCfg.Prompts.User = global.User
	}
}

// GetOperationConfig returns the AI configuration for op with fallback to global config
func (c *Config) GetOperationConfig(op string) (OperationAIConfig, error) {
	var opCfg OperationAIConfig
	switch op {
	case OperationPosting:
		opCfg = c.AI.Posting
	case OperationQuestions:
		opCfg = c.AI.Questions
	case OperationPlan:
		opCfg = c.AI.Plan
	default:
		return OperationAIConfig{}, fmt.Errorf("unknown AI operation: %s", op)
	}

	c.applyOperationDefaults(&opCfg)
	return opCfg, nil
}

// GetPostingConfig returns the AI configuration for job posting breakdowns
func (c *Config) GetPostingConfig() OperationAIConfig {
	cfg, _ := c.GetOperationConfig(OperationPosting)
	return cfg
}

// GetQuestionsConfig returns the AI configuration for contact question suggestions
func (c *Config) GetQuestionsConfig() OperationAIConfig {
	cfg, _ := c.GetOperationConfig(OperationQuestions)
	return cfg
}

// GetPlanConfig returns the AI configuration for learning plans
func (c *Config) GetPlanConfig() OperationAIConfig {
	cfg, _ := c.GetOperationConfig(OperationPlan)
	return cfg
}

// operationPrompts returns the raw prompt settings of op, without global fallback
func (c *Config) operationPrompts(op string) PromptConfig {
	switch op {
	case OperationPosting:
		return c.AI.Posting.Prompts
	case OperationQuestions:
		return c.AI.Questions.Prompts
	case OperationPlan:
		return c.AI.Plan.Prompts
	default:
		return c.AI.Prompts
	}
}
