package ai

import (
	"context"

	"jobassist/internal/types"

	"google.golang.org/genai"
)

// AIProvider interface for different AI implementations.
// Every operation returns token usage; callers can ignore it if not needed.
// Completions are parsed tolerantly, so a malformed answer still yields
// a usable output with Fallback set.
type AIProvider interface {
	AnalyzeJobPosting(ctx context.Context, input types.JobPostingInput) (types.JobPostingOutput, *TokenUsage, error)
	SuggestQuestions(ctx context.Context, input types.ContactQuestionsInput) (types.ContactQuestionsOutput, *TokenUsage, error)
	BuildLearningPlan(ctx context.Context, input types.LearningPlanInput) (types.LearningPlanOutput, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// modelAPI is the part of the Gemini models client the provider uses
type modelAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
