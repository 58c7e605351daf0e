package ai

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"jobassist/internal/config"
	appErrors "jobassist/internal/errors"
	"jobassist/internal/extract"
	"jobassist/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const modelCheckTimeout = 10 * time.Second

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	models         modelAPI
	config         *config.OperationAIConfig
	operation      string
	prompts        *config.PromptStore
	circuitBreaker *Breaker[*genai.GenerateContentResponse]
	modelBreaker   *Breaker[*genai.Model]
	logger         *appErrors.Logger

	// backoff returns the wait before retry attempt n (n >= 1)
	backoff func(attempt int) time.Duration
}

var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, prompts *config.PromptStore, logger *appErrors.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		HTTPClient: &http.Client{Timeout: *cfg.Timeout},
	})
	if err != nil {
		return nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return newGeminiProvider(client.Models, cfg, operationType, prompts, logger), nil
}

func newGeminiProvider(models modelAPI, cfg *config.OperationAIConfig, operationType string, prompts *config.PromptStore, logger *appErrors.Logger) *GeminiProvider {
	return &GeminiProvider{
		models:         models,
		config:         cfg,
		operation:      operationType,
		prompts:        prompts,
		circuitBreaker: NewCompletionBreaker(operationType, cfg, logger),
		modelBreaker:   NewModelBreaker(operationType, cfg, logger),
		logger:         logger.With("operation_type", operationType),
		backoff:        jitteredBackoff,
	}
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{Name: g.config.Model}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = model.DisplayName
	modelInfo.Version = model.Version

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// jitteredBackoff is exponential backoff with up to 10% jitter, capped at 30s
func jitteredBackoff(attempt int) time.Duration {
	const maxDelay = 30 * time.Second
	baseDelay := maxDelay
	if attempt < 1 {
		attempt = 1
	}
	// from attempt 6 on the doubling passes the cap, and far enough out it overflows
	if attempt <= 5 {
		baseDelay = min(time.Duration(math.Pow(2, float64(attempt-1)))*time.Second, maxDelay)
	}
	jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
	jitterBig, err := rand.Int(rand.Reader, jitterMax)
	if err != nil {
		return baseDelay
	}
	return min(baseDelay+time.Duration(jitterBig.Int64()), maxDelay)
}

// executeWithRetry executes an AI call with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error
	maxRetries := *g.config.MaxRetries

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(g.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"max_attempts", maxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, maxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Timeouts and connection failures
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// complete sends one free-text completion request with tracing, retries and
// circuit breaking, and returns the raw answer.
func (g *GeminiProvider) complete(ctx context.Context, operationName, systemPrompt, userPrompt string, spanAttributes ...attribute.KeyValue) (string, *TokenUsage, error) {
	tracer := otel.Tracer("jobassist.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	genaiConfig := &genai.GenerateContentConfig{}
	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}
	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operationName, func() (*genai.GenerateContentResponse, error) {
			return g.models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		code := appErrors.ErrCodeAIServiceFailed
		if errors.Is(err, context.DeadlineExceeded) {
			code = appErrors.ErrCodeAITimeout
		}
		return "", nil, appErrors.NewAIError(code, "Failed to generate content for "+operationName, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return result.Text(), tokenUsage, nil
}

// noteOutcome records a parse outcome on the current span and in the log
func (g *GeminiProvider) noteOutcome(ctx context.Context, operation string, outcome extract.Outcome) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("extract.fallback", outcome.Fallback),
			attribute.Int("extract.dropped", outcome.Dropped),
		)
	}
	if outcome.Fallback {
		g.logger.Warn("AI completion could not be parsed, using default result",
			"operation", operation,
			"cause", outcome.Cause.Error(),
			"dropped", outcome.Dropped)
	} else if outcome.Dropped > 0 {
		g.logger.Debug("Dropped malformed entries from AI completion",
			"operation", operation,
			"dropped", outcome.Dropped)
	}
}

// AnalyzeJobPosting splits a job posting into titled sections
func (g *GeminiProvider) AnalyzeJobPosting(ctx context.Context, input types.JobPostingInput) (types.JobPostingOutput, *TokenUsage, error) {
	p := resolvePrompts(g.prompts, config.OperationPosting)

	text, tokenUsage, err := g.complete(ctx, "analyze_posting", p.System, postingPrompt(p, input),
		attribute.Int("input.job_length", len(input.JobDescription)),
	)
	if err != nil {
		return types.JobPostingOutput{}, nil, err
	}

	sections, outcome := extract.ExtractSections(text)
	g.noteOutcome(ctx, "analyze_posting", outcome)

	return types.JobPostingOutput{
		Sections: sections,
		Fallback: outcome.Fallback,
		Dropped:  outcome.Dropped,
	}, tokenUsage, nil
}

// SuggestQuestions returns one question list per contact, in input order
func (g *GeminiProvider) SuggestQuestions(ctx context.Context, input types.ContactQuestionsInput) (types.ContactQuestionsOutput, *TokenUsage, error) {
	if len(input.Contacts) == 0 {
		return types.ContactQuestionsOutput{Questions: [][]string{}}, nil, nil
	}

	p := resolvePrompts(g.prompts, config.OperationQuestions)

	text, tokenUsage, err := g.complete(ctx, "suggest_questions", p.System, questionsPrompt(p, input),
		attribute.Int("input.contacts", len(input.Contacts)),
	)
	if err != nil {
		return types.ContactQuestionsOutput{}, nil, err
	}

	questions, outcome := extract.ExtractQuestions(text, len(input.Contacts))
	g.noteOutcome(ctx, "suggest_questions", outcome)

	return types.ContactQuestionsOutput{
		Questions: questions,
		Fallback:  outcome.Fallback,
		Dropped:   outcome.Dropped,
	}, tokenUsage, nil
}

// BuildLearningPlan returns ordered study steps that close resume gaps
func (g *GeminiProvider) BuildLearningPlan(ctx context.Context, input types.LearningPlanInput) (types.LearningPlanOutput, *TokenUsage, error) {
	p := resolvePrompts(g.prompts, config.OperationPlan)

	text, tokenUsage, err := g.complete(ctx, "learning_plan", p.System, planPrompt(p, input),
		attribute.Int("input.resume_length", len(input.Resume)),
		attribute.Int("input.job_length", len(input.JobDescription)),
	)
	if err != nil {
		return types.LearningPlanOutput{}, nil, err
	}

	steps, outcome := extract.ExtractSections(text)
	g.noteOutcome(ctx, "learning_plan", outcome)

	return types.LearningPlanOutput{
		Steps:    steps,
		Fallback: outcome.Fallback,
		Dropped:  outcome.Dropped,
	}, tokenUsage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.circuitBreaker.Stats(),
		"model_operations": g.modelBreaker.Stats(),
		"overall_healthy":  g.circuitBreaker.Healthy() && g.modelBreaker.Healthy(),
	}
}

// Close implements AIProvider interface
func (g *GeminiProvider) Close() error {
	// The genai client holds no resources in single-shot mode
	return nil
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
