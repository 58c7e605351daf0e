package observability

import (
	"context"
	"fmt"
	"time"

	"jobassist/internal/config"
	"jobassist/internal/extract"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Metrics holds all custom metrics for the job assistant.
// The zero value records nothing.
type Metrics struct {
	toggles config.CustomMetricsConfig

	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Business metrics
	PostingsAnalyzed   metric.Int64Counter
	QuestionsSuggested metric.Int64Counter
	PlansBuilt         metric.Int64Counter
	ProfilesMapped     metric.Int64Counter

	// Extraction pipeline metrics
	ExtractionFallbacks metric.Int64Counter
	DroppedEntries      metric.Int64Counter

	// Infrastructure metrics
	RateLimitHits metric.Int64Counter
	FetchDuration metric.Float64Histogram
	KeyRotations  metric.Int64Counter
	PromptReloads metric.Int64Counter
}

// BusinessEvent names a completed user-facing operation
type BusinessEvent string

const (
	EventPostingAnalyzed    BusinessEvent = "posting_analyzed"
	EventQuestionsSuggested BusinessEvent = "questions_suggested"
	EventPlanBuilt          BusinessEvent = "plan_built"
	EventProfileMapped      BusinessEvent = "profile_mapped"
)

// AIOperationResult holds the result of an AI operation including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

func newMetrics(meter metric.Meter, toggles config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{toggles: toggles}

	for _, create := range []func(metric.Meter) error{
		m.createAIMetrics,
		m.createBusinessMetrics,
		m.createExtractionMetrics,
		m.createInfrastructureMetrics,
	} {
		if err := create(meter); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) createAIMetrics(meter metric.Meter) error {
	var err error

	m.AIProcessingTime, err = meter.Float64Histogram(
		"jobassist_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	m.AIRequestCount, err = meter.Int64Counter(
		"jobassist_ai_requests_total",
		metric.WithDescription("Total number of AI requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	m.AIErrorCount, err = meter.Int64Counter(
		"jobassist_ai_errors_total",
		metric.WithDescription("Total number of AI request errors"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	m.AITokenUsage, err = meter.Int64Histogram(
		"jobassist_ai_token_usage",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	return nil
}

func (m *Metrics) createBusinessMetrics(meter metric.Meter) error {
	var err error

	m.PostingsAnalyzed, err = meter.Int64Counter(
		"jobassist_postings_analyzed_total",
		metric.WithDescription("Total number of job postings split into sections"),
	)
	if err != nil {
		return fmt.Errorf("failed to create postings analyzed metric: %w", err)
	}

	m.QuestionsSuggested, err = meter.Int64Counter(
		"jobassist_question_sets_total",
		metric.WithDescription("Total number of contact question sets suggested"),
	)
	if err != nil {
		return fmt.Errorf("failed to create question sets metric: %w", err)
	}

	m.PlansBuilt, err = meter.Int64Counter(
		"jobassist_learning_plans_total",
		metric.WithDescription("Total number of learning plans built"),
	)
	if err != nil {
		return fmt.Errorf("failed to create learning plans metric: %w", err)
	}

	m.ProfilesMapped, err = meter.Int64Counter(
		"jobassist_profiles_mapped_total",
		metric.WithDescription("Total number of external profiles mapped"),
	)
	if err != nil {
		return fmt.Errorf("failed to create profiles mapped metric: %w", err)
	}

	return nil
}

func (m *Metrics) createExtractionMetrics(meter metric.Meter) error {
	var err error

	m.ExtractionFallbacks, err = meter.Int64Counter(
		"jobassist_extraction_fallbacks_total",
		metric.WithDescription("Completions that could not be parsed and fell back to the default result"),
	)
	if err != nil {
		return fmt.Errorf("failed to create extraction fallback metric: %w", err)
	}

	m.DroppedEntries, err = meter.Int64Counter(
		"jobassist_extraction_dropped_entries_total",
		metric.WithDescription("Malformed entries discarded while normalizing completions"),
	)
	if err != nil {
		return fmt.Errorf("failed to create dropped entries metric: %w", err)
	}

	return nil
}

func (m *Metrics) createInfrastructureMetrics(meter metric.Meter) error {
	var err error

	m.RateLimitHits, err = meter.Int64Counter(
		"jobassist_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	m.FetchDuration, err = meter.Float64Histogram(
		"jobassist_profile_fetch_duration_seconds",
		metric.WithDescription("Time spent fetching profile pages"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create fetch duration metric: %w", err)
	}

	m.KeyRotations, err = meter.Int64Counter(
		"jobassist_api_key_rotations_total",
		metric.WithDescription("Total number of server API key rotations"),
	)
	if err != nil {
		return fmt.Errorf("failed to create key rotation metric: %w", err)
	}

	m.PromptReloads, err = meter.Int64Counter(
		"jobassist_prompt_reloads_total",
		metric.WithDescription("Total number of prompt file reloads"),
	)
	if err != nil {
		return fmt.Errorf("failed to create prompt reload metric: %w", err)
	}

	return nil
}

// TrackAIOperation instruments an AI operation with tracing, metrics and token usage
func (m *Metrics) TrackAIOperation(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult) error {
	if m == nil || m.AIProcessingTime == nil {
		return fn(ctx).err()
	}

	ctx, span := otel.Tracer("jobassist.ai").Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()
	err := result.err()

	if m.toggles.AIOperations.Enabled {
		m.recordAIMetrics(ctx, operation, duration, result, span)
	}

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}
	return err
}

func (r *AIOperationResult) err() error {
	if r == nil {
		return nil
	}
	return r.Error
}

func (m *Metrics) recordAIMetrics(ctx context.Context, operation string, duration float64, result *AIOperationResult, span oteltrace.Span) {
	err := result.err()
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	if m.toggles.AIOperations.TrackDuration {
		m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	}
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	m.recordTokenUsage(ctx, result, attrs, span)

	span.SetAttributes(attrs...)
}

func (m *Metrics) recordTokenUsage(ctx context.Context, result *AIOperationResult, attrs []attribute.KeyValue, span oteltrace.Span) {
	if result == nil || result.TokenUsage == nil {
		return
	}
	usage := result.TokenUsage

	// Spans always carry token counts
	span.SetAttributes(
		attribute.Int64("ai.tokens.input", usage.InputTokens),
		attribute.Int64("ai.tokens.output", usage.OutputTokens),
		attribute.Int64("ai.tokens.total", usage.TotalTokens),
	)

	if !m.toggles.AIOperations.TrackTokenUsage {
		return
	}
	for _, tt := range []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		tokenAttrs := append(append([]attribute.KeyValue{}, attrs...), attribute.String("token_type", tt.tokenType))
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
	}
}

// RecordBusinessMetric counts a completed user-facing operation
func (m *Metrics) RecordBusinessMetric(ctx context.Context, event BusinessEvent, success bool, attributes ...attribute.KeyValue) {
	if m == nil || !m.toggles.BusinessMetrics.Enabled {
		return
	}

	attrs := append([]attribute.KeyValue{attribute.Bool("success", success)}, attributes...)

	var counter metric.Int64Counter
	switch event {
	case EventPostingAnalyzed:
		counter = m.PostingsAnalyzed
	case EventQuestionsSuggested:
		counter = m.QuestionsSuggested
	case EventPlanBuilt:
		counter = m.PlansBuilt
	case EventProfileMapped:
		counter = m.ProfilesMapped
	}
	addTo(ctx, counter, 1, attrs)
}

// RecordExtraction records how a completion went through the parsing pipeline
func (m *Metrics) RecordExtraction(ctx context.Context, pipeline string, outcome extract.Outcome) {
	if m == nil || !m.toggles.Extraction.Enabled {
		return
	}

	if outcome.Fallback && m.toggles.Extraction.TrackFallbacks {
		addTo(ctx, m.ExtractionFallbacks, 1, []attribute.KeyValue{
			attribute.String("pipeline", pipeline),
			attribute.String("reason", outcome.Reason()),
		})
	}
	if outcome.Dropped > 0 && m.toggles.Extraction.TrackDropped {
		addTo(ctx, m.DroppedEntries, int64(outcome.Dropped), []attribute.KeyValue{
			attribute.String("pipeline", pipeline),
		})
	}
}

// RecordRateLimitHit counts a request rejected by the rate limiter
func (m *Metrics) RecordRateLimitHit(ctx context.Context, attributes ...attribute.KeyValue) {
	if m == nil || !m.toggles.Infrastructure.Enabled || !m.toggles.Infrastructure.TrackRateLimits {
		return
	}
	addTo(ctx, m.RateLimitHits, 1, attributes)
}

// RecordFetch records the duration of a profile page fetch
func (m *Metrics) RecordFetch(ctx context.Context, duration time.Duration, success bool) {
	if m == nil || m.FetchDuration == nil || !m.toggles.Infrastructure.Enabled || !m.toggles.Infrastructure.TrackFetches {
		return
	}
	m.FetchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordKeyRotation counts an attempt to swap the server API keys
func (m *Metrics) RecordKeyRotation(ctx context.Context, success bool) {
	if m == nil || !m.toggles.Infrastructure.Enabled {
		return
	}
	addTo(ctx, m.KeyRotations, 1, []attribute.KeyValue{attribute.Bool("success", success)})
}

// RecordPromptReload counts an attempt to reload prompt files
func (m *Metrics) RecordPromptReload(ctx context.Context, success bool) {
	if m == nil || !m.toggles.Infrastructure.Enabled {
		return
	}
	addTo(ctx, m.PromptReloads, 1, []attribute.KeyValue{attribute.Bool("success", success)})
}

func addTo(ctx context.Context, counter metric.Int64Counter, n int64, attrs []attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, n, metric.WithAttributes(attrs...))
}
