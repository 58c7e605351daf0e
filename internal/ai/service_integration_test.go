package ai

import (
	"log/slog"
	"testing"
	"time"

	"jobassist/internal/config"
	"jobassist/internal/errors"
)

func timePtr(d time.Duration) *time.Duration { return &d }
func intPtr(i int) *int                      { return &i }
func float32Ptr(f float32) *float32          { return &f }
func boolPtr(b bool) *bool                   { return &b }

var testLogger = errors.NewLogger(slog.LevelDebug)

// createTestConfigWithOverrides creates a test config with operation-specific overrides
func createTestConfigWithOverrides() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			Provider:         "gemini",
			Model:            "global-model",
			Timeout:          60 * time.Second,
			APIKey:           "global-api-key",
			MaxRetries:       5,
			Temperature:      0.9,
			UseSystemPrompts: true,

			Posting: config.OperationAIConfig{
				Model:       "posting-model",
				Timeout:     timePtr(90 * time.Second),
				Temperature: float32Ptr(0.1),
			},
			Questions: config.OperationAIConfig{
				Model:      "questions-model",
				MaxRetries: intPtr(1),
			},
		},
	}
}

func TestOperationSpecificConfigDerivation(t *testing.T) {
	testConfig := createTestConfigWithOverrides()

	testCases := []struct {
		name              string
		getConfig         func() config.OperationAIConfig
		expectModel       string
		expectTimeout     time.Duration
		expectMaxRetries  int
		expectTemperature float32
	}{
		{"posting", testConfig.GetPostingConfig, "posting-model", 90 * time.Second, 5, 0.1},
		{"questions", testConfig.GetQuestionsConfig, "questions-model", 60 * time.Second, 1, 0.9},
		{"plan", testConfig.GetPlanConfig, "global-model", 60 * time.Second, 5, 0.9},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.getConfig()
			if cfg.Model != tc.expectModel {
				t.Errorf("Expected model '%s', got '%s'", tc.expectModel, cfg.Model)
			}
			if *cfg.Timeout != tc.expectTimeout {
				t.Errorf("Expected timeout %v, got %v", tc.expectTimeout, *cfg.Timeout)
			}
			if *cfg.MaxRetries != tc.expectMaxRetries {
				t.Errorf("Expected max retries %d, got %d", tc.expectMaxRetries, *cfg.MaxRetries)
			}
			if *cfg.Temperature != tc.expectTemperature {
				t.Errorf("Expected temperature %f, got %f", tc.expectTemperature, *cfg.Temperature)
			}
			if cfg.APIKey != "global-api-key" {
				t.Errorf("Expected global API key, got '%s'", cfg.APIKey)
			}

			if _, err := NewService(&cfg, tc.name, nil, testLogger); err != nil {
				t.Logf("Service creation with test key returned: %v", err)
			}
		})
	}
}

func TestNewServiceRejectsBadConfig(t *testing.T) {
	base := config.OperationAIConfig{
		Provider:         "gemini",
		Model:            "test-model",
		Timeout:          timePtr(time.Second),
		APIKey:           "test-key",
		MaxRetries:       intPtr(0),
		Temperature:      float32Ptr(0.5),
		UseSystemPrompts: boolPtr(true),
	}

	t.Run("missing key", func(t *testing.T) {
		cfg := base
		cfg.APIKey = ""
		_, err := NewService(&cfg, config.OperationPosting, nil, testLogger)
		if errors.TypeOf(err) != errors.ErrorTypeConfig {
			t.Errorf("Expected config error, got %v", err)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := base
		cfg.Provider = "unknown"
		_, err := NewService(&cfg, config.OperationPosting, nil, testLogger)
		if errors.TypeOf(err) != errors.ErrorTypeConfig {
			t.Errorf("Expected config error, got %v", err)
		}
	})
}

func TestCircuitBreakerIntegrationWithServices(t *testing.T) {
	testOpConfig := &config.OperationAIConfig{
		Provider:         "gemini",
		Model:            "test-model",
		Timeout:          timePtr(30 * time.Second),
		APIKey:           "test-key",
		MaxRetries:       intPtr(1),
		Temperature:      float32Ptr(0.5),
		UseSystemPrompts: boolPtr(true),
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          45 * time.Second,
			MinRequests:      2,
			FailureThreshold: 0.8,
		},
	}

	service, err := NewService(testOpConfig, "test-op", nil, testLogger)
	if err != nil {
		t.Fatalf("Expected service to be created, got %v", err)
	}

	geminiProvider, ok := service.Provider.(*GeminiProvider)
	if !ok {
		t.Fatal("Service provider is not of type *GeminiProvider")
	}

	stats := geminiProvider.GetCircuitBreakerStats()

	aiOpsStats, ok := stats["ai_operations"].(map[string]any)
	if !ok {
		t.Fatal("AI operations stats should exist and be a map")
	}
	if name, _ := aiOpsStats["name"].(string); name != "AI-test-op" {
		t.Errorf("Expected circuit breaker name 'AI-test-op', got '%s'", name)
	}

	modelOpsStats, ok := stats["model_operations"].(map[string]any)
	if !ok {
		t.Fatal("Model operations stats should exist and be a map")
	}
	if name, _ := modelOpsStats["name"].(string); name != "AI-Model-test-op" {
		t.Errorf("Expected model circuit breaker name 'AI-Model-test-op', got '%s'", name)
	}

	if overallHealthy, _ := stats["overall_healthy"].(bool); !overallHealthy {
		t.Error("Circuit breaker should be healthy initially")
	}
}
