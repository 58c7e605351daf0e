package server

import (
	"time"

	"jobassist/internal/config"
	"jobassist/internal/errors"
	"jobassist/internal/profile"
	"jobassist/internal/scrape"
)

// PostingRequest is the body of POST /analyze-posting.
// When URL is set and JobDescription is empty the posting is fetched.
type PostingRequest struct {
	JobDescription string `json:"jobDescription"`
	URL            string `json:"url,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// API Authentication, rotated live by the key watcher
	APIKeys *KeyRing

	// Timeout configurations
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	HealthCheckTimeout time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *errors.Logger

	providers *providerPool
	fetcher   profile.PageFetcher

	// Vault client used for API key rotation; nil when Vault is disabled
	vault VaultClientInterface
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host               string
	Port               string
	Version            string
	APIKeys            []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	HealthCheckTimeout time.Duration
	MaxRequestSize     int64
	RateLimit          *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *errors.Logger) *Server {
	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	healthTimeout := cfg.HealthCheckTimeout
	if healthTimeout <= 0 {
		healthTimeout = 5 * time.Second
	}

	fetcher := scrape.NewFetcher(appCfg.Scrape, logger)

	return &Server{
		Host:               cfg.Host,
		Port:               cfg.Port,
		Version:            cfg.Version,
		AppConfig:          appCfg,
		APIKeys:            NewKeyRing(cfg.APIKeys),
		ReadTimeout:        cfg.ReadTimeout,
		WriteTimeout:       cfg.WriteTimeout,
		IdleTimeout:        cfg.IdleTimeout,
		HealthCheckTimeout: healthTimeout,
		MaxRequestSize:     cfg.MaxRequestSize,
		RateLimit:          cfg.RateLimit,
		RateLimiter:        rateLimiter,
		Logger:             logger,
		providers:          newProviderPool(appCfg, logger),
		fetcher:            fetcher,
	}
}

// WithVault enables API key rotation from the given client
func (s *Server) WithVault(client VaultClientInterface) *Server {
	s.vault = client
	return s
}
