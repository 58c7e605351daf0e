package server

import (
	"context"
	"sync"

	"jobassist/internal/ai"
	"jobassist/internal/config"
	"jobassist/internal/errors"
)

// providerPool creates one AI provider per operation on first use and keeps
// it, so circuit breaker state survives across requests.
type providerPool struct {
	mu        sync.Mutex
	providers map[string]ai.AIProvider
	factory   func(op string) (ai.AIProvider, error)
}

func newProviderPool(cfg *config.Config, logger *errors.Logger) *providerPool {
	return &providerPool{
		providers: make(map[string]ai.AIProvider),
		factory: func(op string) (ai.AIProvider, error) {
			opCfg, err := cfg.GetOperationConfig(op)
			if err != nil {
				return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, err.Error(), err)
			}
			svc, err := ai.NewService(&opCfg, op, cfg.Prompts(), logger)
			if err != nil {
				return nil, err
			}
			return svc.Provider, nil
		},
	}
}

// get returns the provider for op. Failures are not cached, so a key
// supplied later is picked up.
func (p *providerPool) get(op string) (ai.AIProvider, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if provider, ok := p.providers[op]; ok {
		return provider, nil
	}
	provider, err := p.factory(op)
	if err != nil {
		return nil, err
	}
	p.providers[op] = provider
	return provider, nil
}

// modelHealth reports model availability for every operation
func (p *providerPool) modelHealth(ctx context.Context) map[string]any {
	status := make(map[string]any, len(config.Operations))
	for _, op := range config.Operations {
		provider, err := p.get(op)
		if err != nil {
			status[op] = &ai.ModelInfo{Available: false, Error: err.Error()}
			continue
		}
		status[op] = provider.GetModelInfo(ctx)
	}
	return status
}

// breakerHealth reports circuit breaker state for providers that expose it
func (p *providerPool) breakerHealth() map[string]any {
	type breakerStats interface {
		GetCircuitBreakerStats() map[string]any
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	status := make(map[string]any, len(p.providers))
	for op, provider := range p.providers {
		if bs, ok := provider.(breakerStats); ok {
			status[op] = bs.GetCircuitBreakerStats()
		}
	}
	return status
}

// close releases every created provider
func (p *providerPool) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for op, provider := range p.providers {
		if err := provider.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.providers, op)
	}
	return firstErr
}
