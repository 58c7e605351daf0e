package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobassist/internal/config"
	"jobassist/internal/errors"
)

// VaultClientInterface defines the Vault operations the key watcher needs
type VaultClientInterface interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// KeyRotateCallback receives the new key set after a version change
type KeyRotateCallback func(keys []string, err error)

// VaultWatcher polls the API key secret and hands new keys to the callback
// whenever the KVv2 version increases.
type VaultWatcher struct {
	mu sync.RWMutex

	client       VaultClientInterface
	secretPath   string
	pollInterval time.Duration
	onRotate     KeyRotateCallback
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
	lastCheck   time.Time
	lastError   string
}

// NewVaultWatcher creates a new VaultWatcher. initialVersion is the version
// already applied at startup, so the first poll only fires on a change.
func NewVaultWatcher(client VaultClientInterface, secretPath string, pollInterval time.Duration, initialVersion int64, onRotate KeyRotateCallback, logger *errors.Logger) *VaultWatcher {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Minute
	}
	return &VaultWatcher{
		client:       client,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		onRotate:     onRotate,
		logger:       logger,
		stopChan:     make(chan struct{}),
		lastVersion:  initialVersion,
	}
}

// Start begins polling Vault for secret changes
func (vw *VaultWatcher) Start() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if vw.running {
		return fmt.Errorf("vault watcher is already running")
	}
	vw.running = true
	go vw.pollLoop()
	vw.logger.Info("Vault key watcher started", "secret_path", vw.secretPath, "poll_interval", vw.pollInterval)
	return nil
}

// Stop stops the Vault watcher
func (vw *VaultWatcher) Stop() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if !vw.running {
		return nil
	}
	close(vw.stopChan)
	vw.running = false
	vw.logger.Info("Vault key watcher stopped")
	return nil
}

func (vw *VaultWatcher) pollLoop() {
	ticker := time.NewTicker(vw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			vw.poll()
		case <-vw.stopChan:
			return
		}
	}
}

// poll runs one check and reports a rotation to the callback
func (vw *VaultWatcher) poll() {
	keys, changed, err := vw.checkForUpdates()
	if err != nil {
		vw.logger.LogError(err, "Failed to check Vault for API key updates")
		vw.onRotate(nil, err)
		return
	}
	if changed {
		vw.logger.Info("API key secret changed, rotating keys", "key_count", len(keys))
		vw.onRotate(keys, nil)
	}
}

// checkForUpdates reads the secret and returns its keys when the version
// moved past the last applied one.
func (vw *VaultWatcher) checkForUpdates() ([]string, bool, error) {
	secret, err := vw.client.GetSecretV2(vw.secretPath)

	vw.mu.Lock()
	defer vw.mu.Unlock()
	vw.lastCheck = time.Now()

	if err != nil {
		vw.lastError = err.Error()
		return nil, false, fmt.Errorf("failed to read secret: %w", err)
	}
	if secret == nil || secret.Version <= vw.lastVersion {
		vw.lastError = ""
		return nil, false, nil
	}

	keys, err := secret.APIKeys()
	if err == nil && len(keys) == 0 {
		// An empty set would switch authentication off
		err = fmt.Errorf("no API keys in secret")
	}
	if err != nil {
		vw.lastError = err.Error()
		return nil, false, fmt.Errorf("secret %s version %d: %w", vw.secretPath, secret.Version, err)
	}

	vw.lastVersion = secret.Version
	vw.lastError = ""
	return keys, true, nil
}

// Status returns the current status of the VaultWatcher for health reporting
func (vw *VaultWatcher) Status() map[string]any {
	vw.mu.RLock()
	defer vw.mu.RUnlock()
	return map[string]any{
		"running":       vw.running,
		"poll_interval": vw.pollInterval.String(),
		"secret_path":   vw.secretPath,
		"last_version":  vw.lastVersion,
		"last_check":    vw.lastCheck,
		"last_error":    vw.lastError,
	}
}

// startKeyWatcher wires a VaultWatcher to the server key ring.
// It returns nil when rotation is not configured.
func (s *Server) startKeyWatcher(ctx context.Context, recordRotation func(context.Context, bool)) (*VaultWatcher, error) {
	vaultCfg := s.AppConfig.Vault
	if s.vault == nil || !vaultCfg.Watch.Enabled || vaultCfg.Secrets.APIKeys == "" {
		return nil, nil
	}

	var initialVersion int64
	if secret, err := s.vault.GetSecretV2(vaultCfg.Secrets.APIKeys); err == nil && secret != nil {
		initialVersion = secret.Version
	}

	watcher := NewVaultWatcher(s.vault, vaultCfg.Secrets.APIKeys, vaultCfg.Watch.PollInterval, initialVersion,
		func(keys []string, err error) {
			if err != nil {
				recordRotation(ctx, false)
				return
			}
			s.APIKeys.Replace(keys)
			recordRotation(ctx, true)
			s.Logger.Info("Server API keys rotated", "key_count", s.APIKeys.Len())
		}, s.Logger)

	if err := watcher.Start(); err != nil {
		return nil, err
	}
	return watcher, nil
}
