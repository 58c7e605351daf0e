package server

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"jobassist/internal/config"
)

// MockVaultClient is a mock implementation for testing
type MockVaultClient struct {
	mu      sync.Mutex
	secrets map[string]*config.VaultSecret
	err     error
}

func (m *MockVaultClient) GetSecretV2(path string) (*config.VaultSecret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.secrets[path], nil
}

func (m *MockVaultClient) set(path string, secret *config.VaultSecret) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[path] = secret
}

func keySecret(keys string, version int64) *config.VaultSecret {
	return &config.VaultSecret{Data: map[string]any{"keys": keys}, Version: version}
}

func TestVaultWatcherCheckForUpdates(t *testing.T) {
	mockClient := &MockVaultClient{secrets: map[string]*config.VaultSecret{
		"secret/data/api-keys": keySecret("key-one, key-two", 2),
	}}
	vw := NewVaultWatcher(mockClient, "secret/data/api-keys", time.Minute, 1, func([]string, error) {}, nil)

	keys, changed, err := vw.checkForUpdates()
	if err != nil {
		t.Fatalf("checkForUpdates failed: %v", err)
	}
	if !changed {
		t.Fatal("Expected change to be detected")
	}
	if !reflect.DeepEqual(keys, []string{"key-one", "key-two"}) {
		t.Errorf("Expected split keys, got %v", keys)
	}

	if _, changed, err = vw.checkForUpdates(); err != nil || changed {
		t.Errorf("Expected no change on same version, got changed=%v err=%v", changed, err)
	}
}

func TestVaultWatcherRejectsBadSecrets(t *testing.T) {
	tests := []struct {
		name   string
		client *MockVaultClient
	}{
		{"read failure", &MockVaultClient{err: fmt.Errorf("permission denied")}},
		{"empty keys", &MockVaultClient{secrets: map[string]*config.VaultSecret{"p": keySecret(" , ", 3)}}},
		{"missing field", &MockVaultClient{secrets: map[string]*config.VaultSecret{
			"p": {Data: map[string]any{"other": "x"}, Version: 3},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vw := NewVaultWatcher(tt.client, "p", time.Minute, 1, func([]string, error) {}, nil)
			_, changed, err := vw.checkForUpdates()
			if err == nil || changed {
				t.Errorf("Expected error without change, got changed=%v err=%v", changed, err)
			}
			if vw.Status()["last_version"] != int64(1) {
				t.Errorf("Expected version to stay at 1, got %v", vw.Status()["last_version"])
			}
		})
	}
}

func TestStartKeyWatcherRotatesKeys(t *testing.T) {
	mockClient := &MockVaultClient{secrets: map[string]*config.VaultSecret{
		"secret/data/api-keys": keySecret("initial-key-0000", 1),
	}}

	cfg := &config.Config{Vault: config.VaultConfig{
		Secrets: config.VaultSecrets{APIKeys: "secret/data/api-keys"},
		Watch:   config.VaultWatchConfig{Enabled: true, PollInterval: 10 * time.Millisecond},
	}}
	s := NewServer(cfg, ServerConfig{APIKeys: []string{"initial-key-0000"}}, nil).WithVault(mockClient)

	rotations := make(chan bool, 10)
	watcher, err := s.startKeyWatcher(context.Background(), func(_ context.Context, ok bool) { rotations <- ok })
	if err != nil {
		t.Fatalf("Expected watcher to start, got %v", err)
	}
	if watcher == nil {
		t.Fatal("Expected a running watcher")
	}
	defer func() { _ = watcher.Stop() }()

	mockClient.set("secret/data/api-keys", keySecret("rotated-key-0000", 2))

	select {
	case ok := <-rotations:
		if !ok {
			t.Fatal("Expected successful rotation")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for key rotation")
	}

	if s.APIKeys.Contains("initial-key-0000") || !s.APIKeys.Contains("rotated-key-0000") {
		t.Error("Expected key ring to hold only the rotated key")
	}
}

func TestStartKeyWatcherDisabled(t *testing.T) {
	s := NewServer(&config.Config{}, ServerConfig{}, nil)
	watcher, err := s.startKeyWatcher(context.Background(), func(context.Context, bool) {})
	if err != nil || watcher != nil {
		t.Errorf("Expected no watcher without vault, got %v %v", watcher, err)
	}
}
