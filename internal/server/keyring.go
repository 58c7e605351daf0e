package server

import (
	"sync"
)

// KeyRing is the set of accepted API keys. It is safe for concurrent use
// and can be replaced while requests are being served.
type KeyRing struct {
	mu   sync.RWMutex
	keys map[string]bool
}

// NewKeyRing creates a key ring holding the non-empty keys
func NewKeyRing(keys []string) *KeyRing {
	kr := &KeyRing{}
	kr.Replace(keys)
	return kr
}

// Replace swaps the whole key set
func (kr *KeyRing) Replace(keys []string) {
	m := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			m[key] = true
		}
	}

	kr.mu.Lock()
	kr.keys = m
	kr.mu.Unlock()
}

// Contains reports whether key is accepted
func (kr *KeyRing) Contains(key string) bool {
	kr.mu.RLock()
	defer kr.mu.RUnlock()
	return kr.keys[key]
}

// Len returns the number of configured keys. Zero disables authentication.
func (kr *KeyRing) Len() int {
	kr.mu.RLock()
	defer kr.mu.RUnlock()
	return len(kr.keys)
}
