package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const globalPrompts = ""

// LoadedPrompts holds the resolved prompt text for one operation.
// An empty field means the built-in default applies.
type LoadedPrompts struct {
	System string
	User   string
}

// PromptStore resolves custom prompts per operation. File contents are
// cached and can be reloaded while the server runs.
type PromptStore struct {
	mu       sync.RWMutex
	settings map[string]PromptConfig
	loaded   map[string]LoadedPrompts // file contents only
}

// NewPromptStore reads every prompt file referenced by c
func NewPromptStore(c *Config) (*PromptStore, error) {
	s := &PromptStore{
		settings: map[string]PromptConfig{globalPrompts: c.AI.Prompts},
		loaded:   map[string]LoadedPrompts{},
	}
	for _, op := range Operations {
		s.settings[op] = c.operationPrompts(op)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads prompt files. On error the previous contents are kept.
func (s *PromptStore) Reload() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	s.mu.RLock()
	settings := s.settings
	s.mu.RUnlock()

	loaded := make(map[string]LoadedPrompts, len(settings))
	for key, pc := range settings {
		var lp LoadedPrompts
		var err error
		if pc.SystemFile != "" {
			if lp.System, err = loadPromptFromFile(pc.SystemFile, "system", operationLabel(key)); err != nil {
				return err
			}
		}
		if pc.UserFile != "" {
			if lp.User, err = loadPromptFromFile(pc.UserFile, "user", operationLabel(key)); err != nil {
				return err
			}
		}
		loaded[key] = lp
	}

	s.mu.Lock()
	s.loaded = loaded
	s.mu.Unlock()

	logPromptLoadingSummary(loaded)
	return nil
}

// Get returns the prompts for op. Operation settings win over global ones,
// and within each level a file wins over inline text.
func (s *PromptStore) Get(op string) LoadedPrompts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out LoadedPrompts
	for _, key := range []string{op, globalPrompts} {
		pc := s.settings[key]
		lp := s.loaded[key]
		if out.System == "" {
			out.System = firstNonEmpty(lp.System, pc.System)
		}
		if out.User == "" {
			out.User = firstNonEmpty(lp.User, pc.User)
		}
	}
	return out
}

// Files returns the absolute paths of every configured prompt file
func (s *PromptStore) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]bool{}
	var files []string
	for _, pc := range s.settings {
		for _, f := range []string{pc.SystemFile, pc.UserFile} {
			if f == "" {
				continue
			}
			abs, err := filepath.Abs(f)
			if err != nil || seen[abs] {
				continue
			}
			seen[abs] = true
			files = append(files, abs)
		}
	}
	sort.Strings(files)
	return files
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
		}
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	validateFile(c.AI.Prompts.SystemFile, "system", "global")
	validateFile(c.AI.Prompts.UserFile, "user", "global")
	for _, op := range Operations {
		pc := c.operationPrompts(op)
		validateFile(pc.SystemFile, "system", op)
		validateFile(pc.UserFile, "user", op)
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

func logPromptLoadingSummary(loaded map[string]LoadedPrompts) {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	promptCount := 0
	for _, key := range append([]string{globalPrompts}, Operations...) {
		lp := loaded[key]
		if lp.System != "" {
			log.Printf("[CONFIG] %s system prompt: loaded from file", operationLabel(key))
			promptCount++
		}
		if lp.User != "" {
			log.Printf("[CONFIG] %s user prompt: loaded from file", operationLabel(key))
			promptCount++
		}
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompt files loaded - using config or built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}

	log.Println("[CONFIG] ==========================================")
}

func operationLabel(key string) string {
	if key == globalPrompts {
		return "global"
	}
	return key
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
