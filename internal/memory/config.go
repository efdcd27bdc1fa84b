package memory

import (
	"errors"
	"fmt"
	"log/slog"
)

// Config configures a ConversationMemory.
type Config struct {
	// MaxTokens is the token budget of every conversation. Required.
	MaxTokens int

	// Tokenizer measures histories against MaxTokens. Required.
	Tokenizer Tokenizer

	// Summarizer compacts histories that exceed MaxTokens. Required.
	Summarizer Summarizer

	// Store persists histories. Defaults to a new InMemoryStore.
	Store MessageStore

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics is optional; a nil value disables metric collection.
	Metrics *Metrics
}

func (cfg Config) validate() error {
	var errs []error
	if cfg.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max tokens must be positive, got %d", cfg.MaxTokens))
	}
	if cfg.Tokenizer == nil {
		errs = append(errs, errors.New("tokenizer is required"))
	}
	if cfg.Summarizer == nil {
		errs = append(errs, errors.New("summarizer is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// withDefaults returns a copy of cfg with optional fields filled in.
func (cfg Config) withDefaults() Config {
	if cfg.Store == nil {
		cfg.Store = NewInMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}
