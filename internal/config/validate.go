package config

import (
	"errors"
	"fmt"

	"github.com/flemzord/chefbot/internal/core"
)

// Validate checks the structural validity of a Config.
// It verifies the version field, ensures modules are present, checks that
// all referenced module IDs exist in the registry and that the memory and
// bot sections point at configured modules. Call ApplyDefaults first.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if len(cfg.Modules) == 0 {
		errs = append(errs, errors.New("config: at least one module must be configured"))
	}

	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	errs = append(errs, validateMemory(cfg)...)
	errs = append(errs, validateReference(cfg, "bot.provider", cfg.Bot.Provider, "provider")...)
	seen := map[string]bool{cfg.Bot.Provider: true}
	for i, id := range cfg.Bot.Fallbacks {
		field := fmt.Sprintf("bot.fallbacks[%d]", i)
		if seen[id] {
			errs = append(errs, fmt.Errorf("config: %s repeats provider %q", field, id))
			continue
		}
		seen[id] = true
		errs = append(errs, validateReference(cfg, field, id, "provider")...)
	}

	if t := cfg.Bot.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, fmt.Errorf("config: bot.temperature must be within [0, 2], got %g", *t))
	}
	if cfg.Bot.MaxResponseTokens < 0 {
		errs = append(errs, fmt.Errorf("config: bot.max_response_tokens must not be negative, got %d", cfg.Bot.MaxResponseTokens))
	}
	if err := cfg.Telemetry.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateMemory(cfg *Config) []error {
	m := cfg.Memory
	var errs []error

	if m.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("config: memory.max_tokens must be positive, got %d", m.MaxTokens))
	}
	switch m.Tokenizer {
	case "tiktoken", "estimate":
	default:
		errs = append(errs, fmt.Errorf("config: memory.tokenizer %q is not supported (supported: tiktoken, estimate)", m.Tokenizer))
	}
	if m.CharsPerToken < 0 {
		errs = append(errs, fmt.Errorf("config: memory.chars_per_token must not be negative, got %g", m.CharsPerToken))
	}
	if m.Summarizer.TargetTokens < 0 {
		errs = append(errs, fmt.Errorf("config: memory.summarizer.target_tokens must not be negative, got %d", m.Summarizer.TargetTokens))
	}
	if m.Summarizer.TargetTokens >= m.MaxTokens && m.MaxTokens > 0 {
		errs = append(errs, fmt.Errorf("config: memory.summarizer.target_tokens (%d) must be below memory.max_tokens (%d)", m.Summarizer.TargetTokens, m.MaxTokens))
	}

	if m.Store != "" {
		errs = append(errs, validateReference(cfg, "memory.store", m.Store, "memory")...)
	}
	errs = append(errs, validateReference(cfg, "memory.summarizer.provider", m.Summarizer.Provider, "provider")...)
	return errs
}

// validateReference checks that field names a configured module in the
// expected namespace.
func validateReference(cfg *Config, field, id, namespace string) []error {
	if id == "" {
		return []error{fmt.Errorf("config: %s is required", field)}
	}
	if ns := core.ModuleID(id).Namespace(); ns != namespace {
		return []error{fmt.Errorf("config: %s %q must be a %s module", field, id, namespace)}
	}
	if _, ok := cfg.Modules[id]; !ok {
		return []error{fmt.Errorf("config: %s references module %q which is not configured", field, id)}
	}
	return nil
}
