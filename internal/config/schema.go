// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for chefbot.
package config

import (
	"gopkg.in/yaml.v3"

	"github.com/flemzord/chefbot/internal/telemetry"
)

// Default values applied by ApplyDefaults.
const (
	DefaultConversationID = "recipe-bot"
	DefaultMaxTokens      = 1000
	DefaultTokenizer      = "tiktoken"
	DefaultTokenizerModel = "gpt-4o"
	DefaultCharsPerToken  = 4
	DefaultProvider       = "provider.openai"
	DefaultSummaryTokens  = 300
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// DataDir overrides the directory where stores keep their files.
	DataDir string `yaml:"data_dir,omitempty"`

	Memory    MemoryConfig     `yaml:"memory"`
	Bot       BotConfig        `yaml:"bot"`
	Telemetry telemetry.Config `yaml:"telemetry"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "memory.sqlite").
	Modules map[string]yaml.Node `yaml:"modules"`
}

// MemoryConfig configures conversation memory.
type MemoryConfig struct {
	// ConversationID is the conversation the CLI chats in.
	ConversationID string `yaml:"conversation_id"`

	// MaxTokens is the per-conversation token budget.
	MaxTokens int `yaml:"max_tokens"`

	// Tokenizer is "tiktoken" or "estimate".
	Tokenizer      string  `yaml:"tokenizer"`
	TokenizerModel string  `yaml:"tokenizer_model"`
	CharsPerToken  float64 `yaml:"chars_per_token"`

	// Store is the ID of the module providing the message store. Empty
	// keeps histories in process memory.
	Store string `yaml:"store"`

	Summarizer SummarizerConfig `yaml:"summarizer"`
}

// SummarizerConfig configures history compaction.
type SummarizerConfig struct {
	// Provider is the ID of the provider module that writes summaries.
	Provider     string `yaml:"provider"`
	TargetTokens int    `yaml:"target_tokens"`
}

// BotConfig configures the recipe assistant.
type BotConfig struct {
	// Provider is the ID of the provider module that answers the user.
	Provider string `yaml:"provider"`

	// Fallbacks are provider module IDs tried in order when the provider is
	// rate limited or unavailable.
	Fallbacks []string `yaml:"fallbacks,omitempty"`

	Temperature       *float64 `yaml:"temperature,omitempty"`
	MaxResponseTokens int      `yaml:"max_response_tokens,omitempty"`

	// SystemPrompt replaces the built-in recipe assistant prompt.
	SystemPrompt string `yaml:"system_prompt,omitempty"`
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *Config) {
	m := &cfg.Memory
	if m.ConversationID == "" {
		m.ConversationID = DefaultConversationID
	}
	if m.MaxTokens == 0 {
		m.MaxTokens = DefaultMaxTokens
	}
	if m.Tokenizer == "" {
		m.Tokenizer = DefaultTokenizer
	}
	if m.TokenizerModel == "" {
		m.TokenizerModel = DefaultTokenizerModel
	}
	if m.CharsPerToken == 0 {
		m.CharsPerToken = DefaultCharsPerToken
	}
	if cfg.Bot.Provider == "" {
		cfg.Bot.Provider = DefaultProvider
	}
	if m.Summarizer.Provider == "" {
		m.Summarizer.Provider = cfg.Bot.Provider
	}
	if m.Summarizer.TargetTokens == 0 {
		m.Summarizer.TargetTokens = DefaultSummaryTokens
	}
}
