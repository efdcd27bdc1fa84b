// Package chat implements the recipe assistant on top of conversation
// memory and an LLM provider.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flemzord/chefbot/internal/memory"
	"github.com/flemzord/chefbot/internal/provider"
)

// DefaultTemperature is the sampling temperature used when Config leaves it unset.
const DefaultTemperature = 0.7

// ErrEmptyInput is returned when the user sends only whitespace.
var ErrEmptyInput = errors.New("chat: empty input")

// Config configures a Bot.
type Config struct {
	Provider provider.Provider
	Memory   *memory.ConversationMemory

	// SystemPrompt defaults to DefaultSystemPrompt.
	SystemPrompt string

	// Temperature defaults to DefaultTemperature.
	Temperature *float64

	// MaxResponseTokens caps each answer. Zero leaves it to the provider.
	MaxResponseTokens int

	Logger *slog.Logger
}

// Bot answers user turns. Safe for concurrent use; turns of the same
// conversation are serialized by the memory.
type Bot struct {
	provider     provider.Provider
	memory       *memory.ConversationMemory
	systemPrompt string
	temperature  float64
	maxTokens    int
	logger       *slog.Logger
}

// NewBot creates a Bot.
func NewBot(cfg Config) (*Bot, error) {
	if cfg.Provider == nil {
		return nil, errors.New("chat: provider is required")
	}
	if cfg.Memory == nil {
		return nil, errors.New("chat: memory is required")
	}
	b := &Bot{
		provider:     cfg.Provider,
		memory:       cfg.Memory,
		systemPrompt: cfg.SystemPrompt,
		temperature:  DefaultTemperature,
		maxTokens:    cfg.MaxResponseTokens,
		logger:       cfg.Logger,
	}
	if b.systemPrompt == "" {
		b.systemPrompt = DefaultSystemPrompt
	}
	if cfg.Temperature != nil {
		b.temperature = *cfg.Temperature
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.logger = b.logger.With("component", "chat")
	return b, nil
}

// Greeting returns the text that opens a session.
func (b *Bot) Greeting() string { return Greeting }

// Reply records input in the conversation, asks the model for an answer
// over the budget-bounded history, records the answer and parses it.
func (b *Bot) Reply(ctx context.Context, conversationID, input string) (Response, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Response{}, ErrEmptyInput
	}

	if err := b.memory.Append(ctx, conversationID, provider.SystemMessage(b.systemPrompt)); err != nil {
		return Response{}, fmt.Errorf("chat: recording system prompt: %w", err)
	}
	if err := b.memory.Append(ctx, conversationID, provider.UserMessage(input)); err != nil {
		return Response{}, fmt.Errorf("chat: recording user message: %w", err)
	}

	history, err := b.memory.Messages(ctx, conversationID)
	if err != nil {
		return Response{}, fmt.Errorf("chat: reading history: %w", err)
	}

	temp := b.temperature
	resp, err := b.provider.Complete(ctx, provider.CompletionRequest{
		Messages:    history,
		MaxTokens:   b.maxTokens,
		Temperature: &temp,
		JSONMode:    true,
	})
	if err != nil {
		return Response{}, fmt.Errorf("chat: completion: %w", err)
	}

	if err := b.memory.Append(ctx, conversationID, provider.AssistantMessage(resp.Content)); err != nil {
		return Response{}, fmt.Errorf("chat: recording answer: %w", err)
	}

	out := ParseResponse(resp.Content)
	b.logger.Debug("reply",
		"conversation", conversationID,
		"kind", out.Kind,
		"history_messages", len(history),
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return out, nil
}

// History returns the conversation as the model currently sees it.
func (b *Bot) History(ctx context.Context, conversationID string) ([]provider.LLMMessage, error) {
	return b.memory.Messages(ctx, conversationID)
}

// Reset forgets the conversation.
func (b *Bot) Reset(ctx context.Context, conversationID string) error {
	return b.memory.Clear(ctx, conversationID)
}

// Memory returns the conversation memory backing the bot.
func (b *Bot) Memory() *memory.ConversationMemory { return b.memory }
