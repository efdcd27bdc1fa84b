package memory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/chefbot/internal/provider"
)

const tracerName = "github.com/flemzord/chefbot/internal/memory"

// ConversationMemory keeps per-conversation histories within a token budget.
//
// Every mutation of a conversation runs under that conversation's lane lock:
// load, apply the system-message rule, append, enforce the budget, persist.
// The lock is held while the summarizer runs, which blocks only the same
// conversation.
type ConversationMemory struct {
	maxTokens  int
	tokenizer  Tokenizer
	summarizer Summarizer
	store      MessageStore
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
	lanes      *laneLock
}

// New creates a ConversationMemory. It returns ErrInvalidConfig when the
// budget is not positive or a required collaborator is missing.
func New(cfg Config) (*ConversationMemory, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &ConversationMemory{
		maxTokens:  cfg.MaxTokens,
		tokenizer:  cfg.Tokenizer,
		summarizer: cfg.Summarizer,
		store:      cfg.Store,
		logger:     cfg.Logger.With("component", "memory"),
		metrics:    cfg.Metrics,
		tracer:     otel.Tracer(tracerName),
		lanes:      newLaneLock(),
	}, nil
}

// MaxTokens returns the per-conversation token budget.
func (m *ConversationMemory) MaxTokens() int { return m.maxTokens }

// Count returns the token cost of messages as measured by the configured
// tokenizer.
func (m *ConversationMemory) Count(messages []provider.LLMMessage) int {
	return m.tokenizer.CountMessages(messages)
}

// Append adds msg to the conversation and enforces the token budget.
//
// A system message replaces any existing system message and is placed at
// the front of the history. Appending a system message identical to the
// current one is a no-op. If compaction fails, the error wraps
// ErrSummarization and the stored history is left untouched.
func (m *ConversationMemory) Append(ctx context.Context, conversationID string, msg provider.LLMMessage) (err error) {
	if conversationID == "" {
		return ErrEmptyID
	}
	ctx, span := m.tracer.Start(ctx, "memory.Append", trace.WithAttributes(
		attribute.String("conversation.id", conversationID),
		attribute.String("message.role", string(msg.Role)),
	))
	defer func() { endSpan(span, err) }()

	m.lanes.acquire(conversationID)
	defer m.lanes.release(conversationID)

	history, err := m.load(ctx, conversationID)
	if err != nil {
		return err
	}

	if msg.Role == provider.MessageRoleSystem {
		if i := systemIndex(history); i >= 0 {
			if history[i] == msg {
				return nil
			}
			history = slices.Delete(history, i, i+1)
		}
		history = slices.Insert(history, 0, msg)
	} else {
		history = append(history, msg)
	}

	history, _, err = m.enforce(ctx, conversationID, history)
	if err != nil {
		return err
	}
	return m.save(ctx, conversationID, history)
}

// Messages returns the conversation's history. The budget is re-enforced
// on read; if that changes the history, the result is written back before
// returning. A read can therefore call the summarizer.
func (m *ConversationMemory) Messages(ctx context.Context, conversationID string) (_ []provider.LLMMessage, err error) {
	if conversationID == "" {
		return nil, ErrEmptyID
	}
	ctx, span := m.tracer.Start(ctx, "memory.Messages", trace.WithAttributes(
		attribute.String("conversation.id", conversationID),
	))
	defer func() { endSpan(span, err) }()

	m.lanes.acquire(conversationID)
	defer m.lanes.release(conversationID)

	history, changed, err := m.loadEnforced(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := m.save(ctx, conversationID, history); err != nil {
			return nil, err
		}
	}
	return slices.Clone(history), nil
}

// Compact enforces the budget on the stored history without reading it
// back. It reports whether the history changed.
func (m *ConversationMemory) Compact(ctx context.Context, conversationID string) (_ bool, err error) {
	if conversationID == "" {
		return false, ErrEmptyID
	}
	ctx, span := m.tracer.Start(ctx, "memory.Compact", trace.WithAttributes(
		attribute.String("conversation.id", conversationID),
	))
	defer func() { endSpan(span, err) }()

	m.lanes.acquire(conversationID)
	defer m.lanes.release(conversationID)

	history, changed, err := m.loadEnforced(ctx, conversationID)
	if err != nil || !changed {
		return false, err
	}
	return true, m.save(ctx, conversationID, history)
}

// Clear removes every message of the conversation. Clearing an empty or
// unknown conversation is not an error.
func (m *ConversationMemory) Clear(ctx context.Context, conversationID string) (err error) {
	if conversationID == "" {
		return ErrEmptyID
	}
	ctx, span := m.tracer.Start(ctx, "memory.Clear", trace.WithAttributes(
		attribute.String("conversation.id", conversationID),
	))
	defer func() { endSpan(span, err) }()

	m.lanes.acquire(conversationID)
	defer m.lanes.release(conversationID)

	if err := m.store.Delete(ctx, conversationID); err != nil {
		return fmt.Errorf("%w: deleting %s: %w", ErrStore, conversationID, err)
	}
	m.logger.Debug("conversation cleared", "conversation", conversationID)
	return nil
}

func (m *ConversationMemory) loadEnforced(ctx context.Context, conversationID string) ([]provider.LLMMessage, bool, error) {
	history, err := m.load(ctx, conversationID)
	if err != nil {
		return nil, false, err
	}
	return m.enforce(ctx, conversationID, history)
}

func (m *ConversationMemory) load(ctx context.Context, conversationID string) ([]provider.LLMMessage, error) {
	history, err := m.store.Get(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s: %w", ErrStore, conversationID, err)
	}
	return history, nil
}

func (m *ConversationMemory) save(ctx context.Context, conversationID string, history []provider.LLMMessage) error {
	if err := m.store.Put(ctx, conversationID, history); err != nil {
		return fmt.Errorf("%w: saving %s: %w", ErrStore, conversationID, err)
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
