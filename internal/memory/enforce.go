package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/chefbot/internal/provider"
)

// minCompactable is the smallest number of non-system messages worth
// summarizing. With fewer, the history goes straight to the discard step.
const minCompactable = 3

// enforce brings history within the token budget and reports whether it
// changed. It never mutates the caller's slice.
//
// Over budget, the messages before the last one are replaced by a single
// summary message and the last message is kept verbatim. If the result is
// still over budget, the oldest non-system messages are discarded one at a
// time. The system message, if any, always ends up at index 0 and is never
// removed, even when it alone exceeds the budget.
func (m *ConversationMemory) enforce(ctx context.Context, conversationID string, history []provider.LLMMessage) ([]provider.LLMMessage, bool, error) {
	cost := m.tokenizer.CountMessages(history)
	if cost <= m.maxTokens {
		m.metrics.observeTokens(cost)
		return history, false, nil
	}

	system, hasSystem, rest := splitSystem(history)
	with := func(rest []provider.LLMMessage) []provider.LLMMessage {
		if !hasSystem {
			return rest
		}
		return append([]provider.LLMMessage{system}, rest...)
	}

	if len(rest) >= minCompactable {
		toCompact, kept := rest[:len(rest)-1], rest[len(rest)-1]

		summary, err := m.summarize(ctx, toCompact)
		if err != nil {
			m.logger.Warn("summarization failed", "conversation", conversationID, "error", err)
			return nil, false, fmt.Errorf("%w: %w", ErrSummarization, err)
		}

		rest = []provider.LLMMessage{
			{Role: provider.MessageRoleSummary, Content: SummaryPrefix + summary},
			kept,
		}
		compactedCost := m.tokenizer.CountMessages(with(rest))
		m.metrics.compacted()
		m.logger.Info("conversation compacted",
			"conversation", conversationID,
			"compacted_messages", len(toCompact),
			"tokens_before", cost,
			"tokens_after", compactedCost,
		)
		if compactedCost <= m.maxTokens {
			m.metrics.observeTokens(compactedCost)
			return with(rest), true, nil
		}
	}

	discarded := 0
	for len(rest) > 0 && m.tokenizer.CountMessages(with(rest)) > m.maxTokens {
		rest = rest[1:]
		discarded++
	}
	m.metrics.discarded(discarded)

	result := with(rest)
	finalCost := m.tokenizer.CountMessages(result)
	m.metrics.observeTokens(finalCost)
	if discarded > 0 {
		m.logger.Debug("messages discarded", "conversation", conversationID, "count", discarded)
	}
	if finalCost > m.maxTokens {
		m.logger.Warn("system message alone exceeds token budget",
			"conversation", conversationID,
			"tokens", finalCost,
			"max_tokens", m.maxTokens,
		)
	}
	return result, !slices.Equal(result, history), nil
}

func (m *ConversationMemory) summarize(ctx context.Context, messages []provider.LLMMessage) (string, error) {
	ctx, span := m.tracer.Start(ctx, "memory.summarize", trace.WithAttributes(
		attribute.Int("messages", len(messages)),
	))
	start := time.Now()
	summary, err := m.summarizer.Summarize(ctx, slices.Clone(messages))
	m.metrics.summarized(time.Since(start), err)
	endSpan(span, err)
	return summary, err
}

// systemIndex returns the index of the system message in history, or -1.
func systemIndex(history []provider.LLMMessage) int {
	return slices.IndexFunc(history, func(msg provider.LLMMessage) bool {
		return msg.Role == provider.MessageRoleSystem
	})
}

// splitSystem separates the system message from the rest of history.
// The returned rest never aliases history.
func splitSystem(history []provider.LLMMessage) (provider.LLMMessage, bool, []provider.LLMMessage) {
	i := systemIndex(history)
	if i < 0 {
		return provider.LLMMessage{}, false, slices.Clone(history)
	}
	rest := slices.Concat(history[:i], history[i+1:])
	return history[i], true, rest
}
