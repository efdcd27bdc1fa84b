// Package memory keeps each conversation's message history under a fixed
// token budget. When a history grows past the budget, older messages are
// compacted into a single summary message; if that is not enough, the
// oldest messages are discarded. The system message is pinned at the front
// of the history and is never compacted or discarded.
package memory

import (
	"context"
	"errors"

	"github.com/flemzord/chefbot/internal/provider"
)

// SummaryPrefix is prepended to every summary produced by compaction.
const SummaryPrefix = "Previous conversation summary: "

// Sentinel errors returned by ConversationMemory.
var (
	// ErrInvalidConfig indicates New was called with an unusable Config.
	ErrInvalidConfig = errors.New("memory: invalid configuration")

	// ErrSummarization indicates the summarizer failed during compaction.
	// Nothing is persisted when this error is returned.
	ErrSummarization = errors.New("memory: summarization failed")

	// ErrStore indicates the backing MessageStore failed.
	ErrStore = errors.New("memory: store failure")

	// ErrEmptyID indicates an empty conversation ID.
	ErrEmptyID = errors.New("memory: empty conversation id")
)

// Tokenizer counts the tokens of a message sequence. Implementations must
// be deterministic and monotonic: appending a message never decreases the
// count.
type Tokenizer interface {
	CountMessages(messages []provider.LLMMessage) int
}

// Summarizer produces a condensed plain-text summary of a conversation
// segment. Any failure, including an empty result, is returned as an error.
type Summarizer interface {
	Summarize(ctx context.Context, messages []provider.LLMMessage) (string, error)
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc func(messages []provider.LLMMessage) int

// CountMessages calls f(messages).
func (f TokenizerFunc) CountMessages(messages []provider.LLMMessage) int { return f(messages) }

// SummarizerFunc adapts a function to the Summarizer interface.
type SummarizerFunc func(ctx context.Context, messages []provider.LLMMessage) (string, error)

// Summarize calls f(ctx, messages).
func (f SummarizerFunc) Summarize(ctx context.Context, messages []provider.LLMMessage) (string, error) {
	return f(ctx, messages)
}
