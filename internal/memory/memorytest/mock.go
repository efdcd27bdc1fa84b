// Package memorytest provides test helpers for the memory package.
package memorytest

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/flemzord/chefbot/internal/memory"
	"github.com/flemzord/chefbot/internal/provider"
)

// ErrSummarizerDown is returned by FailingSummarizer.
var ErrSummarizerDown = errors.New("memorytest: summarizer unavailable")

// MockSummarizer is a configurable test double for memory.Summarizer.
// A nil SummarizeFunc returns "summary". Safe for concurrent use.
type MockSummarizer struct {
	SummarizeFunc func(ctx context.Context, messages []provider.LLMMessage) (string, error)

	mu    sync.Mutex
	calls [][]provider.LLMMessage
}

// Summarize records the input and delegates to SummarizeFunc.
func (m *MockSummarizer) Summarize(ctx context.Context, messages []provider.LLMMessage) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, slices.Clone(messages))
	m.mu.Unlock()
	if m.SummarizeFunc == nil {
		return "summary", nil
	}
	return m.SummarizeFunc(ctx, messages)
}

// Calls returns the number of Summarize calls so far.
func (m *MockSummarizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Call returns the messages passed to the i-th Summarize call.
func (m *MockSummarizer) Call(i int) []provider.LLMMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[i]
}

// FailingSummarizer returns a summarizer that always fails with ErrSummarizerDown.
func FailingSummarizer() *MockSummarizer {
	return &MockSummarizer{
		SummarizeFunc: func(context.Context, []provider.LLMMessage) (string, error) {
			return "", ErrSummarizerDown
		},
	}
}

// PerMessageTokenizer charges a fixed number of tokens per message.
type PerMessageTokenizer int

// CountMessages returns len(messages) times the per-message cost.
func (t PerMessageTokenizer) CountMessages(messages []provider.LLMMessage) int {
	return int(t) * len(messages)
}

// FixedTokenizer reports the same count for any non-empty sequence and
// zero for an empty one.
type FixedTokenizer int

// CountMessages returns the fixed count, or zero for no messages.
func (t FixedTokenizer) CountMessages(messages []provider.LLMMessage) int {
	if len(messages) == 0 {
		return 0
	}
	return int(t)
}

// LengthTokenizer charges one token per byte of content plus one per message.
type LengthTokenizer struct{}

// CountMessages sums content lengths plus a per-message overhead of one.
func (LengthTokenizer) CountMessages(messages []provider.LLMMessage) int {
	total := 0
	for _, msg := range messages {
		total += 1 + len(msg.Content)
	}
	return total
}

// FailingStore is a memory.MessageStore whose operations fail with Err
// when the matching flag is set. Unflagged operations use an in-memory store.
type FailingStore struct {
	Err      error
	FailGet  bool
	FailPut  bool
	FailDel  bool
	delegate *memory.InMemoryStore
	once     sync.Once
}

func (s *FailingStore) store() *memory.InMemoryStore {
	s.once.Do(func() { s.delegate = memory.NewInMemoryStore() })
	return s.delegate
}

// Get fails when FailGet is set.
func (s *FailingStore) Get(ctx context.Context, id string) ([]provider.LLMMessage, error) {
	if s.FailGet {
		return nil, s.Err
	}
	return s.store().Get(ctx, id)
}

// Put fails when FailPut is set.
func (s *FailingStore) Put(ctx context.Context, id string, messages []provider.LLMMessage) error {
	if s.FailPut {
		return s.Err
	}
	return s.store().Put(ctx, id, messages)
}

// Delete fails when FailDel is set.
func (s *FailingStore) Delete(ctx context.Context, id string) error {
	if s.FailDel {
		return s.Err
	}
	return s.store().Delete(ctx, id)
}

// Interface guards.
var (
	_ memory.Summarizer   = (*MockSummarizer)(nil)
	_ memory.Tokenizer    = PerMessageTokenizer(0)
	_ memory.Tokenizer    = FixedTokenizer(0)
	_ memory.Tokenizer    = LengthTokenizer{}
	_ memory.MessageStore = (*FailingStore)(nil)
)
