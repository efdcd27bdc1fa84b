package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/flemzord/chefbot/internal/provider"
)

// InMemoryStore is a thread-safe, in-memory implementation of MessageStore.
// Histories are copied on the way in and out so callers never share slices
// with the store.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]provider.LLMMessage
}

// NewInMemoryStore creates a new empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		conversations: make(map[string][]provider.LLMMessage),
	}
}

// Compile-time interface check.
var _ MessageStore = (*InMemoryStore)(nil)

// Get returns a copy of the conversation's history.
func (s *InMemoryStore) Get(_ context.Context, conversationID string) ([]provider.LLMMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.conversations[conversationID]), nil
}

// Put replaces the conversation's history with a copy of messages.
func (s *InMemoryStore) Put(_ context.Context, conversationID string, messages []provider.LLMMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(messages) == 0 {
		delete(s.conversations, conversationID)
		return nil
	}
	s.conversations[conversationID] = slices.Clone(messages)
	return nil
}

// Delete removes the conversation's history.
func (s *InMemoryStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, conversationID)
	return nil
}

// Len returns the number of conversations currently stored.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
