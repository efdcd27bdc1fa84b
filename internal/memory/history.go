package memory

import (
	"context"

	"github.com/flemzord/chefbot/internal/provider"
)

// MessageStore persists the ordered message history of each conversation.
// It is a plain keyed store: it applies no budget or pinning rules of its
// own. Implementations must be safe for concurrent use.
type MessageStore interface {
	// Get returns the stored history for a conversation in insertion order.
	// An unknown conversation yields an empty history and no error.
	Get(ctx context.Context, conversationID string) ([]provider.LLMMessage, error)

	// Put replaces the stored history for a conversation.
	Put(ctx context.Context, conversationID string, messages []provider.LLMMessage) error

	// Delete removes all messages for a conversation. Deleting an unknown
	// conversation is not an error.
	Delete(ctx context.Context, conversationID string) error
}
