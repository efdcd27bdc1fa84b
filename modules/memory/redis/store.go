package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/flemzord/chefbot/internal/memory"
	"github.com/flemzord/chefbot/internal/provider"
)

// Store implements memory.MessageStore on Redis. Each conversation is a
// list of JSON-encoded messages under {prefix}conv:{id}.
type Store struct {
	client    goredis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

var _ memory.MessageStore = (*Store)(nil)

// NewStore wraps an existing client. An empty prefix falls back to "chefbot:".
func NewStore(client goredis.UniversalClient, keyPrefix string, ttl time.Duration) *Store {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &Store{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *Store) key(conversationID string) string {
	return s.keyPrefix + "conv:" + conversationID
}

// Get returns the conversation's messages in order.
func (s *Store) Get(ctx context.Context, conversationID string) ([]provider.LLMMessage, error) {
	raw, err := s.client.LRange(ctx, s.key(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get messages: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	msgs := make([]provider.LLMMessage, 0, len(raw))
	for i, item := range raw {
		var msg provider.LLMMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("redis: decode message %d: %w", i, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Put replaces the conversation's messages atomically.
func (s *Store) Put(ctx context.Context, conversationID string, messages []provider.LLMMessage) error {
	values := make([]any, 0, len(messages))
	for i, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("redis: encode message %d: %w", i, err)
		}
		values = append(values, data)
	}

	key := s.key(conversationID)
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) == 0 {
			return nil
		}
		pipe.RPush(ctx, key, values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: put messages: %w", err)
	}
	return nil
}

// Delete removes the conversation.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, s.key(conversationID)).Err(); err != nil {
		return fmt.Errorf("redis: delete conversation: %w", err)
	}
	return nil
}

// Ping checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
