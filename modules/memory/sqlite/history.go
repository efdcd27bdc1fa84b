package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/flemzord/chefbot/internal/cron"
	"github.com/flemzord/chefbot/internal/memory"
	"github.com/flemzord/chefbot/internal/provider"
)

// Store implements memory.MessageStore on a SQLite database. Each
// conversation is a run of rows ordered by seq.
type Store struct {
	db  *sql.DB
	wal bool
}

// Compile-time interface guards.
var (
	_ memory.MessageStore = (*Store)(nil)
	_ cron.Maintainer     = (*Store)(nil)
)

// Get returns the conversation's messages in order.
func (s *Store) Get(ctx context.Context, conversationID string) ([]provider.LLMMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, name
		FROM messages
		WHERE conversation_id = ?
		ORDER BY seq ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []provider.LLMMessage
	for rows.Next() {
		var (
			msg  provider.LLMMessage
			role string
		)
		if err := rows.Scan(&role, &msg.Content, &msg.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scan message: %w", err)
		}
		msg.Role = provider.MessageRole(role)
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: get messages rows: %w", err)
	}
	return msgs, nil
}

// Put replaces the conversation's messages in a single transaction.
func (s *Store) Put(ctx context.Context, conversationID string, messages []provider.LLMMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin put tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("sqlite: clear messages: %w", err)
	}

	if len(messages) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO messages (conversation_id, seq, role, content, name)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("sqlite: prepare insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, msg := range messages {
			if _, err := stmt.ExecContext(ctx, conversationID, i, string(msg.Role), msg.Content, msg.Name); err != nil {
				return fmt.Errorf("sqlite: insert message %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit put: %w", err)
	}
	return nil
}

// Delete removes every message of the conversation.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("sqlite: delete conversation: %w", err)
	}
	return nil
}

// Conversations returns the IDs of all stored conversations, sorted.
func (s *Store) Conversations(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT conversation_id FROM messages ORDER BY conversation_id")
	if err != nil {
		return nil, fmt.Errorf("sqlite: list conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scan conversation id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Maintain refreshes query planner statistics and, in WAL mode, folds the
// write-ahead log back into the database file.
func (s *Store) Maintain(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return fmt.Errorf("sqlite: optimize: %w", err)
	}
	if s.wal {
		if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			return fmt.Errorf("sqlite: wal checkpoint: %w", err)
		}
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
