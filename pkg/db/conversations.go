package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dtnitsch/school-assistant/models"
)

// LogConversation records one exchange.
func (db *DB) LogConversation(ctx context.Context, c models.Conversation) error {
	ts := c.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO conversations (session_id, user_message, bot_response, language, intent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.SessionID, c.UserMessage, c.BotResponse, c.Language, c.Intent, formatTime(ts))
	if err != nil {
		return fmt.Errorf("failed to log conversation: %w", err)
	}
	return nil
}

// RecentConversations returns up to limit exchanges, newest first.
func (db *DB) RecentConversations(ctx context.Context, limit int) ([]models.Conversation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT conversation_id, session_id, user_message, bot_response, language, intent, created_at
		FROM conversations
		ORDER BY created_at DESC, conversation_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var (
			c                         models.Conversation
			session, language, intent sql.NullString
			createdAt                 string
		)
		if err := rows.Scan(&c.ID, &session, &c.UserMessage, &c.BotResponse, &language, &intent, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		c.SessionID = session.String
		c.Language = language.String
		c.Intent = intent.String
		c.Timestamp = parseTime(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountConversations returns the number of logged exchanges.
func (db *DB) CountConversations(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversations").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return n, nil
}
