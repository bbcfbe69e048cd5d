package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/alumnet/apiserver/types"
)

// MessageRepository handles persistence for direct messages.
type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg types.Message) (types.Message, error) {
	msg.SentAt = time.Now().UTC()

	const query = `
		INSERT INTO messages (sender_id, recipient_id, body, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, msg.SenderID, msg.RecipientID, msg.Body, msg.SentAt).Scan(&msg.ID); err != nil {
		return types.Message{}, err
	}
	return msg, nil
}

// Conversation returns the messages exchanged between two users, oldest first.
func (r *MessageRepository) Conversation(ctx context.Context, userA, userB int64) ([]types.Message, error) {
	const query = `
		SELECT id, sender_id, recipient_id, body, sent_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
			OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY sent_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []types.Message{}
	for rows.Next() {
		var msg types.Message
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Body, &msg.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
