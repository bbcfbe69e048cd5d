package memory

import (
	"context"
	"sort"

	"github.com/alumnet/apiserver/types"
)

// MessageRepository is the in-memory message log.
type MessageRepository struct {
	db *DB
}

func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(_ context.Context, msg types.Message) (types.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	msg.ID = r.db.nextID()
	msg.SentAt = r.db.now()
	r.db.messages = append(r.db.messages, msg)
	return msg, nil
}

func (r *MessageRepository) Conversation(_ context.Context, userA, userB int64) ([]types.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := []types.Message{}
	for _, m := range r.db.messages {
		if (m.SenderID == userA && m.RecipientID == userB) || (m.SenderID == userB && m.RecipientID == userA) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}
