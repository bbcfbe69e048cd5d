package types

import "time"

// Message is a direct message between two users.
type Message struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"senderId"`
	RecipientID int64     `json:"recipientId"`
	Body        string    `json:"body"`
	SentAt      time.Time `json:"sentAt"`
}
