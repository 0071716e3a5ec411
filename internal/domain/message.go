package domain

import (
	"strings"
	"time"
)

const MaxMessageLength = 2000

type Message struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m *Message) Validate() error {
	m.Content = strings.TrimSpace(m.Content)
	if m.RecipientID <= 0 {
		return invalid("recipient_id is required", "recipient_id")
	}
	if m.RecipientID == m.SenderID {
		return invalid("cannot send a message to yourself", "recipient_id")
	}
	if m.Content == "" {
		return invalid("content is required", "content")
	}
	if len(m.Content) > MaxMessageLength {
		return invalid("content exceeds 2000 characters", "content")
	}
	return nil
}
