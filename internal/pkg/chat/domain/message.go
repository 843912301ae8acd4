package chat

import (
	"strings"
	"time"
)

// Message is an immutable log entry in a conversation. Once appended to the
// store it is never mutated; SentAt and Seq are assigned by the store.
type Message struct {
	SenderID        int64     `json:"sender_id"`
	ConversationKey string    `json:"conversation_key"`
	Kind            Kind      `json:"kind"`
	Body            string    `json:"body"`
	SentAt          time.Time `json:"sent_at"`
	Seq             int64     `json:"seq"`
}

// NewMessage validates and shapes a message ready to persist.
func NewMessage(senderID int64, kind Kind, key, body string) (Message, error) {
	if senderID <= 0 {
		return Message{}, ErrBadSender
	}
	if !kind.Valid() {
		return Message{}, ErrInvalidKind
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return Message{}, ErrEmptyBody
	}

	return Message{
		SenderID:        senderID,
		ConversationKey: key,
		Kind:            kind,
		Body:            body,
	}, nil
}
