package chat

import "time"

// Conversation is one viewer's record of a chat. Each participant owns an
// independent row for the same logical conversation (A's view of the A-B chat
// and B's view are separate rows sharing a log key), which is what lets the
// last-message summary and unread count differ per viewer.
type Conversation struct {
	ID          int64     `db:"id"`
	OwnerID     int64     `db:"owner_id"`
	TargetID    int64     `db:"target_id"` // peer user id for direct, group id for group
	Kind        Kind      `db:"kind"`
	LastMessage string    `db:"last_message"`
	Unread      int       `db:"unread"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Key returns the message-log key this conversation record addresses.
func (c Conversation) Key() string {
	if c.Kind == KindGroup {
		return GroupKey(c.TargetID)
	}
	return DirectKey(c.OwnerID, c.TargetID)
}

// Summary is the denormalized list-view projection of a conversation,
// with display name and logo resolved for the owning viewer.
type Summary struct {
	ConversationID  int64     `json:"conversation_id"`
	ConversationKey string    `json:"conversation_key"`
	TargetID        int64     `json:"target_id"`
	Kind            string    `json:"kind"`
	Name            string    `json:"name"`
	Logo            string    `json:"logo"`
	LastMessage     string    `json:"last_message"`
	Unread          int       `json:"unread"`
	UpdatedAt       time.Time `json:"update_time"`
}
