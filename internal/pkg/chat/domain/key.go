package chat

import (
	"fmt"
	"strconv"
)

// ConversationKey identifies the shared message log of a conversation.
//
// Contract: the derivation is order-independent for direct chats, so the send
// paths of both participants address the same log. Direct keys are the two
// user ids sorted ascending and joined with "_"; group keys are the group id.
func ConversationKey(kind Kind, senderID, targetID int64) (string, error) {
	switch kind {
	case KindDirect:
		return DirectKey(senderID, targetID), nil
	case KindGroup:
		return GroupKey(targetID), nil
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidKind, kind)
	}
}

// DirectKey derives the log key for a one-to-one conversation.
// DirectKey(a, b) == DirectKey(b, a).
func DirectKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatInt(a, 10) + "_" + strconv.FormatInt(b, 10)
}

// GroupKey derives the log key for a group conversation.
func GroupKey(groupID int64) string {
	return strconv.FormatInt(groupID, 10)
}
