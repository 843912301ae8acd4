package chat

import "errors"

// Domain-level errors for chat behaviors
var (
	ErrInvalidKind = errors.New("chat: invalid conversation kind")
	ErrEmptyBody   = errors.New("chat: message body is empty")
	ErrBadSender   = errors.New("chat: sender id is required")
	ErrBadTarget   = errors.New("chat: target id is required")
)
