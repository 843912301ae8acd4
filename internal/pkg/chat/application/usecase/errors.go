package usecase

import "errors"

var (
	// ErrValidation marks malformed input rejected before any state was created.
	ErrValidation = errors.New("chat use case validation error")

	// ErrNotFound marks a referenced conversation, user or group that does not exist.
	ErrNotFound = errors.New("chat use case not found")

	// ErrStore marks an infrastructure/persistence failure inside a use case.
	// On the send path it means the message was NOT durably recorded.
	ErrStore = errors.New("chat use case persistence error")
)
