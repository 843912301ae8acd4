package usecase

import (
	"context"
	"fmt"

	"github.com/xiaoxin-go/webchat/internal/pkg/chat/presence"
)

// EnterViewInput binds a user's live connection handle to a channel.
type EnterViewInput struct {
	UserID  int64
	Channel presence.Channel
	Handle  string
}

// EnterViewUseCase registers presence when a user opens a conversation or
// the conversation list. A new entry silently replaces any previous binding
// for the same (user, channel).
type EnterViewUseCase struct {
	presence *presence.Registry
}

func NewEnterViewUseCase(reg *presence.Registry) *EnterViewUseCase {
	return &EnterViewUseCase{presence: reg}
}

func (uc *EnterViewUseCase) Execute(ctx context.Context, in EnterViewInput) error {
	if in.UserID <= 0 || in.Handle == "" {
		return fmt.Errorf("%w: user id and handle are required", ErrValidation)
	}
	if err := uc.presence.Bind(ctx, in.UserID, in.Channel, in.Handle); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

// ExitViewInput releases a binding. Handle guards against evicting a newer
// login; pass it when known.
type ExitViewInput struct {
	UserID  int64
	Channel presence.Channel
	Handle  string
}

// ExitViewUseCase removes presence on view exit or disconnect. Removal is
// idempotent; exiting an already-absent view is not an error.
type ExitViewUseCase struct {
	presence *presence.Registry
}

func NewExitViewUseCase(reg *presence.Registry) *ExitViewUseCase {
	return &ExitViewUseCase{presence: reg}
}

func (uc *ExitViewUseCase) Execute(ctx context.Context, in ExitViewInput) error {
	if in.UserID <= 0 {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if err := uc.presence.Unbind(ctx, in.UserID, in.Channel, in.Handle); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}
