package usecase

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/xiaoxin-go/webchat/internal/pkg/chat/persistence/repository/port"
)

// DeleteConversationInput identifies the owner-side record to remove.
type DeleteConversationInput struct {
	ConversationID int64
	OwnerID        int64
}

// DeleteConversationUseCase removes a conversation from the owner's list.
// The counterpart keeps their own record of the same logical conversation.
type DeleteConversationUseCase struct {
	directory repository.Directory
}

func NewDeleteConversationUseCase(directory repository.Directory) *DeleteConversationUseCase {
	return &DeleteConversationUseCase{directory: directory}
}

func (uc *DeleteConversationUseCase) Execute(ctx context.Context, in DeleteConversationInput) error {
	if in.ConversationID <= 0 || in.OwnerID <= 0 {
		return fmt.Errorf("%w: conversation id and owner id are required", ErrValidation)
	}
	if err := uc.directory.Delete(ctx, in.ConversationID, in.OwnerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: conversation %d", ErrNotFound, in.ConversationID)
		}
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}
