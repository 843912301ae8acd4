package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
	repository "github.com/xiaoxin-go/webchat/internal/pkg/chat/persistence/repository/port"
	social "github.com/xiaoxin-go/webchat/internal/repository/port"
)

// StartConversationInput carries an explicit "start chat" request, the other
// way a conversation record comes to exist besides a first message.
type StartConversationInput struct {
	OwnerID  int64
	TargetID int64
	Kind     chat.Kind
}

// StartConversationUseCase creates (or returns) the owner-side conversation
// record after verifying the counterpart relationship holds.
type StartConversationUseCase struct {
	directory repository.Directory
	social    social.Social
}

func NewStartConversationUseCase(directory repository.Directory, soc social.Social) *StartConversationUseCase {
	return &StartConversationUseCase{directory: directory, social: soc}
}

func (uc *StartConversationUseCase) Execute(ctx context.Context, in StartConversationInput) (*chat.Conversation, error) {
	if in.OwnerID <= 0 || in.TargetID <= 0 {
		return nil, fmt.Errorf("%w: owner id and target id are required", ErrValidation)
	}

	switch in.Kind {
	case chat.KindDirect:
		ok, err := uc.social.IsFriend(ctx, in.OwnerID, in.TargetID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStore, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: user %d is not a friend", ErrNotFound, in.TargetID)
		}
	case chat.KindGroup:
		if _, err := uc.social.GroupDisplay(ctx, in.TargetID); err != nil {
			if errors.Is(err, social.ErrGroupNotFound) {
				return nil, fmt.Errorf("%w: group %d", ErrNotFound, in.TargetID)
			}
			return nil, fmt.Errorf("%w: %v", ErrStore, err)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrValidation, chat.ErrInvalidKind)
	}

	conv, err := uc.directory.ResolveOrCreate(ctx, in.OwnerID, in.TargetID, in.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return &conv, nil
}
