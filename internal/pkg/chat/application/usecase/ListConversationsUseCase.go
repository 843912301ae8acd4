package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
	repository "github.com/xiaoxin-go/webchat/internal/pkg/chat/persistence/repository/port"
	social "github.com/xiaoxin-go/webchat/internal/repository/port"
)

// ListConversationsInput identifies whose conversation list to build.
type ListConversationsInput struct {
	UserID int64
}

// ListConversationsUseCase builds the viewer's conversation list, resolving
// display metadata per conversation. Conversations whose counterpart
// relationship no longer holds (unfriended, group gone) are excluded from
// the listing rather than erroring.
type ListConversationsUseCase struct {
	directory repository.Directory
	social    social.Social
	logger    *zap.SugaredLogger
}

func NewListConversationsUseCase(directory repository.Directory, soc social.Social, logger *zap.SugaredLogger) *ListConversationsUseCase {
	return &ListConversationsUseCase{directory: directory, social: soc, logger: logger}
}

// Execute returns the user's conversations, most-recently-updated first.
func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]chat.Summary, error) {
	if in.UserID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	convs, err := uc.directory.ListForUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	summaries := make([]chat.Summary, 0, len(convs))
	for _, conv := range convs {
		summary, ok := uc.resolve(ctx, in.UserID, conv)
		if !ok {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (uc *ListConversationsUseCase) resolve(ctx context.Context, viewerID int64, conv chat.Conversation) (chat.Summary, bool) {
	s := chat.Summary{
		ConversationID:  conv.ID,
		ConversationKey: conv.Key(),
		TargetID:        conv.TargetID,
		Kind:            conv.Kind.String(),
		LastMessage:     conv.LastMessage,
		Unread:          conv.Unread,
		UpdatedAt:       conv.UpdatedAt,
	}

	switch conv.Kind {
	case chat.KindGroup:
		d, err := uc.social.GroupDisplay(ctx, conv.TargetID)
		if err != nil {
			if !errors.Is(err, social.ErrGroupNotFound) {
				uc.logger.Warnf("list: resolve group %d: %v", conv.TargetID, err)
			}
			return chat.Summary{}, false
		}
		s.Name, s.Logo = d.Name, d.Logo
	default:
		ok, err := uc.social.IsFriend(ctx, viewerID, conv.TargetID)
		if err != nil {
			uc.logger.Warnf("list: friendship check %d->%d: %v", viewerID, conv.TargetID, err)
			return chat.Summary{}, false
		}
		if !ok {
			return chat.Summary{}, false
		}

		d, err := uc.social.UserDisplay(ctx, conv.TargetID)
		if err != nil {
			if !errors.Is(err, social.ErrUserNotFound) {
				uc.logger.Warnf("list: resolve user %d: %v", conv.TargetID, err)
			}
			return chat.Summary{}, false
		}
		s.Name, s.Logo = d.Name, d.Logo

		if remark, err := uc.social.FriendRemark(ctx, viewerID, conv.TargetID); err == nil && remark != "" {
			s.Name = remark
		}
	}
	return s, true
}
