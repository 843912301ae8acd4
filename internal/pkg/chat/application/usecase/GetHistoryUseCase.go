package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
	repository "github.com/xiaoxin-go/webchat/internal/pkg/chat/persistence/repository/port"
	"github.com/xiaoxin-go/webchat/internal/pkg/chat/store"
)

// GetHistoryInput addresses one page of a conversation's message log.
// Cursor is empty for the first (newest) page.
type GetHistoryInput struct {
	ConversationID int64
	UserID         int64
	Cursor         string
	Limit          int
}

// GetHistoryPage is one newest-first page plus the cursor for the next one.
// NextCursor is empty when the page was not full.
type GetHistoryPage struct {
	Messages   []chat.Message
	NextCursor string
}

// GetHistoryUseCase reads recent messages for a conversation the user owns a
// record of. Fetching history marks the conversation read.
type GetHistoryUseCase struct {
	directory repository.Directory
	store     *store.Store
	logger    *zap.SugaredLogger
	limit     int
}

func NewGetHistoryUseCase(directory repository.Directory, st *store.Store, logger *zap.SugaredLogger, defaultLimit int) *GetHistoryUseCase {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &GetHistoryUseCase{directory: directory, store: st, logger: logger, limit: defaultLimit}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) (*GetHistoryPage, error) {
	if in.ConversationID <= 0 || in.UserID <= 0 {
		return nil, fmt.Errorf("%w: conversation id and user id are required", ErrValidation)
	}

	conv, err := uc.directory.Get(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: conversation %d", ErrNotFound, in.ConversationID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if conv.OwnerID != in.UserID {
		return nil, fmt.Errorf("%w: conversation %d", ErrNotFound, in.ConversationID)
	}

	limit := in.Limit
	if limit <= 0 {
		limit = uc.limit
	}

	var msgs []chat.Message
	if in.Cursor == "" {
		msgs, err = uc.store.Recent(ctx, conv.Kind, conv.Key(), limit)
	} else {
		var cursor store.Cursor
		cursor, err = store.ParseCursor(in.Cursor)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		msgs, err = uc.store.Before(ctx, conv.Kind, conv.Key(), cursor, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	// Reading history means the owner has seen the conversation.
	if err := uc.directory.ClearUnread(ctx, conv.ID); err != nil {
		uc.logger.Warnf("history: clear unread for conversation %d: %v", conv.ID, err)
	}

	page := &GetHistoryPage{Messages: msgs}
	if len(msgs) == limit {
		page.NextCursor = store.MessageCursor(msgs[len(msgs)-1]).String()
	}
	return page, nil
}
