package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appport "github.com/xiaoxin-go/webchat/internal/pkg/chat/application/port"
	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
	repository "github.com/xiaoxin-go/webchat/internal/pkg/chat/persistence/repository/port"
	"github.com/xiaoxin-go/webchat/internal/pkg/chat/presence"
	"github.com/xiaoxin-go/webchat/internal/pkg/chat/store"
	social "github.com/xiaoxin-go/webchat/internal/repository/port"
)

// SendMessageInput carries the data needed to send a new message.
// Kind is parsed at the transport boundary; everything past the controller
// works with the closed variant.
type SendMessageInput struct {
	SenderID int64
	TargetID int64 // peer user id for direct, group id for group
	Kind     chat.Kind
	Body     string
}

// SendMessageResult is the durable acknowledgement returned to the sender.
type SendMessageResult struct {
	ConversationID  int64
	ConversationKey string
	SentAt          time.Time
	Seq             int64
}

// SendMessageUseCase routes one inbound message: validate, resolve the
// conversation, persist, then fan out to every present recipient.
//
// Failure policy: anything up to and including the store append fails the
// send and is surfaced to the caller. Everything after that (recipient-side
// record upkeep, presence lookups, socket delivery) is best effort, logged,
// and isolated per recipient so one stale handle cannot starve the rest.
type SendMessageUseCase struct {
	directory repository.Directory
	social    social.Social
	store     *store.Store
	presence  *presence.Registry
	notifier  appport.Notifier
	logger    *zap.SugaredLogger
}

func NewSendMessageUseCase(
	directory repository.Directory,
	soc social.Social,
	st *store.Store,
	reg *presence.Registry,
	notifier appport.Notifier,
	logger *zap.SugaredLogger,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		directory: directory,
		social:    soc,
		store:     st,
		presence:  reg,
		notifier:  notifier,
		logger:    logger,
	}
}

// Execute runs the send. On success the message is durably recorded; whether
// any recipient saw it in real time is not part of the contract.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*SendMessageResult, error) {
	key, err := chat.ConversationKey(in.Kind, in.SenderID, in.TargetID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if in.TargetID <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrValidation, chat.ErrBadTarget)
	}

	msg, err := chat.NewMessage(in.SenderID, in.Kind, key, in.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Resolve recipients before creating any state, so a send to a missing
	// user or group is rejected cleanly.
	recipients, err := uc.resolveRecipients(ctx, in)
	if err != nil {
		return nil, err
	}

	senderConv, err := uc.directory.ResolveOrCreate(ctx, in.SenderID, in.TargetID, in.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	stored, err := uc.store.Append(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	// The message is durable from here on; nothing below may fail the send.
	if err := uc.directory.Touch(ctx, senderConv.ID, stored.Body, stored.SentAt, false); err != nil {
		uc.logger.Warnf("send: touch sender conversation %d: %v", senderConv.ID, err)
	}

	for _, recipientID := range recipients {
		uc.fanOut(ctx, in, stored, recipientID)
	}

	return &SendMessageResult{
		ConversationID:  senderConv.ID,
		ConversationKey: key,
		SentAt:          stored.SentAt,
		Seq:             stored.Seq,
	}, nil
}

// resolveRecipients returns every participant other than the sender.
func (uc *SendMessageUseCase) resolveRecipients(ctx context.Context, in SendMessageInput) ([]int64, error) {
	switch in.Kind {
	case chat.KindDirect:
		if _, err := uc.social.UserDisplay(ctx, in.TargetID); err != nil {
			if errors.Is(err, social.ErrUserNotFound) {
				return nil, fmt.Errorf("%w: user %d", ErrNotFound, in.TargetID)
			}
			return nil, fmt.Errorf("%w: %v", ErrStore, err)
		}
		return []int64{in.TargetID}, nil
	case chat.KindGroup:
		members, err := uc.social.GroupMembers(ctx, in.TargetID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStore, err)
		}
		if len(members) == 0 {
			return nil, fmt.Errorf("%w: group %d", ErrNotFound, in.TargetID)
		}
		recipients := make([]int64, 0, len(members)-1)
		for _, id := range members {
			if id != in.SenderID {
				recipients = append(recipients, id)
			}
		}
		return recipients, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrValidation, chat.ErrInvalidKind)
	}
}

// fanOut maintains one recipient's conversation record and attempts realtime
// delivery. All errors end here.
func (uc *SendMessageUseCase) fanOut(ctx context.Context, in SendMessageInput, msg chat.Message, recipientID int64) {
	// The recipient addresses the conversation by its own counterpart: the
	// sender for direct chats, the group for group chats.
	counterpartID := in.SenderID
	if in.Kind == chat.KindGroup {
		counterpartID = in.TargetID
	}

	conv, err := uc.directory.ResolveOrCreate(ctx, recipientID, counterpartID, in.Kind)
	if err != nil {
		uc.logger.Warnf("send: resolve conversation for recipient %d: %v", recipientID, err)
		uc.deliverMessage(ctx, recipientID, msg)
		return
	}

	if err := uc.directory.Touch(ctx, conv.ID, msg.Body, msg.SentAt, true); err != nil {
		uc.logger.Warnf("send: touch conversation %d: %v", conv.ID, err)
	}

	delivered := uc.deliverMessage(ctx, recipientID, msg)

	if handle, ok := uc.presence.Lookup(ctx, recipientID, presence.ChannelDirectory); ok && handle != delivered {
		summary := uc.summaryFor(ctx, recipientID, conv, msg)
		payload, err := json.Marshal(summary)
		if err != nil {
			uc.logger.Warnf("send: encode summary for recipient %d: %v", recipientID, err)
			return
		}
		if err := uc.notifier.Deliver(handle, appport.EventConversation, payload); err != nil {
			uc.logger.Warnf("send: deliver summary to recipient %d: %v", recipientID, err)
		}
	}
}

// deliverMessage pushes the raw message to the recipient's open conversation
// view, if any. It returns the handle it delivered to, or "".
func (uc *SendMessageUseCase) deliverMessage(ctx context.Context, recipientID int64, msg chat.Message) string {
	handle, ok := uc.presence.Lookup(ctx, recipientID, presence.ChannelConversation)
	if !ok {
		return ""
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		uc.logger.Warnf("send: encode message for recipient %d: %v", recipientID, err)
		return ""
	}
	if err := uc.notifier.Deliver(handle, appport.EventMessage, payload); err != nil {
		uc.logger.Warnf("send: deliver message to recipient %d: %v", recipientID, err)
		return ""
	}
	return handle
}

// summaryFor builds the recipient's list-view projection of the conversation
// that just received msg.
func (uc *SendMessageUseCase) summaryFor(ctx context.Context, recipientID int64, conv chat.Conversation, msg chat.Message) chat.Summary {
	s := chat.Summary{
		ConversationID:  conv.ID,
		ConversationKey: msg.ConversationKey,
		TargetID:        conv.TargetID,
		Kind:            conv.Kind.String(),
		LastMessage:     msg.Body,
		Unread:          conv.Unread + 1,
		UpdatedAt:       msg.SentAt,
	}

	switch conv.Kind {
	case chat.KindGroup:
		if d, err := uc.social.GroupDisplay(ctx, conv.TargetID); err == nil {
			s.Name, s.Logo = d.Name, d.Logo
		}
	default:
		if d, err := uc.social.UserDisplay(ctx, msg.SenderID); err == nil {
			s.Name, s.Logo = d.Name, d.Logo
		}
		// The recipient's private remark for the sender wins over the nickname.
		if remark, err := uc.social.FriendRemark(ctx, recipientID, msg.SenderID); err == nil && remark != "" {
			s.Name = remark
		}
	}
	return s
}
