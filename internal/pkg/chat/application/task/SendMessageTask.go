package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	qport "github.com/xiaoxin-go/webchat/internal/infrastructure/queue/port"
	"github.com/xiaoxin-go/webchat/internal/pkg/chat/application/usecase"
	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
)

// SendMessageTaskType is the queue task name for routing one chat message.
const SendMessageTaskType = "chat:send_message"

// SendMessageTaskPayload is the JSON payload transported via the queue.
// Kept decoupled from domain types so the wire shape can evolve separately.
type SendMessageTaskPayload struct {
	SenderID int64  `json:"senderId"`
	TargetID int64  `json:"targetId"`
	Kind     int16  `json:"kind"`
	Body     string `json:"body"`
}

// RegisterSendMessageTask binds the send handler to the worker server.
// Validation failures are terminal; store failures are returned so the
// adapter's retry policy applies.
func RegisterSendMessageTask(srv qport.Server, uc *usecase.SendMessageUseCase) {
	srv.Register(SendMessageTaskType, func(ctx context.Context, t qport.Task) error {
		var p SendMessageTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return fmt.Errorf("send task: decode payload: %w", err)
		}

		in := usecase.SendMessageInput{
			SenderID: p.SenderID,
			TargetID: p.TargetID,
			Kind:     chat.Kind(p.Kind),
			Body:     p.Body,
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if _, err := uc.Execute(ctx, in); err != nil {
			// A bad message stays bad; retrying cannot fix it.
			if errors.Is(err, usecase.ErrValidation) || errors.Is(err, usecase.ErrNotFound) {
				return nil
			}
			return err
		}
		return nil
	})
}
