package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	queueport "github.com/xiaoxin-go/webchat/internal/infrastructure/queue/port"
	"github.com/xiaoxin-go/webchat/internal/pkg/chat/application/task"
	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
)

// EnqueueMessageController accepts a message for background routing. The
// caller gets a task id, not a delivery acknowledgement.
type EnqueueMessageController struct {
	q queueport.Client
}

func NewEnqueueMessageController(client queueport.Client) *EnqueueMessageController {
	return &EnqueueMessageController{q: client}
}

func (h *EnqueueMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		kind, err := chat.ParseKind(req.Kind)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		payload := task.SendMessageTaskPayload{
			SenderID: req.SenderID,
			TargetID: req.TargetID,
			Kind:     int16(kind),
			Body:     req.Body,
		}
		b, err := json.Marshal(payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode task payload"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		opts := queueport.EnqueueOption{Queue: "chat", MaxRetry: 20}
		id, err := h.q.Enqueue(ctx, queueport.Task{Type: task.SendMessageTaskType, Payload: b}, opts)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to enqueue message"})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"status":    "queued",
			"task_id":   id,
			"sender_id": req.SenderID,
		})
	}
}
