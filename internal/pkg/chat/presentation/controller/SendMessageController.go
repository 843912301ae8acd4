package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiaoxin-go/webchat/internal/pkg/chat/application/usecase"
	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
)

// SendMessageController handles the synchronous send endpoint (one
// controller per endpoint). The response is the durable acknowledgement.
type SendMessageController struct {
	uc *usecase.SendMessageUseCase
}

func NewSendMessageController(uc *usecase.SendMessageUseCase) *SendMessageController {
	return &SendMessageController{uc: uc}
}

// sendMessageRequest is the DTO for the HTTP request body.
type sendMessageRequest struct {
	SenderID int64  `json:"sender_id" binding:"required"`
	TargetID int64  `json:"target_id" binding:"required"`
	Kind     string `json:"kind" binding:"required"`
	Body     string `json:"body" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
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

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := h.uc.Execute(ctx, usecase.SendMessageInput{
			SenderID: req.SenderID,
			TargetID: req.TargetID,
			Kind:     kind,
			Body:     req.Body,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"conversation_id":  res.ConversationID,
			"conversation_key": res.ConversationKey,
			"sent_at":          res.SentAt,
			"seq":              res.Seq,
		})
	}
}
