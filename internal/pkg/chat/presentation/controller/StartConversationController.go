package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiaoxin-go/webchat/internal/pkg/chat/application/usecase"
	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
)

// StartConversationController creates (or returns) a conversation record
// ahead of the first message.
type StartConversationController struct {
	uc *usecase.StartConversationUseCase
}

func NewStartConversationController(uc *usecase.StartConversationUseCase) *StartConversationController {
	return &StartConversationController{uc: uc}
}

type startConversationRequest struct {
	OwnerID  int64  `json:"owner_id" binding:"required"`
	TargetID int64  `json:"target_id" binding:"required"`
	Kind     string `json:"kind" binding:"required"`
}

func (h *StartConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req startConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		kind, err := chat.ParseKind(req.Kind)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.uc.Execute(ctx, usecase.StartConversationInput{
			OwnerID:  req.OwnerID,
			TargetID: req.TargetID,
			Kind:     kind,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"conversation_id":  conv.ID,
			"conversation_key": conv.Key(),
			"target_id":        conv.TargetID,
			"kind":             conv.Kind.String(),
		})
	}
}
