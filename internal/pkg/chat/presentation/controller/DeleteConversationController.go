package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiaoxin-go/webchat/internal/pkg/chat/application/usecase"
)

// DeleteConversationController removes a conversation from the caller's
// list. The counterpart's record is untouched.
type DeleteConversationController struct {
	uc *usecase.DeleteConversationUseCase
}

func NewDeleteConversationController(uc *usecase.DeleteConversationUseCase) *DeleteConversationController {
	return &DeleteConversationController{uc: uc}
}

func (h *DeleteConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		convID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || convID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversation id is required"})
			return
		}
		userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
		if err != nil || userID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.uc.Execute(ctx, usecase.DeleteConversationInput{
			ConversationID: convID,
			OwnerID:        userID,
		}); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}
