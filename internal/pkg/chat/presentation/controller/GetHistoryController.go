package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiaoxin-go/webchat/internal/pkg/chat/application/usecase"
)

// GetHistoryController serves one page of a conversation's message log.
type GetHistoryController struct {
	uc *usecase.GetHistoryUseCase
}

func NewGetHistoryController(uc *usecase.GetHistoryUseCase) *GetHistoryController {
	return &GetHistoryController{uc: uc}
}

func (h *GetHistoryController) Handle() gin.HandlerFunc {
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

		limit := 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		page, err := h.uc.Execute(ctx, usecase.GetHistoryInput{
			ConversationID: convID,
			UserID:         userID,
			Cursor:         c.Query("cursor"),
			Limit:          limit,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"messages":    page.Messages,
			"next_cursor": page.NextCursor,
			"count":       len(page.Messages),
		})
	}
}
