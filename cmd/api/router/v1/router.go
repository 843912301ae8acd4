package v1

import (
	"github.com/gin-gonic/gin"

	chathttp "github.com/xiaoxin-go/webchat/internal/pkg/chat/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1.
func RegisterRoutes(r *gin.Engine, deps chathttp.Deps) {
	v1 := r.Group("/api/v1")
	chathttp.RegisterRoutes(v1, deps)
}
