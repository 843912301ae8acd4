package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	queueport "github.com/xiaoxin-go/webchat/internal/infrastructure/queue/port"
	"github.com/xiaoxin-go/webchat/internal/infrastructure/realtime"
	"github.com/xiaoxin-go/webchat/internal/pkg/chat/application/usecase"
	"github.com/xiaoxin-go/webchat/internal/pkg/chat/presentation/controller"
)

// Deps carries everything the chat endpoints need. Constructed once in main
// and threaded through route registration.
type Deps struct {
	Hub    *realtime.Hub
	Queue  queueport.Client
	Logger *zap.SugaredLogger

	Send  *usecase.SendMessageUseCase
	Start *usecase.StartConversationUseCase
	List  *usecase.ListConversationsUseCase
	Hist  *usecase.GetHistoryUseCase
	Del   *usecase.DeleteConversationUseCase
	Enter *usecase.EnterViewUseCase
	Exit  *usecase.ExitViewUseCase
}

// RegisterRoutes binds the chat endpoints under the given router group, one
// controller per endpoint.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	sendCtl := controller.NewSendMessageController(d.Send)
	enqueueCtl := controller.NewEnqueueMessageController(d.Queue)
	startCtl := controller.NewStartConversationController(d.Start)
	listCtl := controller.NewListConversationsController(d.List)
	histCtl := controller.NewGetHistoryController(d.Hist)
	delCtl := controller.NewDeleteConversationController(d.Del)
	socketCtl := controller.NewChatSocketController(d.Hub, d.Send, d.Enter, d.Exit, d.Logger)

	// POST /api/v1/messages -> synchronous send, durable ack
	g.POST("/messages", sendCtl.Handle())

	// POST /api/v1/chat/messages -> enqueue a send task
	g.POST("/chat/messages", enqueueCtl.Handle())

	// POST /api/v1/conversations -> start (or resolve) a conversation
	g.POST("/conversations", startCtl.Handle())

	// GET /api/v1/conversations?user_id= -> the viewer's conversation list
	g.GET("/conversations", listCtl.Handle())

	// GET /api/v1/conversations/:id/messages -> one history page
	g.GET("/conversations/:id/messages", histCtl.Handle())

	// DELETE /api/v1/conversations/:id?user_id= -> remove owner-side record
	g.DELETE("/conversations/:id", delCtl.Handle())

	// GET /api/v1/chat/ws?user_id=&channel= -> websocket attach
	g.GET("/chat/ws", socketCtl.Handle())
}
