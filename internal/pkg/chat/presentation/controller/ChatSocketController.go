package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"github.com/xiaoxin-go/webchat/internal/infrastructure/realtime"
	"github.com/xiaoxin-go/webchat/internal/pkg/chat/application/usecase"
	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
	"github.com/xiaoxin-go/webchat/internal/pkg/chat/presence"
)

// ChatSocketController handles the websocket endpoint for realtime chat
// traffic. Connecting binds the socket's handle into the presence registry
// for the requested channel; disconnecting releases it.
type ChatSocketController struct {
	hub             *realtime.Hub
	sendUC          *usecase.SendMessageUseCase
	enterUC         *usecase.EnterViewUseCase
	exitUC          *usecase.ExitViewUseCase
	logger          *zap.SugaredLogger
	inflightTimeout time.Duration
}

func NewChatSocketController(
	hub *realtime.Hub,
	sendUC *usecase.SendMessageUseCase,
	enterUC *usecase.EnterViewUseCase,
	exitUC *usecase.ExitViewUseCase,
	logger *zap.SugaredLogger,
) *ChatSocketController {
	return &ChatSocketController{
		hub:             hub,
		sendUC:          sendUC,
		enterUC:         enterUC,
		exitUC:          exitUC,
		logger:          logger,
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

type inboundFrame struct {
	Type     string
	TargetID int64
	Kind     string
	Body     string
}

var framePool fastjson.ParserPool

// parseInboundFrame decodes a client frame: {"type", "target_id", "kind",
// "body"}. Absent fields come back zero-valued; the handlers validate them.
func parseInboundFrame(data []byte) (inboundFrame, error) {
	p := framePool.Get()
	defer framePool.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return inboundFrame{}, err
	}
	return inboundFrame{
		Type:     string(v.GetStringBytes("type")),
		TargetID: v.GetInt64("target_id"),
		Kind:     string(v.GetStringBytes("kind")),
		Body:     string(v.GetStringBytes("body")),
	}, nil
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type            string    `json:"type"`
	ConversationID  int64     `json:"conversation_id,omitempty"`
	ConversationKey string    `json:"conversation_key,omitempty"`
	SentAt          time.Time `json:"sent_at,omitempty"`
	Seq             int64     `json:"seq,omitempty"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades the connection and processes frames until the client
// disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
		if err != nil || userID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		channel, err := presence.ParseChannel(c.Query("channel"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			ctl.logger.Warnf("socket: upgrade for user %d: %v", userID, err)
			return
		}

		conn := realtime.NewConnection(userID, string(channel), ws)
		ctl.hub.Attach(conn)

		bindCtx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
		err = ctl.enterUC.Execute(bindCtx, usecase.EnterViewInput{
			UserID:  userID,
			Channel: channel,
			Handle:  conn.ID,
		})
		cancel()
		if err != nil {
			ctl.hub.Detach(conn)
			conn.Close(websocket.CloseInternalServerErr, "presence unavailable")
			return
		}

		defer func() {
			// Handle-guarded so a newer login's binding survives this teardown.
			ctx, cancel := context.WithTimeout(context.Background(), ctl.inflightTimeout)
			if err := ctl.exitUC.Execute(ctx, usecase.ExitViewInput{
				UserID:  userID,
				Channel: channel,
				Handle:  conn.ID,
			}); err != nil {
				ctl.logger.Warnf("socket: unbind user %d: %v", userID, err)
			}
			cancel()
			ctl.hub.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			frame, err := parseInboundFrame(data)
			if err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "message":
				ctl.handleMessage(c, conn, userID, frame)
			case "enter":
				ctl.handleEnter(c, conn, userID, channel)
			case "leave":
				ctl.handleLeave(c, conn, userID, channel)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

// handleMessage runs the full send pipeline and acks with the durable
// position, so the client knows the message survived before rendering it.
func (ctl *ChatSocketController) handleMessage(c *gin.Context, conn *realtime.Connection, userID int64, frame inboundFrame) {
	kind, err := chat.ParseKind(frame.Kind)
	if err != nil {
		ctl.replyError(conn, "bad_request", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	res, err := ctl.sendUC.Execute(ctx, usecase.SendMessageInput{
		SenderID: userID,
		TargetID: frame.TargetID,
		Kind:     kind,
		Body:     frame.Body,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}

	ack := ackFrame{
		Type:            "ack",
		ConversationID:  res.ConversationID,
		ConversationKey: res.ConversationKey,
		SentAt:          res.SentAt,
		Seq:             res.Seq,
	}
	if payload, err := json.Marshal(ack); err == nil {
		_ = conn.Send(payload)
	}
}

// handleEnter refreshes the presence binding for this socket's view.
func (ctl *ChatSocketController) handleEnter(c *gin.Context, conn *realtime.Connection, userID int64, channel presence.Channel) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	err := ctl.enterUC.Execute(ctx, usecase.EnterViewInput{
		UserID:  userID,
		Channel: channel,
		Handle:  conn.ID,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}
	if payload, err := json.Marshal(ackFrame{Type: "entered"}); err == nil {
		_ = conn.Send(payload)
	}
}

// handleLeave releases the binding while keeping the socket open, so the
// client stops receiving pushes without reconnecting.
func (ctl *ChatSocketController) handleLeave(c *gin.Context, conn *realtime.Connection, userID int64, channel presence.Channel) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	err := ctl.exitUC.Execute(ctx, usecase.ExitViewInput{
		UserID:  userID,
		Channel: channel,
		Handle:  conn.ID,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}
	if payload, err := json.Marshal(ackFrame{Type: "left"}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) replyUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrStore):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, usecase.ErrNotFound):
		ctl.replyError(conn, "not_found", err.Error())
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := errorFrame{Type: "error", Code: code, Error: message}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}
