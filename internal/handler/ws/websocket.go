package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	chatService "github.com/mindfulai/mindful-shell/internal/service/chat"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocketHandler WebSocket会话处理器：推送会话事件，接收用户操作
type WebSocketHandler struct {
	chatSvc  *chatService.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(chatSvc *chatService.Service, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc: chatSvc,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// connection serialises writes; gorilla allows one concurrent writer.
type connection struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	sessionID string
	logger    *zap.Logger
}

func (c *connection) send(msg outgoingMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.Debug("websocket write failed", zap.Error(err))
	}
}

func (c *connection) sendError(message string) {
	c.send(outgoingMessage{
		Type:      "error",
		SessionID: c.sessionID,
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	})
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snapshot, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	events, unsubscribe, err := h.chatSvc.Subscribe(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := h.logger.With(zap.String("session", sessionID))
	logger.Info("websocket connected")

	c := &connection{conn: conn, sessionID: sessionID, logger: logger}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// 用户操作在独立 goroutine 中执行，断开时等待其结束。
	var inflight sync.WaitGroup
	defer inflight.Wait()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, conn)
	go h.forwardEvents(ctx, cancel, c, events)

	c.send(outgoingMessage{
		Type:      "connected",
		SessionID: sessionID,
		Data:      snapshot,
		Timestamp: time.Now().Unix(),
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			c.sendError("session mismatch")
			continue
		}

		h.handleMessage(ctx, c, &msg, &inflight)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, c *connection, msg *inboundMessage, inflight *sync.WaitGroup) {
	switch msg.Type {
	case "text":
		var text TextMessage
		if len(msg.Data) == 0 || json.Unmarshal(msg.Data, &text) != nil {
			c.sendError("invalid text payload")
			return
		}
		// 不对并发发送做去重或排序，结果通过事件推送。
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			if _, err := h.chatSvc.SendMessage(ctx, c.sessionID, text.Text); err != nil {
				c.sendError(err.Error())
			}
		}()
	case "resources":
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			if _, err := h.chatSvc.OpenResources(ctx, c.sessionID); err != nil {
				c.sendError(err.Error())
			}
		}()
	case "follow-up":
		if _, err := h.chatSvc.ScheduleFollowUp(ctx, c.sessionID); err != nil {
			c.sendError(err.Error())
		}
	default:
		c.sendError("unsupported message type: " + msg.Type)
	}
}

// forwardEvents relays hub events until the session ends or ctx is done.
func (h *WebSocketHandler) forwardEvents(ctx context.Context, cancel context.CancelFunc, c *connection, events <-chan chatService.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				c.send(outgoingMessage{Type: "closed", SessionID: c.sessionID, Timestamp: time.Now().Unix()})
				c.mu.Lock()
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(writeTimeout))
				c.mu.Unlock()
				cancel()
				return
			}
			c.send(outgoingMessage{
				Type:      string(ev.Type),
				SessionID: ev.SessionID,
				Data:      ev.Data,
				Timestamp: ev.Timestamp.Unix(),
			})
		}
	}
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
