package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	journalService "github.com/nivenlake/journalmate/backend/internal/service/journal"
)

// Handler WebSocket聊天处理器
type Handler struct {
	journalSvc *journalService.Service
	upgrader   websocket.Upgrader
}

// New 创建WebSocket处理器
func New(journalSvc *journalService.Service) *Handler {
	return &Handler{
		journalSvc: journalSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// ChatMessage 文本消息
type ChatMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read failed: %v", err)
			}
			return
		}

		switch inbound.Type {
		case "chat":
			h.handleChatMessage(r, conn, inbound)
		default:
			h.send(conn, "error", map[string]string{"message": "unknown message type: " + inbound.Type})
		}
	}
}

func (h *Handler) handleChatMessage(r *http.Request, conn *websocket.Conn, inbound inboundMessage) {
	var payload ChatMessage
	if len(inbound.Data) > 0 {
		if err := json.Unmarshal(inbound.Data, &payload); err != nil {
			h.send(conn, "error", map[string]string{"message": "invalid chat payload"})
			return
		}
	}

	reply, err := h.journalSvc.Exchange(r.Context(), payload.Text, func(fragment string) {
		h.send(conn, "delta", map[string]string{"content": fragment})
	})
	if err != nil {
		log.Printf("[ws] chat exchange failed: %v", err)
		h.send(conn, "error", map[string]string{"message": "chat exchange failed"})
		return
	}

	h.send(conn, "message", map[string]string{"content": reply})

	label, scores, err := h.journalSvc.Mood(r.Context())
	if err != nil {
		log.Printf("[ws] mood estimation failed: %v", err)
		return
	}
	h.send(conn, "mood", map[string]any{
		"mood_of_the_day": label,
		"mood_scores":     scores,
	})
}

func (h *Handler) send(conn *websocket.Conn, msgType string, data interface{}) {
	msg := outgoingMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}
