package journal

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	journalService "github.com/nivenlake/journalmate/backend/internal/service/journal"
)

// Handler 日志陪伴服务的HTTP处理器
type Handler struct {
	journalSvc *journalService.Service
}

// New 创建聊天处理器
func New(journalSvc *journalService.Service) *Handler {
	return &Handler{journalSvc: journalSvc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleHome)
	r.Post("/chat", h.handleChat)
	r.Post("/clear", h.handleClear)
	r.Get("/mood", h.handleMood)
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the chatbot server"})
}

// handleChat 处理一次完整的对话交换
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserMessage string `json:"user_message"`
	}

	// An absent or empty body defaults to an empty message; the original
	// contract performs no request validation.
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			payload.UserMessage = ""
		}
	}

	reply, err := h.journalSvc.Exchange(r.Context(), payload.UserMessage, nil)
	if err != nil {
		log.Printf("[journal] chat exchange failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to process chat message")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"chatbot_response": reply})
}

// handleClear 清空聊天记录
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.journalSvc.Clear(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "Error clearing chat history: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Chat history cleared successfully"})
}

// handleMood 计算最近对话的主导情绪
func (h *Handler) handleMood(w http.ResponseWriter, r *http.Request) {
	label, scores, err := h.journalSvc.Mood(r.Context())
	if err != nil {
		log.Printf("[journal] mood estimation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to estimate mood")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"mood_of_the_day": label,
		"mood_scores":     scores,
	})
}

// respondJSON 发送JSON响应
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError 发送错误响应
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
