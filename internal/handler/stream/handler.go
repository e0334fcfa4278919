package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	journalService "github.com/nivenlake/journalmate/backend/internal/service/journal"
	"github.com/nivenlake/journalmate/backend/pkg/utils"
)

// Handler streams the companion's reply via Server-Sent Events.
type Handler struct {
	journalSvc *journalService.Service
}

// New creates a new stream handler
func New(journalSvc *journalService.Service) *Handler {
	return &Handler{journalSvc: journalSvc}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event    string `json:"event"`
	Content  string `json:"content,omitempty"`
	Finished bool   `json:"finished,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HandleStreamRequest runs one chat exchange, emitting reply fragments as
// they arrive and a mood estimate once the exchange is recorded.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	utils.SendSSEChunk(w, flusher, StreamResponse{Event: "start"})

	reply, err := h.journalSvc.Exchange(ctx, userMessage, func(fragment string) {
		utils.SendSSEChunk(w, flusher, StreamResponse{Event: "delta", Content: fragment})
	})
	if err != nil {
		utils.SendSSEChunk(w, flusher, StreamResponse{Event: "error", Error: fmt.Sprintf("chat exchange failed: %v", err)})
		return err
	}

	utils.SendSSEChunk(w, flusher, StreamResponse{Event: "message", Content: reply})

	label, scores, err := h.journalSvc.Mood(ctx)
	if err != nil {
		log.Printf("[stream] mood estimation failed: %v", err)
	} else {
		moodPayload, marshalErr := json.Marshal(map[string]any{
			"mood_of_the_day": label,
			"mood_scores":     scores,
		})
		if marshalErr == nil {
			utils.SendSSEChunk(w, flusher, StreamResponse{Event: "mood", Content: string(moodPayload)})
		}
	}

	// Send completion signal
	utils.SendSSEChunk(w, flusher, StreamResponse{Event: "end", Finished: true})

	log.Printf("[stream] completed exchange, reply length=%d", len(reply))
	return nil
}
