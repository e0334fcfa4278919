package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/nivenlake/journalmate/backend/internal/model/chat"
	journalservice "github.com/nivenlake/journalmate/backend/internal/service/journal"
	"github.com/nivenlake/journalmate/backend/internal/service/sentiment"
	"github.com/nivenlake/journalmate/backend/internal/store"
)

type fakeGenerator struct {
	fragments []string
	err       error
}

func (g *fakeGenerator) StreamingEnabled() bool { return true }

func (g *fakeGenerator) Generate(_ context.Context, _ chat.Transcript, _ string) (*schema.Message, error) {
	if g.err != nil {
		return nil, g.err
	}
	return schema.AssistantMessage(strings.Join(g.fragments, ""), nil), nil
}

func (g *fakeGenerator) Stream(_ context.Context, _ chat.Transcript, _ string) (*schema.StreamReader[*schema.Message], error) {
	if g.err != nil {
		return nil, g.err
	}
	messages := make([]*schema.Message, 0, len(g.fragments))
	for _, fragment := range g.fragments {
		messages = append(messages, schema.AssistantMessage(fragment, nil))
	}
	return schema.StreamReaderFromArray(messages), nil
}

type fakeClassifier struct {
	result sentiment.Classification
}

func (c *fakeClassifier) Classify(_ context.Context, _ string) (sentiment.Classification, error) {
	return c.result, nil
}

func newHandler(t *testing.T, generator *fakeGenerator) *Handler {
	t.Helper()
	transcriptStore := store.NewTranscriptStore(filepath.Join(t.TempDir(), "chat_history.json"))
	classifier := &fakeClassifier{result: sentiment.Classification{
		Prediction: "Happy",
		Confidence: 0.8,
		ConfStat:   map[string][]float64{"Happy": {0.8}},
	}}
	return New(journalservice.NewService(transcriptStore, generator, classifier))
}

func decodeEvents(t *testing.T, body string) []StreamResponse {
	t.Helper()
	events := make([]StreamResponse, 0, 8)
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		payload := strings.TrimPrefix(block, "data: ")
		var event StreamResponse
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			t.Fatalf("decode event %q: %v", payload, err)
		}
		events = append(events, event)
	}
	return events
}

func TestHandleStreamRequestEventSequence(t *testing.T) {
	handler := newHandler(t, &fakeGenerator{fragments: []string{"How ", "can I help?"}})

	resp := httptest.NewRecorder()
	if err := handler.HandleStreamRequest(context.Background(), resp, "I feel great today"); err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected SSE content type, got %q", ct)
	}

	events := decodeEvents(t, resp.Body.String())
	got := make([]string, 0, len(events))
	for _, event := range events {
		got = append(got, event.Event)
	}
	want := []string{"start", "delta", "delta", "message", "mood", "end"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected event sequence: %v", got)
	}

	var deltas strings.Builder
	var message string
	for _, event := range events {
		switch event.Event {
		case "delta":
			deltas.WriteString(event.Content)
		case "message":
			message = event.Content
		}
	}
	if message != "How can I help?" {
		t.Fatalf("unexpected message content: %q", message)
	}
	if deltas.String() != message {
		t.Fatalf("delta fragments %q do not concatenate to message %q", deltas.String(), message)
	}

	var moodPayload struct {
		MoodOfTheDay string             `json:"mood_of_the_day"`
		MoodScores   map[string]float64 `json:"mood_scores"`
	}
	if err := json.Unmarshal([]byte(events[4].Content), &moodPayload); err != nil {
		t.Fatalf("decode mood event: %v", err)
	}
	if moodPayload.MoodOfTheDay != "happy" {
		t.Fatalf("expected happy mood event, got %q", moodPayload.MoodOfTheDay)
	}

	if !events[len(events)-1].Finished {
		t.Fatal("end event must carry the finished flag")
	}
}

func TestHandleStreamRequestGeneratorFailure(t *testing.T) {
	handler := newHandler(t, &fakeGenerator{err: errors.New("provider down")})

	resp := httptest.NewRecorder()
	if err := handler.HandleStreamRequest(context.Background(), resp, "hello"); err == nil {
		t.Fatal("expected generator failure to surface")
	}

	events := decodeEvents(t, resp.Body.String())
	last := events[len(events)-1]
	if last.Event != "error" || last.Error == "" {
		t.Fatalf("expected trailing error event, got %+v", last)
	}
}
