package journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/nivenlake/journalmate/backend/internal/analysis/mood"
	"github.com/nivenlake/journalmate/backend/internal/model/chat"
	"github.com/nivenlake/journalmate/backend/internal/service/sentiment"
)

// Generator produces companion replies, optionally as a fragment stream.
type Generator interface {
	StreamingEnabled() bool
	Generate(ctx context.Context, history chat.Transcript, userMessage string) (*schema.Message, error)
	Stream(ctx context.Context, history chat.Transcript, userMessage string) (*schema.StreamReader[*schema.Message], error)
}

// Classifier scores a single text against the fixed sentiment label set.
type Classifier interface {
	Classify(ctx context.Context, text string) (sentiment.Classification, error)
}

// Store persists the whole transcript.
type Store interface {
	Load() (chat.Transcript, error)
	Save(transcript chat.Transcript) error
	Clear() error
}

// Service orchestrates one user message into a recorded exchange. A mutex
// serializes the load-modify-save cycle so concurrent requests cannot lose
// each other's turns.
type Service struct {
	mu         sync.Mutex
	store      Store
	generator  Generator
	classifier Classifier
}

// NewService wires the journal service from its collaborators.
func NewService(store Store, generator Generator, classifier Classifier) *Service {
	return &Service{
		store:      store,
		generator:  generator,
		classifier: classifier,
	}
}

// Exchange runs the full chat cycle: load transcript, generate the reply,
// classify the user message, append the USER/CHATBOT pair, save. onFragment,
// when non-nil, receives each streamed reply fragment as it arrives. Nothing
// is written unless both external calls succeed.
func (s *Service) Exchange(ctx context.Context, userMessage string, onFragment func(string)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transcript, err := s.store.Load()
	if err != nil {
		return "", fmt.Errorf("load transcript: %w", err)
	}

	reply, err := s.generateReply(ctx, transcript, userMessage, onFragment)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}

	classification, err := s.classifier.Classify(ctx, userMessage)
	if err != nil {
		return "", fmt.Errorf("classify message: %w", err)
	}

	now := time.Now().UTC()
	confidence := classification.Confidence
	transcript = append(transcript,
		chat.Turn{
			ID:              uuid.NewString(),
			Role:            chat.RoleUser,
			Message:         userMessage,
			Prediction:      classification.Prediction,
			Confidence:      &confidence,
			EmotionConfStat: classification.ConfStat,
			CreatedAt:       now,
		},
		chat.Turn{
			ID:        uuid.NewString(),
			Role:      chat.RoleChatbot,
			Message:   reply,
			CreatedAt: now,
		},
	)

	if err := s.store.Save(transcript); err != nil {
		return "", fmt.Errorf("save transcript: %w", err)
	}

	log.Printf("[journal] recorded exchange, turns=%d prediction=%s", len(transcript), classification.Prediction)
	return reply, nil
}

// Mood estimates the mood of the day from the stored transcript.
func (s *Service) Mood(ctx context.Context) (mood.Label, map[mood.Label]float64, error) {
	transcript, err := s.store.Load()
	if err != nil {
		return "", nil, fmt.Errorf("load transcript: %w", err)
	}

	label, scores := mood.Estimate(transcript)
	return label, scores, nil
}

// Clear resets the stored transcript to an empty history.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clear()
}

// generateReply consumes the generator's fragment stream to completion and
// concatenates it into the final reply text.
func (s *Service) generateReply(ctx context.Context, history chat.Transcript, userMessage string, onFragment func(string)) (string, error) {
	if !s.generator.StreamingEnabled() {
		response, err := s.generator.Generate(ctx, history, userMessage)
		if err != nil {
			return "", err
		}
		if onFragment != nil && response.Content != "" {
			onFragment(response.Content)
		}
		return response.Content, nil
	}

	stream, err := s.generator.Stream(ctx, history, userMessage)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if onFragment != nil && chunk.Content != "" {
			onFragment(chunk.Content)
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}
