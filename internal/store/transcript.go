package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/nivenlake/journalmate/backend/internal/model/chat"
)

// TranscriptStore persists the conversation history as a single JSON file,
// rewritten wholesale on every save. An RWMutex keeps individual file
// operations consistent; callers that need a full read-modify-write cycle
// serialize it themselves.
type TranscriptStore struct {
	mu   sync.RWMutex
	path string
}

// NewTranscriptStore returns a store backed by the given file path. The file
// is created lazily on first save.
func NewTranscriptStore(path string) *TranscriptStore {
	return &TranscriptStore{path: path}
}

// Load returns the stored transcript, or an empty one when no backing file
// exists yet. Malformed content is an error, not an empty history.
func (s *TranscriptStore) Load() (chat.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return chat.Transcript{}, nil
		}
		return nil, fmt.Errorf("read transcript %s: %w", s.path, err)
	}

	var transcript chat.Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", s.path, err)
	}
	return transcript, nil
}

// Save rewrites the backing file with the full transcript.
func (s *TranscriptStore) Save(transcript chat.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(transcript, "", "    ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write transcript %s: %w", s.path, err)
	}
	return nil
}

// Clear resets the backing file to an empty transcript.
func (s *TranscriptStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, []byte("[]"), 0o644); err != nil {
		return fmt.Errorf("clear transcript %s: %w", s.path, err)
	}
	return nil
}
