package chat

import "time"

// Role identifies which side of the conversation produced a turn.
type Role string

const (
	RoleUser    Role = "USER"
	RoleChatbot Role = "CHATBOT"
)

// Turn persists a single message exchange unit. USER turns carry the
// sentiment annotation produced at classification time; CHATBOT turns only
// carry the reply text.
type Turn struct {
	ID         string `json:"id,omitempty"`
	Role       Role   `json:"role"`
	Message    string `json:"message"`
	Prediction string `json:"prediction,omitempty"`
	// Confidence is set on every USER turn, zero included, so the stored
	// format always carries the field there; CHATBOT turns leave it nil.
	Confidence *float64 `json:"confidence,omitempty"`
	// EmotionConfStat maps a sentiment label to a one-element slice holding
	// that label's confidence score, mirroring the stored file format.
	EmotionConfStat map[string][]float64 `json:"emotion_conf_stat,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// Transcript is the full ordered turn history for the conversation.
// Insertion order is chronological.
type Transcript []Turn

// UserTurns returns the USER-role turns in chronological order.
func (t Transcript) UserTurns() []Turn {
	out := make([]Turn, 0, len(t))
	for _, turn := range t {
		if turn.Role == RoleUser {
			out = append(out, turn)
		}
	}
	return out
}
