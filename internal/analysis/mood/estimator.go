package mood

import (
	"log"
	"strings"

	"github.com/nivenlake/journalmate/backend/internal/model/chat"
)

// Label 表示情绪看板可以展示的心情标签。
type Label string

const (
	Happy      Label = "happy"
	Angry      Label = "angry"
	Sad        Label = "sad"
	Calm       Label = "calm"
	Fearful    Label = "fearful"
	Insightful Label = "insightful"

	// Thinking is the neutral fallback when no mood carries enough mass.
	Thinking Label = "thinking"
)

// labelOrder fixes both the score-map shape and the tie-break order when two
// moods share the maximum normalized score.
var labelOrder = []Label{Happy, Angry, Sad, Calm, Fearful, Insightful}

const (
	recentWindow       = 3
	latestWeight       = 1.0
	earlierWeight      = 0.5
	confidenceGate     = 0.4
	keywordBonus       = 0.2
	dominanceThreshold = 0.25
)

var keywordBuckets = []struct {
	label Label
	words []string
}{
	{Angry, []string{"angry", "frustrated", "mad", "annoyed", "irritated"}},
	{Happy, []string{"happy", "joy", "excited", "great", "wonderful"}},
	{Sad, []string{"sad", "depressed", "down", "unhappy", "miserable"}},
	{Fearful, []string{"scared", "afraid", "worried", "anxious", "nervous"}},
	{Calm, []string{"calm", "peaceful", "relaxed", "steady", "balanced"}},
	{Insightful, []string{"understand", "realize", "learn", "think", "know"}},
}

// Estimate derives the dominant mood from the last few USER turns of the
// transcript, combining weighted sentiment scores with a keyword pass over
// the raw message text. With no USER turns at all it returns Thinking and an
// empty score map.
func Estimate(transcript chat.Transcript) (Label, map[Label]float64) {
	recent := recentUserTurns(transcript, recentWindow)
	if len(recent) == 0 {
		return Thinking, map[Label]float64{}
	}

	scores := make(map[Label]float64, len(labelOrder))
	for _, label := range labelOrder {
		scores[label] = 0
	}

	for idx, turn := range recent {
		weight := earlierWeight
		if idx == len(recent)-1 {
			weight = latestWeight
		}

		if len(turn.EmotionConfStat) == 0 || turn.Confidence == nil || *turn.Confidence <= confidenceGate {
			continue
		}

		stats := turn.EmotionConfStat
		scores[Angry] += weight * (stat(stats, "Angry") + stat(stats, "Worry")*0.5)
		scores[Happy] += weight * stat(stats, "Happy")
		scores[Sad] += weight * stat(stats, "Sad")
		scores[Calm] += weight * stat(stats, "Calm")
		scores[Fearful] += weight * (stat(stats, "Fear") + stat(stats, "Worry")*0.5)
		scores[Insightful] += weight * stat(stats, "Insightful")
	}

	applyKeywordBonus(scores, recent)
	normalize(scores)

	dominant, best := pickDominant(scores)
	final := dominant
	if best < dominanceThreshold {
		final = Thinking
	}

	log.Printf("[mood] scores=%v dominant=%s score=%.3f final=%s", scores, dominant, best, final)
	return final, scores
}

func recentUserTurns(transcript chat.Transcript, window int) []chat.Turn {
	user := transcript.UserTurns()
	if len(user) > window {
		user = user[len(user)-window:]
	}
	return user
}

func stat(stats map[string][]float64, label string) float64 {
	values, ok := stats[label]
	if !ok || len(values) == 0 {
		return 0
	}
	return values[0]
}

// applyKeywordBonus scans the combined lower-cased message text token by
// token; the first bucket containing a token wins it.
func applyKeywordBonus(scores map[Label]float64, turns []chat.Turn) {
	parts := make([]string, 0, len(turns))
	for _, turn := range turns {
		parts = append(parts, turn.Message)
	}
	combined := strings.ToLower(strings.Join(parts, " "))

	for _, token := range strings.Fields(combined) {
		for _, bucket := range keywordBuckets {
			if containsWord(bucket.words, token) {
				scores[bucket.label] += keywordBonus
				break
			}
		}
	}
}

func containsWord(words []string, token string) bool {
	for _, word := range words {
		if word == token {
			return true
		}
	}
	return false
}

func normalize(scores map[Label]float64) {
	total := 0.0
	for _, v := range scores {
		total += v
	}
	if total <= 0 {
		return
	}
	for label, v := range scores {
		scores[label] = v / total
	}
}

func pickDominant(scores map[Label]float64) (Label, float64) {
	best := labelOrder[0]
	bestScore := scores[best]
	for _, label := range labelOrder[1:] {
		if scores[label] > bestScore {
			best = label
			bestScore = scores[label]
		}
	}
	return best, bestScore
}
