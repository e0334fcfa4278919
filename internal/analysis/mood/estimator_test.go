package mood

import (
	"math"
	"testing"

	"github.com/nivenlake/journalmate/backend/internal/model/chat"
)

func userTurn(message string, confidence float64, stats map[string][]float64) chat.Turn {
	return chat.Turn{
		Role:            chat.RoleUser,
		Message:         message,
		Confidence:      &confidence,
		EmotionConfStat: stats,
	}
}

func TestEstimateEmptyTranscript(t *testing.T) {
	label, scores := Estimate(chat.Transcript{})
	if label != Thinking {
		t.Fatalf("expected thinking, got %s", label)
	}
	if len(scores) != 0 {
		t.Fatalf("expected empty score map, got %v", scores)
	}
}

func TestEstimateChatbotTurnsOnly(t *testing.T) {
	transcript := chat.Transcript{
		{Role: chat.RoleChatbot, Message: "How did that make you feel?"},
	}
	label, scores := Estimate(transcript)
	if label != Thinking {
		t.Fatalf("expected thinking, got %s", label)
	}
	if len(scores) != 0 {
		t.Fatalf("expected empty score map, got %v", scores)
	}
}

func TestEstimateSingleHappyTurn(t *testing.T) {
	transcript := chat.Transcript{
		userTurn("things went well", 0.9, map[string][]float64{"Happy": {0.9}}),
	}

	label, scores := Estimate(transcript)
	if label != Happy {
		t.Fatalf("expected happy, got %s", label)
	}
	if scores[Happy] < 0.25 {
		t.Fatalf("expected dominant happy score, got %f", scores[Happy])
	}
	assertNormalized(t, scores)
}

func TestEstimateLowConfidenceExcludesStats(t *testing.T) {
	transcript := chat.Transcript{
		userTurn("nothing much to report", 0.3, map[string][]float64{"Angry": {0.95}}),
	}

	label, scores := Estimate(transcript)
	if label != Thinking {
		t.Fatalf("expected thinking for sub-gate confidence, got %s", label)
	}
	for name, score := range scores {
		if score != 0 {
			t.Fatalf("expected all-zero scores, got %s=%f", name, score)
		}
	}
}

func TestEstimateKeywordsAreCaseInsensitive(t *testing.T) {
	transcript := chat.Transcript{
		userTurn("I am SO Angry today", 0, nil),
	}

	label, scores := Estimate(transcript)
	if label != Angry {
		t.Fatalf("expected angry via keyword match, got %s", label)
	}
	if scores[Angry] != 1.0 {
		t.Fatalf("expected angry to hold all mass, got %f", scores[Angry])
	}
}

func TestEstimateWorrySplitsIntoAngryAndFearful(t *testing.T) {
	transcript := chat.Transcript{
		userTurn("hmm", 0.8, map[string][]float64{"Worry": {0.6}}),
	}

	_, scores := Estimate(transcript)
	if math.Abs(scores[Angry]-scores[Fearful]) > 1e-9 {
		t.Fatalf("worry should split evenly: angry=%f fearful=%f", scores[Angry], scores[Fearful])
	}
	assertNormalized(t, scores)
}

func TestEstimateRecencyWeighting(t *testing.T) {
	// The older sad turn gets weight 0.5, the newer happy turn 1.0, so happy
	// wins despite equal confidences.
	transcript := chat.Transcript{
		userTurn("earlier", 0.8, map[string][]float64{"Sad": {0.8}}),
		userTurn("later", 0.8, map[string][]float64{"Happy": {0.8}}),
	}

	label, scores := Estimate(transcript)
	if label != Happy {
		t.Fatalf("expected recency-weighted happy, got %s", label)
	}
	if scores[Happy] <= scores[Sad] {
		t.Fatalf("expected happy > sad, got happy=%f sad=%f", scores[Happy], scores[Sad])
	}
}

func TestEstimateOnlyLastThreeUserTurnsCount(t *testing.T) {
	transcript := chat.Transcript{
		userTurn("old rage", 0.9, map[string][]float64{"Angry": {0.99}}),
		userTurn("fine", 0.9, map[string][]float64{"Calm": {0.9}}),
		userTurn("fine", 0.9, map[string][]float64{"Calm": {0.9}}),
		userTurn("fine", 0.9, map[string][]float64{"Calm": {0.9}}),
	}

	label, scores := Estimate(transcript)
	if label != Calm {
		t.Fatalf("expected calm, got %s", label)
	}
	if scores[Angry] != 0 {
		t.Fatalf("turn outside the window leaked in: angry=%f", scores[Angry])
	}
}

func TestEstimateBelowThresholdFallsBackToThinking(t *testing.T) {
	// Equal mass across every label keeps each normalized score under 0.25.
	flat := map[string][]float64{
		"Happy": {0.5}, "Sad": {0.5}, "Angry": {0.5}, "Calm": {0.5},
		"Fear": {0.5}, "Worry": {0.5}, "Insightful": {0.5},
	}
	transcript := chat.Transcript{
		userTurn("mixed bag of a day", 0.8, flat),
	}

	label, scores := Estimate(transcript)
	if label != Thinking {
		t.Fatalf("expected thinking below threshold, got %s", label)
	}
	assertNormalized(t, scores)
	for name, score := range scores {
		if score >= 0.25 {
			t.Fatalf("expected every score under threshold, got %s=%f", name, score)
		}
	}
}

func assertNormalized(t *testing.T, scores map[Label]float64) {
	t.Helper()
	total := 0.0
	for _, v := range scores {
		total += v
	}
	if math.Abs(total-1.0) > 1e-9 {
		t.Fatalf("expected scores to sum to 1, got %f", total)
	}
}
