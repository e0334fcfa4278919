package sentiment

import (
	"strings"
	"testing"
)

func TestParseClassifierOutputExtractsBraceWindow(t *testing.T) {
	content := "Sure, here is the result:\n{\"prediction\": \"Happy\", \"confidence\": 0.8, \"labels\": {\"Happy\": 0.8, \"Sad\": 0.05}}\nLet me know if you need more."

	payload, err := parseClassifierOutput(content)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if payload.Prediction != "Happy" {
		t.Fatalf("unexpected prediction: %q", payload.Prediction)
	}
	if payload.Confidence != 0.8 {
		t.Fatalf("unexpected confidence: %f", payload.Confidence)
	}
	if payload.Labels["Sad"] != 0.05 {
		t.Fatalf("unexpected label score: %v", payload.Labels)
	}
}

func TestParseClassifierOutputMissingJSON(t *testing.T) {
	if _, err := parseClassifierOutput("no structured data here"); err == nil {
		t.Fatal("expected error for missing json object")
	}
}

func TestToClassificationFillsEveryLabel(t *testing.T) {
	payload := &classifierPayload{
		Prediction: "happy",
		Confidence: 1.4,
		Labels:     map[string]float64{"Happy": 0.9},
	}

	result, err := payload.toClassification()
	if err != nil {
		t.Fatalf("toClassification err: %v", err)
	}
	if result.Prediction != "Happy" {
		t.Fatalf("expected canonical label, got %q", result.Prediction)
	}
	if result.Confidence != 1 {
		t.Fatalf("expected confidence clamped to 1, got %f", result.Confidence)
	}
	if len(result.ConfStat) != len(Labels) {
		t.Fatalf("expected %d labels, got %d", len(Labels), len(result.ConfStat))
	}
	for _, label := range Labels {
		if len(result.ConfStat[label]) != 1 {
			t.Fatalf("label %s must hold a one-element slice, got %v", label, result.ConfStat[label])
		}
	}
	if result.ConfStat["Happy"][0] != 0.9 {
		t.Fatalf("unexpected happy score: %v", result.ConfStat["Happy"])
	}
	if result.ConfStat["Sad"][0] != 0 {
		t.Fatalf("missing labels must default to zero, got %v", result.ConfStat["Sad"])
	}
}

func TestToClassificationRejectsUnknownLabel(t *testing.T) {
	payload := &classifierPayload{Prediction: "Ecstatic", Confidence: 0.9}
	if _, err := payload.toClassification(); err == nil {
		t.Fatal("expected error for unknown label")
	}
}

func TestFormatExamplesCoversEveryLabel(t *testing.T) {
	formatted := formatExamples(moodExamples)
	for _, label := range Labels {
		if !strings.Contains(formatted, "-> "+label) {
			t.Fatalf("example block missing label %s", label)
		}
	}
	if strings.HasSuffix(formatted, "\n") {
		t.Fatal("example block must not end with a newline")
	}
}
