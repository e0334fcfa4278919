package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Labels 是分类器输出必须落在的固定标签集合。
var Labels = []string{"Happy", "Sad", "Angry", "Calm", "Fear", "Worry", "Insightful"}

// Classification 给出单条输入的情感分类结果。
type Classification struct {
	// Prediction is the top label, Confidence its score.
	Prediction string
	Confidence float64
	// ConfStat maps every label to a one-element slice holding its score,
	// matching the transcript's stored emotion_conf_stat shape.
	ConfStat map[string][]float64
}

// Service 使用大模型对用户输入做情感分类。
type Service struct {
	classifier compose.Runnable[map[string]any, *schema.Message]
}

// NewService 创建情感分类服务。chatModel 可重用现有的大模型实例。
func NewService(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("sentiment classifier requires a chat model")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(classifierSystemPrompt),
		schema.UserMessage(classifierUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile sentiment classifier chain: %w", err)
	}

	return &Service{classifier: runnable}, nil
}

// Classify runs the classifier on a single input text. Any provider or
// protocol failure is returned to the caller unrecovered.
func (s *Service) Classify(ctx context.Context, text string) (Classification, error) {
	input := map[string]any{
		"labels":   strings.Join(Labels, ", "),
		"examples": formatExamples(moodExamples),
		"input":    strings.TrimSpace(text),
	}

	msg, err := s.classifier.Invoke(ctx, input)
	if err != nil {
		return Classification{}, fmt.Errorf("classifier invoke failed: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return Classification{}, fmt.Errorf("classifier returned empty output")
	}

	payload, err := parseClassifierOutput(msg.Content)
	if err != nil {
		return Classification{}, fmt.Errorf("classifier output parse failed: %w", err)
	}

	result, err := payload.toClassification()
	if err != nil {
		return Classification{}, err
	}

	log.Printf("[sentiment] prediction=%s confidence=%.3f", result.Prediction, result.Confidence)
	return result, nil
}

type classifierPayload struct {
	Prediction string             `json:"prediction"`
	Confidence float64            `json:"confidence"`
	Labels     map[string]float64 `json:"labels"`
}

func (p *classifierPayload) toClassification() (Classification, error) {
	prediction, ok := canonicalLabel(p.Prediction)
	if !ok {
		return Classification{}, fmt.Errorf("classifier returned unknown label %q", p.Prediction)
	}

	confStat := make(map[string][]float64, len(Labels))
	for _, label := range Labels {
		confStat[label] = []float64{clampScore(p.Labels[label])}
	}

	return Classification{
		Prediction: prediction,
		Confidence: clampScore(p.Confidence),
		ConfStat:   confStat,
	}, nil
}

// parseClassifierOutput 解析大模型返回的 JSON。
func parseClassifierOutput(content string) (*classifierPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func canonicalLabel(raw string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, label := range Labels {
		if strings.ToLower(label) == normalized {
			return label, true
		}
	}
	return "", false
}

func clampScore(val float64) float64 {
	if val < 0 {
		return 0
	}
	if val > 1 {
		return 1
	}
	return val
}

func formatExamples(examples []Example) string {
	var builder strings.Builder
	for i, example := range examples {
		builder.WriteString(fmt.Sprintf("%q -> %s", example.Text, example.Label))
		if i < len(examples)-1 {
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

const classifierSystemPrompt = "You are a sentiment classifier for a journaling app. Classify the user's text into exactly one of the given labels, scoring every label.\nOutput requirements: return only a JSON object with these fields: prediction (one of the given labels), confidence (a number between 0 and 1 for the predicted label), labels (an object mapping every label to a number between 0 and 1). No extra text."

const classifierUserPrompt = "Labels: {labels}\n\nLabeled examples:\n{examples}\n\nText to classify:\n{input}\n\nReturn the JSON now."
