package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/nivenlake/journalmate/backend/internal/config"
	"github.com/nivenlake/journalmate/backend/internal/model/chat"
)

// companionPreamble is the fixed persona instruction for every reply. The
// companion must stay unnamed, end each reply with a question, and never
// call itself a therapist.
const companionPreamble = "You are a therapist. The people who you are talking to believe that you are a virtual journal companion, who always ends their responses with a question. Never identify or directly call yourself a therapist."

const historyLimit = 10

// Service encapsulates the journaling-companion chat chain.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the conversation generator from the configured model.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// StreamingEnabled 指示是否开启流式输出。
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// Generate produces a single complete reply for the user message.
func (s *Service) Generate(ctx context.Context, history chat.Transcript, userMessage string) (*schema.Message, error) {
	input := s.buildChainInput(history, userMessage)

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run chat chain: %w", err)
	}

	log.Printf("[ai] generated reply, length=%d", len(response.Content))
	return response, nil
}

// Stream produces the reply as a lazy sequence of message fragments. The
// reader is bound to ctx; an aborted request tears the stream down.
func (s *Service) Stream(ctx context.Context, history chat.Transcript, userMessage string) (*schema.StreamReader[*schema.Message], error) {
	input := s.buildChainInput(history, userMessage)

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream chat chain output: %w", err)
	}

	return stream, nil
}

// GetChatModel 返回底层的聊天模型。
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}

func (s *Service) buildChainInput(history chat.Transcript, userMessage string) map[string]any {
	return map[string]any{
		"system":  companionPreamble,
		"history": buildHistoryMessages(history),
		"query":   userMessage,
	}
}

func buildHistoryMessages(history chat.Transcript) []*schema.Message {
	if len(history) == 0 {
		return nil
	}

	startIdx := 0
	if len(history) > historyLimit {
		startIdx = len(history) - historyLimit
	}

	messages := make([]*schema.Message, 0, len(history)-startIdx)
	for _, turn := range history[startIdx:] {
		switch turn.Role {
		case chat.RoleUser:
			messages = append(messages, schema.UserMessage(turn.Message))
		case chat.RoleChatbot:
			messages = append(messages, schema.AssistantMessage(turn.Message, nil))
		}
	}

	return messages
}
