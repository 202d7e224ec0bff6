// Package llm wraps the chat-completion provider used for content generation.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

const (
	RoleSystem = openai.ChatMessageRoleSystem
	RoleUser   = openai.ChatMessageRoleUser

	defaultMaxTokens   = 1500
	defaultTemperature = 0.7
)

var ErrNotConfigured = errors.New("llm provider not configured")

type Message struct {
	Role    string
	Content string
}

type Completion struct {
	Content    string
	TokensUsed int
	Model      string
}

// Client produces one completion for a conversation.
type Client interface {
	Complete(ctx context.Context, messages []Message) (*Completion, error)
}

type OpenAIClient struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

func NewOpenAIClient(apiKey, model string, logger zerolog.Logger) *OpenAIClient {
	var c *openai.Client
	if apiKey != "" {
		c = openai.NewClient(apiKey)
	}
	return &OpenAIClient{
		client: c,
		model:  model,
		logger: logger,
	}
}

// NewOpenAIClientWithBaseURL targets an OpenAI-compatible endpoint such as a
// self-hosted gateway.
func NewOpenAIClientWithBaseURL(apiKey, baseURL, model string, logger zerolog.Logger) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	if c.client == nil {
		return nil, ErrNotConfigured
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error().Err(err).Str("model", c.model).Msg("Chat completion failed")
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return &Completion{
		Content:    resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
		Model:      resp.Model,
	}, nil
}
