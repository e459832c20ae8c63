// SPDX-License-Identifier: Apache-2.0

// Package llm provides the chat-completion client used by the workflow
// stages that need a language model. The default implementation talks to any
// OpenAI-compatible endpoint (OpenRouter in production) through
// github.com/sashabaranov/go-openai.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adiadia/research-engine/internal/metrics"
	openai "github.com/sashabaranov/go-openai"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

const defaultMaxTokens = 1000

// Message is one chat turn sent to the model.
type Message struct {
	Role    string
	Content string
}

// Client is the completion contract the workflow depends on. One call per
// stage that needs it; no retries at this layer.
type Client interface {
	Invoke(ctx context.Context, messages []Message) (string, error)
}

// ChatCompleter captures the subset of the go-openai client used here.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Options configures the OpenRouter-backed client.
type Options struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// OpenRouterClient implements Client via the OpenAI chat completions API.
type OpenRouterClient struct {
	chat      ChatCompleter
	model     string
	maxTokens int
}

// New builds a client from the provided options. BaseURL defaults to the
// library's OpenAI endpoint when empty.
func New(opts Options) (*OpenRouterClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	if opts.Model == "" {
		return nil, errors.New("model is required")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &OpenRouterClient{
		chat:      openai.NewClientWithConfig(cfg),
		model:     opts.Model,
		maxTokens: maxTokens,
	}, nil
}

// NewWithCompleter builds a client around an existing ChatCompleter.
func NewWithCompleter(chat ChatCompleter, model string, maxTokens int) (*OpenRouterClient, error) {
	if chat == nil {
		return nil, errors.New("chat completer is required")
	}
	if model == "" {
		return nil, errors.New("model is required")
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &OpenRouterClient{chat: chat, model: model, maxTokens: maxTokens}, nil
}

// Invoke renders one chat completion and returns the raw response text.
func (c *OpenRouterClient) Invoke(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("messages are required")
	}

	request := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
	}
	for _, m := range messages {
		request.Messages = append(request.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	started := time.Now()
	response, err := c.chat.CreateChatCompletion(ctx, request)
	metrics.ObserveModelCallDuration(time.Since(started))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return response.Choices[0].Message.Content, nil
}
