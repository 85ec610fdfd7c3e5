// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps chat-completion access behind a small interface so
// extraction logic can be tested without network calls.
package llm

import (
	"context"
	"fmt"

	"github.com/revrost/go-openrouter"

	"github.com/pdiddy/litscout/pkg/types"
)

// DefaultModel is used when the config names no model.
const DefaultModel = "openai/gpt-4o-mini"

// CallOptions tune a single completion call. Zero values defer to the
// client's configured defaults.
type CallOptions struct {
	MaxTokens   int
	Temperature float32

	// JSONOutput requests a JSON-object response format from models
	// that support it.
	JSONOutput bool
}

// Client produces a completion for a prompt.
type Client interface {
	Call(ctx context.Context, prompt string, opts CallOptions) (string, error)
}

// OpenRouterClient is the production Client, backed by the OpenRouter
// chat completion API.
type OpenRouterClient struct {
	client      *openrouter.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenRouter builds a client from config. The API key must be set.
func NewOpenRouter(cfg types.LLMConfig) (*OpenRouterClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is not set")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &OpenRouterClient{
		client:      openrouter.NewClient(cfg.APIKey),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}, nil
}

// Call sends a single-message completion request and returns the text
// of the first choice.
func (c *OpenRouterClient) Call(ctx context.Context, prompt string, opts CallOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	request := openrouter.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []openrouter.ChatCompletionMessage{
			{
				Role:    openrouter.ChatMessageRoleUser,
				Content: openrouter.Content{Text: prompt},
			},
		},
	}
	if opts.JSONOutput {
		request.ResponseFormat = &openrouter.ChatCompletionResponseFormat{
			Type: openrouter.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	response, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return response.Choices[0].Message.Content.Text, nil
}
