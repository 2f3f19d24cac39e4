package service

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// ChatClient is the subset of *openai.Client used by the services.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewOpenAIClient builds a client for any OpenAI-compatible endpoint.
func NewOpenAIClient(baseURL, apiKey string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}
