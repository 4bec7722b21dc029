package llm

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sean-lai-sh/agent-manager/internal/config"
	"github.com/sean-lai-sh/agent-manager/internal/errors"
)

// chatClient captures the subset of the go-openai client used here.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIBackend completes prompts through the Chat Completions API.
type OpenAIBackend struct {
	chat        chatClient
	model       string
	maxTokens   int
	temperature float64
}

// NewOpenAIBackend builds the backend from config, reading the API key
// from the configured environment variable.
func NewOpenAIBackend(cfg *config.PlannerConfig) (*OpenAIBackend, error) {
	key, err := apiKeyFromEnv(cfg.APIKeyEnv)
	if err != nil {
		return nil, err
	}
	return &OpenAIBackend{
		chat:        openai.NewClient(key),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (b *OpenAIBackend) Name() string { return string(BackendOpenAI) }

// Complete sends the prompt as a single user message and returns the
// first choice's content.
func (b *OpenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = b.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = b.maxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = b.temperature
	}

	resp, err := b.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	})
	if err != nil {
		return "", errors.NewBackendError("openai completion failed", err).WithBackend(b.Name())
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.NewBackendError("openai returned no content", errors.ErrEmptyResponse).WithBackend(b.Name())
	}
	return resp.Choices[0].Message.Content, nil
}
