package llm

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sean-lai-sh/agent-manager/internal/config"
	"github.com/sean-lai-sh/agent-manager/internal/errors"
)

// messagesClient captures the subset of the Anthropic SDK used here. It
// is satisfied by *sdk.MessageService, so tests can substitute a fake.
type messagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// AnthropicBackend completes prompts through the Claude Messages API,
// non-streaming.
type AnthropicBackend struct {
	msg         messagesClient
	model       string
	maxTokens   int
	temperature float64
}

// NewAnthropicBackend builds the backend from config, reading the API
// key from the configured environment variable.
func NewAnthropicBackend(cfg *config.PlannerConfig) (*AnthropicBackend, error) {
	key, err := apiKeyFromEnv(cfg.APIKeyEnv)
	if err != nil {
		return nil, err
	}
	client := sdk.NewClient(option.WithAPIKey(key))
	return &AnthropicBackend{
		msg:         &client.Messages,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (b *AnthropicBackend) Name() string { return string(BackendAnthropic) }

// Complete sends the prompt as a single user message and concatenates
// the text blocks of the response.
func (b *AnthropicBackend) Complete(ctx context.Context, req Request) (string, error) {
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

	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if temperature > 0 {
		params.Temperature = sdk.Float(temperature)
	}

	msg, err := b.msg.New(ctx, params)
	if err != nil {
		return "", errors.NewBackendError("anthropic completion failed", err).WithBackend(b.Name())
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", errors.NewBackendError("anthropic returned no text content", errors.ErrEmptyResponse).WithBackend(b.Name())
	}
	return out.String(), nil
}
