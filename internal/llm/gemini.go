package llm

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/sean-lai-sh/agent-manager/internal/config"
	"github.com/sean-lai-sh/agent-manager/internal/errors"
)

// GeminiBackend completes prompts through the Gemini GenerateContent
// API.
type GeminiBackend struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewGeminiBackend builds the backend from config, reading the API key
// from the configured environment variable.
func NewGeminiBackend(cfg *config.PlannerConfig) (*GeminiBackend, error) {
	key, err := apiKeyFromEnv(cfg.APIKeyEnv)
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: key})
	if err != nil {
		return nil, errors.NewBackendError("failed to create gemini client", err).WithBackend(string(BackendGemini))
	}
	return &GeminiBackend{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (b *GeminiBackend) Name() string { return string(BackendGemini) }

// Complete sends the prompt as user content and concatenates the text
// parts of the first candidate.
func (b *GeminiBackend) Complete(ctx context.Context, req Request) (string, error) {
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

	cfg := &genai.GenerateContentConfig{}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}
	if temperature > 0 {
		t := float32(temperature)
		cfg.Temperature = &t
	}

	resp, err := b.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", errors.NewBackendError("gemini completion failed", err).WithBackend(b.Name())
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.NewBackendError("gemini returned no text content", errors.ErrEmptyResponse).WithBackend(b.Name())
	}
	return text, nil
}
