package llm

import (
	"context"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"

	"github.com/sean-lai-sh/agent-manager/internal/config"
	"github.com/sean-lai-sh/agent-manager/internal/errors"
)

func plannerConfig(backend string) *config.PlannerConfig {
	cfg := config.Default().Planner
	cfg.Backend = backend
	cfg.APIKeyEnv = "TEST_PLANNER_KEY"
	cfg.CLICommand = "cat"
	return &cfg
}

func TestNewFromConfigSelection(t *testing.T) {
	t.Setenv("TEST_PLANNER_KEY", "test-key")

	tests := []struct {
		backend string
		want    string
	}{
		{"anthropic", "anthropic"},
		{"", "anthropic"},
		{"openai", "openai"},
		{"cli", "cli"},
		{"Anthropic", "anthropic"},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			b, err := NewFromConfig(plannerConfig(tt.backend))
			if err != nil {
				t.Fatalf("NewFromConfig(%q) error: %v", tt.backend, err)
			}
			if b.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", b.Name(), tt.want)
			}
		})
	}
}

func TestNewFromConfigUnknownBackend(t *testing.T) {
	_, err := NewFromConfig(plannerConfig("cohere"))
	if !errors.Is(err, errors.ErrUnknownBackend) {
		t.Errorf("error = %v, want ErrUnknownBackend", err)
	}
}

func TestNewFromConfigMissingAPIKey(t *testing.T) {
	t.Setenv("TEST_PLANNER_KEY", "")
	_, err := NewFromConfig(plannerConfig("anthropic"))
	if !errors.Is(err, errors.ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestNewFromConfigNil(t *testing.T) {
	if _, err := NewFromConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

type fakeMessages struct {
	gotParams sdk.MessageNewParams
	msg       *sdk.Message
	err       error
}

func (f *fakeMessages) New(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	f.gotParams = body
	return f.msg, f.err
}

func TestAnthropicComplete(t *testing.T) {
	fake := &fakeMessages{msg: &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: `{"questions":`},
			{Type: "text", Text: ` ["Who?"]}`},
		},
	}}
	b := &AnthropicBackend{msg: fake, model: "claude-sonnet-4-5", maxTokens: 1024}

	got, err := b.Complete(context.Background(), Request{Prompt: "plan this"})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if want := `{"questions": ["Who?"]}`; got != want {
		t.Errorf("Complete = %q, want %q", got, want)
	}
	if fake.gotParams.Model != "claude-sonnet-4-5" {
		t.Errorf("model = %q, want configured default", fake.gotParams.Model)
	}
	if fake.gotParams.MaxTokens != 1024 {
		t.Errorf("max tokens = %d, want 1024", fake.gotParams.MaxTokens)
	}
}

func TestAnthropicCompleteEmptyResponse(t *testing.T) {
	b := &AnthropicBackend{msg: &fakeMessages{msg: &sdk.Message{}}, model: "m", maxTokens: 16}
	_, err := b.Complete(context.Background(), Request{Prompt: "p"})
	if !errors.Is(err, errors.ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}

type fakeChat struct {
	gotRequest openai.ChatCompletionRequest
	resp       openai.ChatCompletionResponse
	err        error
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.gotRequest = request
	return f.resp, f.err
}

func TestOpenAIComplete(t *testing.T) {
	fake := &fakeChat{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: `{"plan": {}}`}},
		},
	}}
	b := &OpenAIBackend{chat: fake, model: "gpt-4o", maxTokens: 2048}

	got, err := b.Complete(context.Background(), Request{Prompt: "plan this", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got != `{"plan": {}}` {
		t.Errorf("Complete = %q", got)
	}
	if fake.gotRequest.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want request override", fake.gotRequest.Model)
	}
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	b := &OpenAIBackend{chat: &fakeChat{}, model: "gpt-4o"}
	_, err := b.Complete(context.Background(), Request{Prompt: "p"})
	if !errors.Is(err, errors.ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}
