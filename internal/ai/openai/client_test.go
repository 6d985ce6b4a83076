package openai

import (
	"context"
	"errors"
	"testing"

	openaigo "github.com/openai/openai-go/v3"
	"go.uber.org/zap"
)

type fakeCompletions struct {
	resp       *openaigo.ChatCompletion
	err        error
	lastParams openaigo.ChatCompletionNewParams
	calls      int
}

func (f *fakeCompletions) New(_ context.Context, params openaigo.ChatCompletionNewParams) (*openaigo.ChatCompletion, error) {
	f.calls++
	f.lastParams = params
	return f.resp, f.err
}

func TestGenerateContent(t *testing.T) {
	fake := &fakeCompletions{
		resp: &openaigo.ChatCompletion{
			Choices: []openaigo.ChatCompletionChoice{{
				Message: openaigo.ChatCompletionMessage{Content: "  hello  "},
			}},
		},
	}

	g := &Generator{completions: fake, model: "gpt-test", logger: zap.NewNop()}

	output, err := g.GenerateContent(context.Background(), "system", "message")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output != "hello" {
		t.Fatalf("unexpected output: %q", output)
	}

	if got := string(fake.lastParams.Model); got != "gpt-test" {
		t.Fatalf("unexpected model: %q", got)
	}
	if len(fake.lastParams.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(fake.lastParams.Messages))
	}
}

func TestGenerateContentRejectsEmptyMessage(t *testing.T) {
	g := &Generator{completions: &fakeCompletions{}, model: "gpt-test", logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "system", "   "); err == nil {
		t.Fatal("expected error for empty message")
	}
}

func TestGenerateContentPropagatesAPIError(t *testing.T) {
	fake := &fakeCompletions{err: errors.New("rate limited")}
	g := &Generator{completions: fake, model: "gpt-test", logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "system", "message"); err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestGenerateContentRejectsEmptyChoices(t *testing.T) {
	fake := &fakeCompletions{resp: &openaigo.ChatCompletion{}}
	g := &Generator{completions: fake, model: "gpt-test", logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "system", "message"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator(Config{}, zap.NewNop()); err == nil {
		t.Fatal("expected error without api key")
	}
}
