// Package openai implements the content generator on top of the OpenAI
// chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

const (
	defaultModel          = "gpt-4o-mini"
	defaultMaxRetries     = 3
	defaultRequestTimeout = 75 * time.Second
)

// completionCreator is the part of the OpenAI client the generator uses.
type completionCreator interface {
	New(ctx context.Context, params openaigo.ChatCompletionNewParams) (*openaigo.ChatCompletion, error)
}

type sdkCompletions struct {
	client openaigo.Client
}

func (s *sdkCompletions) New(ctx context.Context, params openaigo.ChatCompletionNewParams) (*openaigo.ChatCompletion, error) {
	return s.client.Chat.Completions.New(ctx, params)
}

// Generator sends prompts to the OpenAI API. Retries are delegated to the
// SDK client options.
type Generator struct {
	completions completionCreator
	model       string
	logger      *zap.Logger
}

// Config holds the OpenAI connection settings.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxRetries     int
	RequestTimeout time.Duration
}

// NewGenerator creates a generator for the configured OpenAI endpoint.
func NewGenerator(cfg Config, logger *zap.Logger) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(maxRetries),
		option.WithRequestTimeout(timeout),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(base, "/")))
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	client := openaigo.NewClient(opts...)

	return &Generator{
		completions: &sdkCompletions{client: client},
		model:       model,
		logger:      logger,
	}, nil
}

// GenerateContent sends the message with the given system instruction and
// returns the assistant's reply.
func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	if g == nil || g.completions == nil {
		return "", errors.New("openai generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message must not be empty")
	}

	messages := make([]openaigo.ChatCompletionMessageParamUnion, 0, 2)
	if system = strings.TrimSpace(system); system != "" {
		messages = append(messages, openaigo.SystemMessage(system))
	}
	messages = append(messages, openaigo.UserMessage(message))

	completion, err := g.completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model:    openaigo.ChatModel(g.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}

	output := strings.TrimSpace(completion.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("openai api returned empty response")
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
