package ai

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/okatenko/prepflow/internal/logger"
	"github.com/okatenko/prepflow/internal/profile"
	"github.com/okatenko/prepflow/internal/question"
)

//go:embed prompt_profile.md
var profilePrompt string

//go:embed prompt_questions.md
var questionsPrompt string

//go:embed prompt_evaluation.md
var evaluationPrompt string

//go:embed prompt_followup.md
var followUpPrompt string

const systemInstruction = "You are an experienced interviewer preparing and assessing mock interview sessions. " +
	"You always respond with valid JSON matching the requested schema and nothing else."

const defaultMaxLogLength = 200

// Remote is a Provider on top of a ContentGenerator. It builds prompts,
// sends them to the model and parses the JSON it returns.
type Remote struct {
	generator ContentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewRemote creates a provider around the given generator.
func NewRemote(generator ContentGenerator, log *zap.Logger, maxLogLength int) *Remote {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Remote{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

func (r *Remote) ParseProfile(ctx context.Context, text string) (*profile.Profile, error) {
	prompt := strings.ReplaceAll(profilePrompt, "{{PROFILE_TEXT}}", text)

	raw, err := r.generate(ctx, "parse_profile", prompt)
	if err != nil {
		return nil, err
	}

	var p profile.Profile
	if err := unmarshalObject(raw, &p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.CurrentRole) == "" {
		return nil, fmt.Errorf("parsed profile is empty")
	}

	return &p, nil
}

func (r *Remote) GenerateQuestions(ctx context.Context, p *profile.Profile, targetRole string) ([]QuestionPayload, error) {
	prompt := strings.ReplaceAll(questionsPrompt, "{{TARGET_ROLE}}", orNone(targetRole))
	prompt = strings.ReplaceAll(prompt, "{{PROFILE}}", orNone(p.Summary()))

	raw, err := r.generate(ctx, "generate_questions", prompt)
	if err != nil {
		return nil, err
	}

	payloads, err := parseQuestions(raw)
	if err != nil {
		return nil, err
	}
	if err := ValidateQuestions(payloads); err != nil {
		return nil, err
	}

	return payloads, nil
}

func (r *Remote) GenerateEvaluation(ctx context.Context, q question.Record, answer string) (*EvaluationPayload, error) {
	raw, err := r.generate(ctx, "generate_evaluation", answerPrompt(evaluationPrompt, q, answer))
	if err != nil {
		return nil, err
	}

	payload, err := parseEvaluation(raw)
	if err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	return payload, nil
}

func (r *Remote) GenerateFollowUp(ctx context.Context, q question.Record, answer string) (*FollowUpSuggestion, error) {
	raw, err := r.generate(ctx, "generate_followup", answerPrompt(followUpPrompt, q, answer))
	if err != nil {
		return nil, err
	}

	suggestion, err := parseFollowUp(raw)
	if err != nil {
		return nil, err
	}
	if err := suggestion.Validate(); err != nil {
		return nil, err
	}

	return suggestion, nil
}

func (r *Remote) generate(ctx context.Context, operation, prompt string) (string, error) {
	r.logger.Debug("content generation request",
		zap.String("operation", operation),
		zap.String("model", r.generator.Model()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return "", err
	}

	r.logger.Debug("content generation response",
		zap.String("operation", operation),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, r.maxLogLen)),
	)

	return raw, nil
}

func answerPrompt(template string, q question.Record, answer string) string {
	prompt := strings.ReplaceAll(template, "{{KIND}}", string(q.Kind))
	prompt = strings.ReplaceAll(prompt, "{{QUESTION}}", q.Prompt)
	prompt = strings.ReplaceAll(prompt, "{{EXPECTED_POINTS}}", orNone(strings.Join(q.ExpectedPoints, ", ")))
	prompt = strings.ReplaceAll(prompt, "{{ANSWER}}", orNone(answer))
	return prompt
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
