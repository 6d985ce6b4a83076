package ai

import (
	"context"

	"github.com/okatenko/prepflow/internal/profile"
	"github.com/okatenko/prepflow/internal/question"
)

// OfflineProvider serves the deterministic content directly, without any
// remote calls. It backs sessions when no provider API key is configured and
// doubles as a predictable fixture in tests.
type OfflineProvider struct{}

// NewOffline returns a provider requiring no network or credentials.
func NewOffline() *OfflineProvider {
	return &OfflineProvider{}
}

func (*OfflineProvider) ParseProfile(_ context.Context, _ string) (*profile.Profile, error) {
	return FallbackProfile(), nil
}

func (*OfflineProvider) GenerateQuestions(_ context.Context, _ *profile.Profile, _ string) ([]QuestionPayload, error) {
	records := question.Fallbacks()
	payloads := make([]QuestionPayload, 0, len(records))
	for _, rec := range records {
		payloads = append(payloads, QuestionPayload{
			Kind:           string(rec.Kind),
			Prompt:         rec.Prompt,
			Context:        rec.Context,
			ExpectedPoints: rec.ExpectedPoints,
		})
	}
	return payloads, nil
}

func (*OfflineProvider) GenerateEvaluation(_ context.Context, _ question.Record, _ string) (*EvaluationPayload, error) {
	return FallbackEvaluation(), nil
}

func (*OfflineProvider) GenerateFollowUp(_ context.Context, _ question.Record, _ string) (*FollowUpSuggestion, error) {
	return FallbackFollowUp(), nil
}
