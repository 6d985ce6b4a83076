// Package ai defines the contract with the generative content provider and
// the resilient wrapper that shields the engine from its failures.
package ai

import (
	"context"

	"github.com/okatenko/prepflow/internal/profile"
	"github.com/okatenko/prepflow/internal/question"
)

// ContentGenerator produces free text for a prompt. Implementations wrap a
// concrete model backend (Gemini, OpenAI).
type ContentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Provider is the full set of remote operations the engine relies on. It is
// treated as an unreliable remote function with no guaranteed availability;
// callers must go through the ResilientCaller.
type Provider interface {
	ParseProfile(ctx context.Context, text string) (*profile.Profile, error)
	GenerateQuestions(ctx context.Context, p *profile.Profile, targetRole string) ([]QuestionPayload, error)
	GenerateEvaluation(ctx context.Context, q question.Record, answer string) (*EvaluationPayload, error)
	GenerateFollowUp(ctx context.Context, q question.Record, answer string) (*FollowUpSuggestion, error)
}
