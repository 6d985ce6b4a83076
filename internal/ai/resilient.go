package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/okatenko/prepflow/internal/logger"
	"github.com/okatenko/prepflow/internal/profile"
	"github.com/okatenko/prepflow/internal/question"
)

// ResilientCaller wraps every provider operation with try/fallback semantics.
// Remote and parse failures never propagate past this boundary: they are
// logged and replaced by the deterministic fallback of the operation, so the
// session can always proceed. Input validation failures are the one
// exception; they are rejected before any remote call is made.
type ResilientCaller struct {
	provider Provider
	logger   *zap.Logger
}

// NewResilientCaller wraps the provider.
func NewResilientCaller(provider Provider, log *zap.Logger) *ResilientCaller {
	return &ResilientCaller{
		provider: provider,
		logger:   logger.WithFields(log),
	}
}

// ParseProfile validates the raw text, then asks the provider to extract a
// structured profile. The returned error is only ever a validation error;
// provider failures yield the fallback profile.
func (c *ResilientCaller) ParseProfile(ctx context.Context, text string) (*profile.Profile, error) {
	if err := profile.ValidateText(text); err != nil {
		return nil, err
	}

	p, err := c.provider.ParseProfile(ctx, text)
	if err != nil {
		c.logger.Warn("profile parsing failed, using fallback profile", zap.Error(err))
		return FallbackProfile(), nil
	}

	return p, nil
}

// GenerateQuestions returns a tailored question list, or the canonical
// fallback set when the provider fails.
func (c *ResilientCaller) GenerateQuestions(ctx context.Context, p *profile.Profile, targetRole string) []question.Record {
	if p == nil {
		p = FallbackProfile()
	}

	payloads, err := c.provider.GenerateQuestions(ctx, p, targetRole)
	if err != nil {
		c.logger.Warn("question generation failed, using canonical question set", zap.Error(err))
		return FallbackQuestions()
	}

	records := make([]question.Record, 0, len(payloads))
	for i := range payloads {
		records = append(records, payloads[i].ToRecord())
	}
	return records
}

// GenerateEvaluation returns feedback for an answer, or neutral fallback
// feedback when the provider fails.
func (c *ResilientCaller) GenerateEvaluation(ctx context.Context, q question.Record, answer string) *EvaluationPayload {
	payload, err := c.provider.GenerateEvaluation(ctx, q, answer)
	if err != nil {
		c.logger.Warn("evaluation generation failed, using neutral feedback",
			zap.String("question_id", q.ID),
			zap.Error(err),
		)
		return FallbackEvaluation()
	}

	return payload
}

// GenerateFollowUp returns the provider's follow-up decision, or a generic
// acknowledgement with no forced next question when the provider fails.
func (c *ResilientCaller) GenerateFollowUp(ctx context.Context, q question.Record, answer string) *FollowUpSuggestion {
	suggestion, err := c.provider.GenerateFollowUp(ctx, q, answer)
	if err != nil {
		c.logger.Warn("follow-up generation failed, advancing without follow-up",
			zap.String("question_id", q.ID),
			zap.Error(err),
		)
		return FallbackFollowUp()
	}

	return suggestion
}
