package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okatenko/prepflow/internal/question"
)

// QuestionPayload is the shape a provider must return for one generated
// question. A payload failing Validate is treated as a provider failure, not
// a partial success.
type QuestionPayload struct {
	Kind           string            `json:"kind"`
	Prompt         string            `json:"prompt"`
	Context        string            `json:"context"`
	ExpectedPoints []string          `json:"expected_points"`
	FollowUps      []FollowUpPayload `json:"follow_ups"`
}

// FollowUpPayload is a prepared follow-up rule attached to a question.
type FollowUpPayload struct {
	Condition string `json:"condition"`
	Prompt    string `json:"prompt"`
}

// EvaluationPayload is the provider's feedback for one answer.
type EvaluationPayload struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Rating       int      `json:"rating"`
}

// FollowUpSuggestion is the provider's reaction to an answer. An empty
// NextQuestion means the session should advance to the next main question.
type FollowUpSuggestion struct {
	Acknowledgement string `json:"acknowledgement"`
	NextQuestion    string `json:"next_question"`
}

// Validate checks the payload against the question schema.
func (p *QuestionPayload) Validate() error {
	if p == nil {
		return errors.New("question payload is nil")
	}
	if strings.TrimSpace(p.Prompt) == "" {
		return errors.New("question prompt is empty")
	}
	if !question.Kind(p.Kind).Known() {
		return fmt.Errorf("unknown question kind %q", p.Kind)
	}
	return nil
}

// ValidateQuestions rejects an empty list or any schema-invalid entry.
func ValidateQuestions(payloads []QuestionPayload) error {
	if len(payloads) == 0 {
		return errors.New("provider returned no questions")
	}
	for i := range payloads {
		if err := payloads[i].Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks the payload against the evaluation schema. Strengths and
// improvements must be non-empty so downstream evaluations are non-empty by
// construction.
func (p *EvaluationPayload) Validate() error {
	if p == nil {
		return errors.New("evaluation payload is nil")
	}
	if len(p.Strengths) == 0 {
		return errors.New("evaluation has no strengths")
	}
	if len(p.Improvements) == 0 {
		return errors.New("evaluation has no improvements")
	}
	if p.Rating < 1 || p.Rating > 5 {
		return fmt.Errorf("rating %d outside 1..5", p.Rating)
	}
	return nil
}

// Validate checks the suggestion against the follow-up schema.
func (s *FollowUpSuggestion) Validate() error {
	if s == nil {
		return errors.New("follow-up suggestion is nil")
	}
	if strings.TrimSpace(s.Acknowledgement) == "" {
		return errors.New("follow-up acknowledgement is empty")
	}
	return nil
}

// ToRecord converts a validated payload into an immutable question record.
func (p *QuestionPayload) ToRecord() question.Record {
	rules := make([]question.FollowUpRule, 0, len(p.FollowUps))
	for _, fu := range p.FollowUps {
		rules = append(rules, question.FollowUpRule{Condition: fu.Condition, Prompt: fu.Prompt})
	}

	return question.Record{
		ID:             question.NewID(),
		Kind:           question.Kind(p.Kind),
		Prompt:         strings.TrimSpace(p.Prompt),
		Context:        strings.TrimSpace(p.Context),
		ExpectedPoints: p.ExpectedPoints,
		FollowUpRules:  rules,
	}
}
