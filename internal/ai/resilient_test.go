package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/okatenko/prepflow/internal/profile"
	"github.com/okatenko/prepflow/internal/question"
)

// failingProvider simulates a provider that is unreachable or keeps
// returning schema-invalid data.
type failingProvider struct {
	calls int
}

var errProviderDown = errors.New("provider unreachable")

func (f *failingProvider) ParseProfile(context.Context, string) (*profile.Profile, error) {
	f.calls++
	return nil, errProviderDown
}

func (f *failingProvider) GenerateQuestions(context.Context, *profile.Profile, string) ([]QuestionPayload, error) {
	f.calls++
	return nil, errProviderDown
}

func (f *failingProvider) GenerateEvaluation(context.Context, question.Record, string) (*EvaluationPayload, error) {
	f.calls++
	return nil, errProviderDown
}

func (f *failingProvider) GenerateFollowUp(context.Context, question.Record, string) (*FollowUpSuggestion, error) {
	f.calls++
	return nil, errProviderDown
}

func TestResilientQuestionsFallback(t *testing.T) {
	caller := NewResilientCaller(&failingProvider{}, zap.NewNop())

	records := caller.GenerateQuestions(context.Background(), &profile.Profile{Name: "A"}, "Senior Engineer")

	if len(records) != 5 {
		t.Fatalf("expected 5 canonical fallback questions, got %d", len(records))
	}
	if records[0].Kind != question.KindIntroduction {
		t.Fatalf("expected introduction opener, got %s", records[0].Kind)
	}
	if records[len(records)-1].Kind != question.KindClosing {
		t.Fatalf("expected closing question last, got %s", records[len(records)-1].Kind)
	}
	for i, rec := range records {
		if rec.ID == "" || rec.Prompt == "" || len(rec.ExpectedPoints) == 0 {
			t.Fatalf("fallback question %d fails downstream schema: %+v", i, rec)
		}
	}
}

func TestResilientEvaluationFallback(t *testing.T) {
	caller := NewResilientCaller(&failingProvider{}, zap.NewNop())

	payload := caller.GenerateEvaluation(context.Background(), question.Record{ID: "q1"}, "answer")

	if err := payload.Validate(); err != nil {
		t.Fatalf("fallback evaluation fails its own schema: %v", err)
	}
	if payload.Rating != 3 {
		t.Fatalf("expected neutral rating 3, got %d", payload.Rating)
	}
	if payload.Strengths[0] != "Good attempt at answering the question" {
		t.Fatalf("unexpected fallback strengths: %v", payload.Strengths)
	}
	if payload.Improvements[0] != "Consider providing more detailed examples" {
		t.Fatalf("unexpected fallback improvements: %v", payload.Improvements)
	}
}

func TestResilientFollowUpFallback(t *testing.T) {
	caller := NewResilientCaller(&failingProvider{}, zap.NewNop())

	suggestion := caller.GenerateFollowUp(context.Background(), question.Record{ID: "q1"}, "answer")

	if err := suggestion.Validate(); err != nil {
		t.Fatalf("fallback follow-up fails its own schema: %v", err)
	}
	if suggestion.NextQuestion != "" {
		t.Fatalf("fallback must not force a next question, got %q", suggestion.NextQuestion)
	}
}

func TestResilientParseProfileFallback(t *testing.T) {
	caller := NewResilientCaller(&failingProvider{}, zap.NewNop())

	text := strings.Repeat("experienced engineer ", 10)
	p, err := caller.ParseProfile(context.Background(), text)
	if err != nil {
		t.Fatalf("remote failure must not surface: %v", err)
	}
	if p == nil || p.Name == "" {
		t.Fatalf("expected usable fallback profile, got %+v", p)
	}
}

func TestResilientParseProfileRejectsShortText(t *testing.T) {
	provider := &failingProvider{}
	caller := NewResilientCaller(provider, zap.NewNop())

	_, err := caller.ParseProfile(context.Background(), "too short")
	if !errors.Is(err, profile.ErrTextTooShort) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Validation must reject before any remote call is made.
	if provider.calls != 0 {
		t.Fatalf("expected no remote calls, got %d", provider.calls)
	}
}

func TestResilientPassesThroughHealthyProvider(t *testing.T) {
	caller := NewResilientCaller(NewOffline(), zap.NewNop())

	records := caller.GenerateQuestions(context.Background(), nil, "")
	if len(records) != 5 {
		t.Fatalf("expected offline provider question set, got %d", len(records))
	}

	payload := caller.GenerateEvaluation(context.Background(), question.Record{}, "x")
	if err := payload.Validate(); err != nil {
		t.Fatalf("offline evaluation invalid: %v", err)
	}
}
