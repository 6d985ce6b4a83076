package engine

import (
	"reflect"
	"testing"

	"github.com/okatenko/prepflow/internal/question"
	"github.com/okatenko/prepflow/internal/scoring"
)

// The reducer is a pure transition function: replaying the same action
// sequence from the same initial state must reproduce the session exactly.
func TestReduceIsReplayable(t *testing.T) {
	t.Parallel()

	questions := []question.Record{
		{ID: "q1", Kind: question.KindIntroduction, Prompt: "Intro"},
		{ID: "q2", Kind: question.KindClosing, Prompt: "Closing"},
	}
	eval := question.Evaluation{
		QuestionID: "q1", Rating: 4,
		Strengths: []string{"good"}, Improvements: []string{"more"},
	}

	script := []action{
		{kind: actionProfileLoaded},
		{kind: actionInterviewStarted, questions: questions, answerWindow: 30},
		{kind: actionTimerTicked},
		{kind: actionTimerTicked},
		{kind: actionTranscriptUpdated, transcript: "draft"},
		{kind: actionAnswerPending},
		{kind: actionEvaluationApplied, evaluation: &eval, metrics: scoring.Metrics{Clarity: 75}, acknowledgement: "ok"},
		{kind: actionAdvanced, answerWindow: 30},
	}

	replay := func() *sessionState {
		s := newSessionState(30)
		for i, a := range script {
			if err := reduce(s, a); err != nil {
				t.Fatalf("action %d (%s): %v", i, a.kind, err)
			}
		}
		return s
	}

	first := replay()
	second := replay()

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("replay diverged:\nfirst:  %+v\nsecond: %+v", first, second)
	}

	if first.Cursor != 1 || len(first.Evaluations) != 1 {
		t.Fatalf("unexpected replayed state: cursor=%d evaluations=%d", first.Cursor, len(first.Evaluations))
	}
	if first.TimeRemaining != 30 {
		t.Fatalf("expected timer reset after advance, got %d", first.TimeRemaining)
	}
}

func TestReduceRejectsOutOfRangeCursor(t *testing.T) {
	t.Parallel()

	s := newSessionState(30)
	s.Phase = PhaseInterview
	s.Questions = []question.Record{{ID: "q1"}}
	s.Cursor = 5

	if err := reduce(s, action{kind: actionAnswerPending}); err == nil {
		t.Fatalf("expected invariant violation for out-of-range cursor")
	}
}

func TestReduceGuardsPhaseTransitions(t *testing.T) {
	t.Parallel()

	s := newSessionState(30)
	s.Phase = PhaseFeedback

	if err := reduce(s, action{kind: actionInterviewStarted, questions: []question.Record{{ID: "q"}}, answerWindow: 30}); err == nil {
		t.Fatalf("expected error starting interview from feedback phase")
	}

	if err := reduce(s, action{kind: actionInterviewStarted}); err == nil {
		t.Fatalf("expected error starting interview with no questions")
	}
}

func TestReduceCompletionBuildsReport(t *testing.T) {
	t.Parallel()

	s := newSessionState(30)
	s.Phase = PhaseInterview
	s.Questions = []question.Record{{ID: "q1", Prompt: "only"}}
	s.Cursor = 0
	s.Evaluations = []question.Evaluation{{QuestionID: "q1", Rating: 5, Strengths: []string{"s"}, Improvements: []string{"i"}}}

	if err := reduce(s, action{kind: actionAdvanced, answerWindow: 30}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Phase != PhaseFeedback {
		t.Fatalf("expected feedback phase, got %s", s.Phase)
	}
	if s.Report == nil || s.Report.OverallScore != 100 {
		t.Fatalf("expected report with perfect score, got %+v", s.Report)
	}
}
