// Package engine owns the session state machine: it sequences questions,
// applies evaluations and decides when the interview is over. All mutation
// goes through typed actions applied by a single writer.
package engine

import (
	"github.com/okatenko/prepflow/internal/profile"
	"github.com/okatenko/prepflow/internal/question"
	"github.com/okatenko/prepflow/internal/report"
	"github.com/okatenko/prepflow/internal/scoring"
)

// Phase is the lifecycle stage of one session.
type Phase string

const (
	PhaseUpload    Phase = "upload"
	PhaseSetup     Phase = "setup"
	PhaseInterview Phase = "interview"
	PhaseFeedback  Phase = "feedback"
)

// DefaultAnswerWindowSeconds is the per-question response window.
const DefaultAnswerWindowSeconds = 30

// sessionState is the authoritative mutable state of one session. It is
// only ever touched by the engine's dispatcher, one action at a time.
type sessionState struct {
	Phase      Phase
	Profile    *profile.Profile
	TargetRole string

	// Questions grows only by follow-up insertion. Cursor is monotonically
	// non-decreasing and stays a valid index while the phase is Interview.
	Questions   []question.Record
	Cursor      int
	Evaluations []question.Evaluation

	VoiceMode bool
	Thinking  bool

	TimeRemaining int
	Transcript    string

	LastMetrics         scoring.Metrics
	LastAcknowledgement string

	Report *report.Summary
}

func newSessionState(answerWindow int) *sessionState {
	return &sessionState{
		Phase:         PhaseUpload,
		TimeRemaining: answerWindow,
	}
}

// LiveMetrics is the per-question view surfaced to the presentation layer.
type LiveMetrics struct {
	Clarity        int
	Relevance      int
	Confidence     int
	WordsPerMinute float64
	TimeRemaining  int
}

// Snapshot is a read-only copy of the session handed to the presentation
// layer. It never aliases engine-internal slices.
type Snapshot struct {
	Phase      Phase
	VoiceMode  bool
	Thinking   bool
	TargetRole string

	QuestionCount    int
	Cursor           int
	CurrentQuestion  *question.Record
	ProgressFraction float64

	LiveMetrics         LiveMetrics
	LastAcknowledgement string
	Evaluations         []question.Evaluation

	// FinalReport is available only in the Feedback phase.
	FinalReport *report.Summary
}

func (s *sessionState) snapshot() Snapshot {
	snap := Snapshot{
		Phase:               s.Phase,
		VoiceMode:           s.VoiceMode,
		Thinking:            s.Thinking,
		TargetRole:          s.TargetRole,
		QuestionCount:       len(s.Questions),
		Cursor:              s.Cursor,
		LastAcknowledgement: s.LastAcknowledgement,
		LiveMetrics: LiveMetrics{
			Clarity:        s.LastMetrics.Clarity,
			Relevance:      s.LastMetrics.Relevance,
			Confidence:     s.LastMetrics.Confidence,
			WordsPerMinute: s.LastMetrics.WordsPerMinute,
			TimeRemaining:  s.TimeRemaining,
		},
		Evaluations: append([]question.Evaluation(nil), s.Evaluations...),
	}

	if len(s.Questions) > 0 {
		snap.ProgressFraction = float64(s.Cursor) / float64(len(s.Questions))
	}

	if s.Phase == PhaseInterview && s.Cursor < len(s.Questions) {
		current := s.Questions[s.Cursor]
		snap.CurrentQuestion = &current
	}

	if s.Phase == PhaseFeedback {
		snap.FinalReport = s.Report
	}

	return snap
}
