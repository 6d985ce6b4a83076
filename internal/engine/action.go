package engine

import (
	"fmt"

	"github.com/okatenko/prepflow/internal/profile"
	"github.com/okatenko/prepflow/internal/question"
	"github.com/okatenko/prepflow/internal/report"
	"github.com/okatenko/prepflow/internal/scoring"
)

// actionKind enumerates every way the session state may change.
type actionKind int

const (
	actionProfileLoaded actionKind = iota
	actionInterviewStarted
	actionTimerTicked
	actionAnswerPending
	actionEvaluationApplied
	actionFollowUpInserted
	actionAdvanced
	actionVoiceToggled
	actionTranscriptUpdated
)

func (k actionKind) String() string {
	switch k {
	case actionProfileLoaded:
		return "profile_loaded"
	case actionInterviewStarted:
		return "interview_started"
	case actionTimerTicked:
		return "timer_ticked"
	case actionAnswerPending:
		return "answer_pending"
	case actionEvaluationApplied:
		return "evaluation_applied"
	case actionFollowUpInserted:
		return "follow_up_inserted"
	case actionAdvanced:
		return "advanced"
	case actionVoiceToggled:
		return "voice_toggled"
	case actionTranscriptUpdated:
		return "transcript_updated"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// action is one logical state mutation. Fields beyond kind are payloads for
// the kinds that need them.
type action struct {
	kind actionKind

	profile    *profile.Profile
	targetRole string

	questions []question.Record

	evaluation      *question.Evaluation
	metrics         scoring.Metrics
	acknowledgement string

	followUp *question.Record

	transcript string

	answerWindow int
}

// reduce applies one action to the state. It is a pure transition function:
// given the same state and action sequence it always produces the same
// result, which makes sessions replayable in tests. A returned error marks
// an internal invariant violation; the caller resets the session.
func reduce(s *sessionState, a action) error {
	switch a.kind {
	case actionProfileLoaded:
		if s.Phase != PhaseUpload && s.Phase != PhaseSetup {
			return fmt.Errorf("cannot load profile in phase %s", s.Phase)
		}
		s.Profile = a.profile
		if a.targetRole != "" {
			s.TargetRole = a.targetRole
		}
		s.Phase = PhaseSetup
		return nil

	case actionInterviewStarted:
		if s.Phase != PhaseUpload && s.Phase != PhaseSetup {
			return fmt.Errorf("cannot start interview in phase %s", s.Phase)
		}
		if len(a.questions) == 0 {
			return fmt.Errorf("cannot start interview with no questions")
		}
		if a.profile != nil {
			s.Profile = a.profile
		}
		if a.targetRole != "" {
			s.TargetRole = a.targetRole
		}
		s.Questions = a.questions
		s.Cursor = 0
		s.Evaluations = nil
		s.Phase = PhaseInterview
		s.TimeRemaining = a.answerWindow
		s.Transcript = ""
		return nil

	case actionTimerTicked:
		if s.Phase != PhaseInterview || s.Thinking {
			return nil
		}
		if s.TimeRemaining > 0 {
			s.TimeRemaining--
		}
		return nil

	case actionAnswerPending:
		if err := checkCursor(s); err != nil {
			return err
		}
		// The thinking flag also pauses the countdown, so a timeout
		// auto-submit can never race a manual submit for the same question.
		s.Thinking = true
		return nil

	case actionEvaluationApplied:
		if err := checkCursor(s); err != nil {
			return err
		}
		if a.evaluation == nil {
			return fmt.Errorf("evaluation payload missing")
		}
		s.Evaluations = append(s.Evaluations, *a.evaluation)
		s.LastMetrics = a.metrics
		s.LastAcknowledgement = a.acknowledgement
		s.Thinking = false
		return nil

	case actionFollowUpInserted:
		if err := checkCursor(s); err != nil {
			return err
		}
		if a.followUp == nil {
			return fmt.Errorf("follow-up record missing")
		}
		// The follow-up goes right after the question that produced it, so
		// the remaining main queue keeps its order.
		at := s.Cursor + 1
		s.Questions = append(s.Questions[:at], append([]question.Record{*a.followUp}, s.Questions[at:]...)...)
		s.Cursor = at
		s.TimeRemaining = a.answerWindow
		s.Transcript = ""
		return nil

	case actionAdvanced:
		if err := checkCursor(s); err != nil {
			return err
		}
		s.Cursor++
		s.Transcript = ""
		if s.Cursor == len(s.Questions) {
			s.Phase = PhaseFeedback
			s.Report = report.Build(s.Questions, s.Evaluations)
			return nil
		}
		s.TimeRemaining = a.answerWindow
		return nil

	case actionVoiceToggled:
		s.VoiceMode = !s.VoiceMode
		return nil

	case actionTranscriptUpdated:
		s.Transcript = a.transcript
		return nil

	default:
		return fmt.Errorf("unknown action %s", a.kind)
	}
}

func checkCursor(s *sessionState) error {
	if s.Phase != PhaseInterview {
		return fmt.Errorf("no interview in progress (phase %s)", s.Phase)
	}
	if s.Cursor < 0 || s.Cursor >= len(s.Questions) {
		return fmt.Errorf("cursor %d out of range for %d questions", s.Cursor, len(s.Questions))
	}
	return nil
}
