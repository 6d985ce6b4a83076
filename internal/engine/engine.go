package engine

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/okatenko/prepflow/internal/ai"
	"github.com/okatenko/prepflow/internal/logger"
	"github.com/okatenko/prepflow/internal/profile"
	"github.com/okatenko/prepflow/internal/question"
	"github.com/okatenko/prepflow/internal/scoring"
	"github.com/okatenko/prepflow/internal/voice"
)

var (
	// ErrNotInterviewing is returned for answer commands outside the
	// Interview phase.
	ErrNotInterviewing = errors.New("no interview in progress")
	// ErrSessionInProgress is returned when a start command arrives while
	// an interview is already running.
	ErrSessionInProgress = errors.New("session is already in progress")
	// ErrEvaluationPending is returned when an answer arrives while the
	// previous one is still being evaluated.
	ErrEvaluationPending = errors.New("previous answer is still being evaluated")
	// ErrEmptyAnswer rejects a manual submission without any text.
	ErrEmptyAnswer = errors.New("answer text is empty")
	// ErrSessionFinished is returned when starting over a finished session
	// without restarting it first.
	ErrSessionFinished = errors.New("session is finished, restart to begin again")
	// ErrVoiceModeOff is returned for listening commands while voice mode is
	// disabled.
	ErrVoiceModeOff = errors.New("voice mode is disabled")
)

// Engine runs one assessment session end to end. All state mutations pass
// through its internal dispatcher, one logical mutation at a time; readers
// get consistent snapshots and never observe partial writes.
type Engine struct {
	mu    sync.Mutex
	state *sessionState

	// generation is bumped on every restart and teardown. A remote result
	// that resolves afterwards compares generations and is discarded.
	generation uint64
	closed     bool

	caller       *ai.ResilientCaller
	voice        *voice.Coordinator
	logger       *zap.Logger
	answerWindow int
}

// New creates an engine in the Upload phase.
func New(caller *ai.ResilientCaller, coordinator *voice.Coordinator, log *zap.Logger) *Engine {
	return &Engine{
		state:        newSessionState(DefaultAnswerWindowSeconds),
		caller:       caller,
		voice:        coordinator,
		logger:       logger.WithFields(log),
		answerWindow: DefaultAnswerWindowSeconds,
	}
}

// Snapshot returns a read-only copy of the session state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.snapshot()
}

// LoadProfileText parses raw profile text into a structured profile and
// moves the session to Setup. Only validation errors surface; provider
// failures are compensated inside the resilient caller.
func (e *Engine) LoadProfileText(ctx context.Context, text string) error {
	e.mu.Lock()
	if e.state.Phase != PhaseUpload {
		e.mu.Unlock()
		return ErrSessionFinished
	}
	gen := e.generation
	e.mu.Unlock()

	p, err := e.caller.ParseProfile(ctx, text)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return nil
	}
	e.applyLocked(action{kind: actionProfileLoaded, profile: p})
	return nil
}

// SkipUpload moves the session to Setup without a profile. The profile is
// optional; questions degrade gracefully without one.
func (e *Engine) SkipUpload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Phase == PhaseUpload {
		e.applyLocked(action{kind: actionProfileLoaded, profile: e.state.Profile})
	}
}

// StartSession generates the question list and opens the Interview phase.
// Generation failures fall back to the canonical question set, so the
// transition always succeeds once the session is in Upload or Setup.
func (e *Engine) StartSession(ctx context.Context, p *profile.Profile, targetRole string) error {
	e.mu.Lock()
	switch e.state.Phase {
	case PhaseUpload, PhaseSetup:
	case PhaseInterview:
		e.mu.Unlock()
		return ErrSessionInProgress
	default:
		e.mu.Unlock()
		return ErrSessionFinished
	}
	if p == nil {
		p = e.state.Profile
	}
	if targetRole == "" {
		targetRole = e.state.TargetRole
	}
	gen := e.generation
	e.mu.Unlock()

	questions := normalizeOpener(e.caller.GenerateQuestions(ctx, p, targetRole))

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return nil
	}
	e.applyLocked(action{
		kind:         actionInterviewStarted,
		profile:      p,
		targetRole:   targetRole,
		questions:    questions,
		answerWindow: e.answerWindow,
	})
	e.mu.Unlock()

	e.speakCurrent(ctx)
	return nil
}

// SubmitAnswer evaluates the current question's answer and advances the
// session. Empty answers are rejected; use the timer for forced submission.
func (e *Engine) SubmitAnswer(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyAnswer
	}
	return e.submit(ctx, text)
}

// Tick advances the per-question countdown by one second. When the window
// reaches zero the current transcript is submitted as-is, so the session
// never stalls on a silent candidate.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	if e.state.Phase != PhaseInterview || e.state.Thinking {
		e.mu.Unlock()
		return
	}
	e.applyLocked(action{kind: actionTimerTicked})
	expired := e.state.Phase == PhaseInterview && e.state.TimeRemaining <= 0
	transcript := e.state.Transcript
	e.mu.Unlock()

	if expired {
		if err := e.submit(ctx, transcript); err != nil {
			e.logger.Warn("timeout auto-submit rejected", zap.Error(err))
		}
	}
}

// submit runs the evaluate/follow-up/advance sequence for the current
// question. The evaluation is fully produced, fallback included, before the
// cursor moves.
func (e *Engine) submit(ctx context.Context, text string) error {
	e.mu.Lock()
	if e.state.Phase != PhaseInterview {
		e.mu.Unlock()
		return ErrNotInterviewing
	}
	if e.state.Thinking {
		e.mu.Unlock()
		return ErrEvaluationPending
	}
	q := e.state.Questions[e.state.Cursor]
	elapsed := e.answerWindow - e.state.TimeRemaining
	gen := e.generation
	e.applyLocked(action{kind: actionAnswerPending})
	e.mu.Unlock()

	e.voice.BeginThinking()
	feedback := e.caller.GenerateEvaluation(ctx, q, text)
	suggestion := e.caller.GenerateFollowUp(ctx, q, text)
	e.voice.EndThinking()

	e.mu.Lock()
	if gen != e.generation {
		// The session was restarted or torn down while the remote calls
		// were in flight. Drop the late result.
		e.mu.Unlock()
		return nil
	}

	metrics := scoring.Score(q, text, elapsed)
	eval := question.Evaluation{
		QuestionID:   q.ID,
		Strengths:    feedback.Strengths,
		Improvements: feedback.Improvements,
		Rating:       feedback.Rating,
		Clarity:      metrics.Clarity,
		Relevance:    metrics.Relevance,
		Confidence:   metrics.Confidence,
	}
	e.applyLocked(action{
		kind:            actionEvaluationApplied,
		evaluation:      &eval,
		metrics:         metrics,
		acknowledgement: suggestion.Acknowledgement,
	})

	next := strings.TrimSpace(suggestion.NextQuestion)
	if next != "" && !q.FollowUp {
		// At most one follow-up per main question. A follow-up answer never
		// spawns another follow-up, however insistent the provider is.
		followUp := question.Record{
			ID:             question.NewID(),
			Kind:           q.Kind,
			Prompt:         next,
			Context:        "Follow-up to the previous answer.",
			ExpectedPoints: q.ExpectedPoints,
			FollowUp:       true,
			ParentID:       q.ID,
		}
		e.applyLocked(action{kind: actionFollowUpInserted, followUp: &followUp, answerWindow: e.answerWindow})
	} else {
		e.applyLocked(action{kind: actionAdvanced, answerWindow: e.answerWindow})
	}

	finished := e.state.Phase == PhaseFeedback
	answered := len(e.state.Evaluations)
	e.mu.Unlock()

	if finished {
		e.logger.Info("interview finished", zap.Int("questions_answered", answered))
	} else {
		e.speakCurrent(ctx)
	}
	return nil
}

// ToggleVoiceMode flips voice mode and returns the new value.
func (e *Engine) ToggleVoiceMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyLocked(action{kind: actionVoiceToggled})
	return e.state.VoiceMode
}

// StartListening begins speech capture for the current answer.
func (e *Engine) StartListening(ctx context.Context) error {
	e.mu.Lock()
	if !e.state.VoiceMode {
		e.mu.Unlock()
		return ErrVoiceModeOff
	}
	e.mu.Unlock()

	return e.voice.StartListening(ctx)
}

// StopListening ends capture and stores the transcript as the draft answer.
func (e *Engine) StopListening() (string, error) {
	text, err := e.voice.StopListening()
	if err != nil {
		return "", err
	}

	e.UpdateTranscript(text)
	return text, nil
}

// UpdateTranscript replaces the draft answer, e.g. with a partial capture
// result or typed text. The draft is what a timeout submits.
func (e *Engine) UpdateTranscript(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Phase != PhaseInterview || e.state.Thinking {
		return
	}
	e.applyLocked(action{kind: actionTranscriptUpdated, transcript: text})
}

// RestartSession discards the session and returns to Upload with a freshly
// allocated state. Results of remote calls still in flight are dropped when
// they resolve.
func (e *Engine) RestartSession() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

// Close tears the engine down, cancelling any in-flight voice activity.
// In-flight remote calls are not cancelled; their results are discarded.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.generation++
	e.mu.Unlock()

	e.voice.Close()
}

func (e *Engine) applyLocked(a action) {
	if err := reduce(e.state, a); err != nil {
		// Invariant violations are fatal to the current session only. The
		// session is reset rather than crashing the process.
		e.logger.Error("session invariant violated, resetting session",
			zap.String("action", a.kind.String()),
			zap.Error(err),
		)
		e.resetLocked()
	}
}

func (e *Engine) resetLocked() {
	e.generation++
	e.state = newSessionState(e.answerWindow)
	e.voice.Reset()
}

// speakCurrent reads the current question aloud when voice mode is on. The
// coordinator's per-question guard makes repeat calls harmless.
func (e *Engine) speakCurrent(ctx context.Context) {
	e.mu.Lock()
	if e.state.Phase != PhaseInterview || !e.state.VoiceMode || e.state.Cursor >= len(e.state.Questions) {
		e.mu.Unlock()
		return
	}
	q := e.state.Questions[e.state.Cursor]
	e.mu.Unlock()

	if err := e.voice.SpeakQuestion(ctx, q.ID, q.Prompt); err != nil {
		e.logger.Debug("question playback skipped", zap.String("question_id", q.ID), zap.Error(err))
	}
}

// normalizeOpener guarantees a deterministic session opener: the first
// question is always an introduction, whatever the provider returned.
func normalizeOpener(questions []question.Record) []question.Record {
	if len(questions) == 0 {
		return ai.FallbackQuestions()
	}
	if questions[0].Kind != question.KindIntroduction {
		return append([]question.Record{question.CanonicalIntroduction()}, questions...)
	}
	return questions
}
