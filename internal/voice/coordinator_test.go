package voice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// fakeInput records capture lifecycle calls and can refuse to start.
type fakeInput struct {
	mu         sync.Mutex
	startErr   error
	transcript string
	started    int
	stopped    int
	cancelled  int
}

func (f *fakeInput) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started++
	return nil
}

func (f *fakeInput) Stop() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return f.transcript, nil
}

func (f *fakeInput) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
}

// fakeOutput keeps playback pending until finish is called.
type fakeOutput struct {
	mu        sync.Mutex
	spoken    []string
	done      func()
	cancelled int
}

func (f *fakeOutput) Speak(_ context.Context, text string, done func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	f.done = done
	return nil
}

func (f *fakeOutput) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
	f.done = nil
}

func (f *fakeOutput) finish() {
	f.mu.Lock()
	done := f.done
	f.done = nil
	f.mu.Unlock()
	if done != nil {
		done()
	}
}

func newTestCoordinator() (*Coordinator, *fakeInput, *fakeOutput) {
	in := &fakeInput{transcript: "captured"}
	out := &fakeOutput{}
	return NewCoordinator(in, out, zap.NewNop()), in, out
}

func TestSpeakQuestionOnlyOnce(t *testing.T) {
	c, _, out := newTestCoordinator()

	if err := c.SpeakQuestion(context.Background(), "q1", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out.finish()

	// A re-render of the same question must not replay it.
	if err := c.SpeakQuestion(context.Background(), "q1", "hello"); err != nil {
		t.Fatalf("unexpected error on repeat: %v", err)
	}

	if len(out.spoken) != 1 {
		t.Fatalf("expected single playback, got %d", len(out.spoken))
	}
}

func TestPlaybackCompletionFlipsReadyForInput(t *testing.T) {
	c, _, out := newTestCoordinator()

	if err := c.SpeakQuestion(context.Background(), "q1", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.ReadyForInput() {
		t.Fatalf("must not be ready while speaking")
	}

	out.finish()

	if c.State() != StateIdle {
		t.Fatalf("expected idle after playback, got %s", c.State())
	}
	if !c.ReadyForInput() {
		t.Fatalf("expected ready for input after playback completion")
	}
}

func TestListeningRejectedWhileSpeaking(t *testing.T) {
	c, _, out := newTestCoordinator()

	if err := c.SpeakQuestion(context.Background(), "q1", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.StartListening(context.Background()); !errors.Is(err, ErrChannelBusy) {
		t.Fatalf("expected ErrChannelBusy, got %v", err)
	}

	out.finish()

	if err := c.StartListening(context.Background()); err != nil {
		t.Fatalf("expected listening to start after playback, got %v", err)
	}
	if c.State() != StateListening {
		t.Fatalf("expected listening state, got %s", c.State())
	}
}

func TestCaptureRefusalFallsBackToIdle(t *testing.T) {
	c, in, _ := newTestCoordinator()
	in.startErr = errors.New("permission denied")

	err := c.StartListening(context.Background())
	if !errors.Is(err, ErrCaptureUnavailable) {
		t.Fatalf("expected ErrCaptureUnavailable, got %v", err)
	}

	if c.State() != StateIdle {
		t.Fatalf("expected fallback to idle, got %s", c.State())
	}

	// The error is retryable once the host grants permission.
	in.startErr = nil
	if err := c.StartListening(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestStopListeningReturnsTranscript(t *testing.T) {
	c, _, _ := newTestCoordinator()

	if err := c.StartListening(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, err := c.StopListening()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "captured" {
		t.Fatalf("unexpected transcript: %q", text)
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle after stop, got %s", c.State())
	}
}

func TestThinkingDisablesVoiceIO(t *testing.T) {
	c, _, _ := newTestCoordinator()

	c.BeginThinking()

	if err := c.StartListening(context.Background()); !errors.Is(err, ErrChannelBusy) {
		t.Fatalf("expected ErrChannelBusy while thinking, got %v", err)
	}
	if err := c.SpeakQuestion(context.Background(), "q1", "hi"); !errors.Is(err, ErrChannelBusy) {
		t.Fatalf("expected ErrChannelBusy while thinking, got %v", err)
	}

	c.EndThinking()

	if c.State() != StateIdle {
		t.Fatalf("expected idle after thinking, got %s", c.State())
	}
}

func TestCloseCancelsInFlightActivity(t *testing.T) {
	c, in, _ := newTestCoordinator()

	if err := c.StartListening(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Close()

	if in.cancelled != 1 {
		t.Fatalf("expected capture cancellation on close, got %d", in.cancelled)
	}
	if err := c.StartListening(context.Background()); !errors.Is(err, ErrChannelClosed) {
		t.Fatalf("expected ErrChannelClosed after close, got %v", err)
	}
}

func TestCloseCancelsPlayback(t *testing.T) {
	c, _, out := newTestCoordinator()

	if err := c.SpeakQuestion(context.Background(), "q1", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Close()

	if out.cancelled != 1 {
		t.Fatalf("expected playback cancellation on close, got %d", out.cancelled)
	}
}

func TestResetCancelsInFlightPlayback(t *testing.T) {
	c, _, out := newTestCoordinator()

	if err := c.SpeakQuestion(context.Background(), "q1", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Reset()

	if out.cancelled != 1 {
		t.Fatalf("expected playback cancellation on reset, got %d", out.cancelled)
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle after reset, got %s", c.State())
	}

	// A fresh session replays the same question ID from the start.
	if err := c.SpeakQuestion(context.Background(), "q1", "hello"); err != nil {
		t.Fatalf("unexpected error after reset: %v", err)
	}
	if len(out.spoken) != 2 {
		t.Fatalf("expected replay after reset, got %d playbacks", len(out.spoken))
	}
}

func TestResetCancelsCapture(t *testing.T) {
	c, in, _ := newTestCoordinator()

	if err := c.StartListening(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Reset()

	if in.cancelled != 1 {
		t.Fatalf("expected capture cancellation on reset, got %d", in.cancelled)
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle after reset, got %s", c.State())
	}
}

// Mutual exclusion holds under rapid scripted start/stop/teardown sequences.
func TestRapidSequencesKeepSingleActiveState(t *testing.T) {
	c, _, out := newTestCoordinator()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_ = c.SpeakQuestion(ctx, "q", "prompt")
		if err := c.StartListening(ctx); err == nil {
			if c.State() != StateListening {
				t.Fatalf("listening accepted but state is %s", c.State())
			}
			if _, err := c.StopListening(); err != nil {
				t.Fatalf("stop after start failed: %v", err)
			}
		}
		out.finish()
		c.StopSpeaking()

		if state := c.State(); state != StateIdle {
			t.Fatalf("iteration %d: expected idle between activities, got %s", i, state)
		}
	}

	c.Close()
	if c.State() != StateIdle {
		t.Fatalf("expected idle after teardown, got %s", c.State())
	}
}
