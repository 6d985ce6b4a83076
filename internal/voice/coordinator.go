package voice

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Coordinator is a small state machine guarding the speech capabilities.
// Entry into Listening or Speaking is accepted only from Idle, so capture and
// playback can never overlap.
type Coordinator struct {
	mu     sync.Mutex
	state  State
	closed bool

	input  SpeechInput
	output SpeechOutput
	logger *zap.Logger

	// spoken tracks question IDs already read aloud, so a re-surfaced
	// question is not played twice.
	spoken        map[string]struct{}
	readyForInput bool
}

// NewCoordinator creates an idle coordinator around the provided capabilities.
func NewCoordinator(input SpeechInput, output SpeechOutput, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Coordinator{
		state:  StateIdle,
		input:  input,
		output: output,
		logger: logger,
		spoken: make(map[string]struct{}),
	}
}

// State returns the currently active state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ReadyForInput reports whether the last playback completed, signalling the
// user may now answer.
func (c *Coordinator) ReadyForInput() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readyForInput
}

// SpeakQuestion reads the prompt of a question aloud exactly once. Repeat
// calls for the same question ID are ignored.
func (c *Coordinator) SpeakQuestion(ctx context.Context, questionID, prompt string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	if _, done := c.spoken[questionID]; done {
		c.mu.Unlock()
		return nil
	}
	if c.state != StateIdle {
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot speak while %s", ErrChannelBusy, c.state)
	}

	c.spoken[questionID] = struct{}{}
	c.state = StateSpeaking
	c.readyForInput = false
	c.mu.Unlock()

	err := c.output.Speak(ctx, prompt, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state == StateSpeaking {
			c.state = StateIdle
			c.readyForInput = true
		}
	})
	if err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		c.logger.Warn("speech playback failed", zap.String("question_id", questionID), zap.Error(err))
		return err
	}

	return nil
}

// StopSpeaking cancels in-flight playback, if any.
func (c *Coordinator) StopSpeaking() {
	c.mu.Lock()
	speaking := c.state == StateSpeaking
	if speaking {
		c.state = StateIdle
	}
	c.mu.Unlock()

	if speaking {
		c.output.Cancel()
	}
}

// StartListening begins speech capture. It is accepted only while Idle; a
// host permission failure surfaces as a retryable ErrCaptureUnavailable and
// the coordinator falls back to Idle.
func (c *Coordinator) StartListening(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	if c.state != StateIdle {
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot listen while %s", ErrChannelBusy, c.state)
	}
	c.state = StateListening
	c.mu.Unlock()

	if err := c.input.Start(ctx); err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		c.logger.Warn("speech capture refused", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}

	return nil
}

// StopListening ends capture and returns the transcript.
func (c *Coordinator) StopListening() (string, error) {
	c.mu.Lock()
	if c.state != StateListening {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: not listening", ErrChannelBusy)
	}
	c.state = StateIdle
	c.mu.Unlock()

	return c.input.Stop()
}

// BeginThinking disables voice I/O while a remote response is awaited. Any
// activity in flight is cancelled first.
func (c *Coordinator) BeginThinking() {
	c.cancelActivityLocked(StateThinking)
}

// EndThinking returns the channel to Idle after the remote response settled.
func (c *Coordinator) EndThinking() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateThinking {
		c.state = StateIdle
	}
}

// Reset cancels any in-flight activity and clears the per-question playback
// history for a fresh session.
func (c *Coordinator) Reset() {
	c.cancelActivityLocked(StateIdle)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.spoken = make(map[string]struct{})
	c.readyForInput = false
}

// Close unconditionally cancels any in-flight capture or playback. The
// coordinator rejects further activity afterwards.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	prev := c.state
	c.state = StateIdle
	c.mu.Unlock()

	switch prev {
	case StateListening:
		c.input.Cancel()
	case StateSpeaking:
		c.output.Cancel()
	}
}

func (c *Coordinator) cancelActivityLocked(next State) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	prev := c.state
	c.state = next
	c.mu.Unlock()

	switch prev {
	case StateListening:
		c.input.Cancel()
	case StateSpeaking:
		c.output.Cancel()
	}
}
