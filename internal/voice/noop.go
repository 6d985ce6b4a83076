package voice

import (
	"context"
	"errors"
)

// Muted returns capabilities for hosts without audio hardware. Playback
// completes immediately and capture is always refused, keeping the session in
// text mode.
func Muted() (SpeechInput, SpeechOutput) {
	return mutedInput{}, mutedOutput{}
}

type mutedInput struct{}

func (mutedInput) Start(context.Context) error { return errors.New("no capture device") }
func (mutedInput) Stop() (string, error)       { return "", nil }
func (mutedInput) Cancel()                     {}

type mutedOutput struct{}

func (mutedOutput) Speak(_ context.Context, _ string, done func()) error {
	if done != nil {
		done()
	}
	return nil
}

func (mutedOutput) Cancel() {}
