// Package voice serializes access to speech capture and playback so the two
// never overlap. The engine core talks only to the capability interfaces
// defined here; host bindings live at the edge.
package voice

import (
	"context"
	"errors"
)

// State is the current activity of the voice channel. Exactly one state is
// active at a time.
type State string

const (
	StateIdle      State = "idle"
	StateListening State = "listening"
	StateSpeaking  State = "speaking"
	StateThinking  State = "thinking"
)

var (
	// ErrChannelBusy is returned when capture or playback is requested while
	// another activity holds the channel.
	ErrChannelBusy = errors.New("voice channel is busy")
	// ErrCaptureUnavailable is returned when the host refuses speech capture.
	// It is retryable; the session continues in text mode.
	ErrCaptureUnavailable = errors.New("speech capture unavailable")
	// ErrChannelClosed is returned after the coordinator has been torn down.
	ErrChannelClosed = errors.New("voice channel is closed")
)

// SpeechInput captures speech and transcribes it.
type SpeechInput interface {
	// Start begins capturing. It returns an error when the host denies the
	// capture permission or the device is unavailable.
	Start(ctx context.Context) error
	// Stop ends capturing and returns the final transcript.
	Stop() (string, error)
	// Cancel aborts capturing, discarding any transcript.
	Cancel()
}

// SpeechOutput plays synthesized audio for a prompt.
type SpeechOutput interface {
	// Speak starts playback of text and calls done exactly once when playback
	// finishes naturally. Starting a new playback cancels the previous one.
	Speak(ctx context.Context, text string, done func()) error
	// Cancel stops any in-flight playback. The done callback of a cancelled
	// playback is never invoked.
	Cancel()
}
