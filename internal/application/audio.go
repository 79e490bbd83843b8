package application

import (
	"context"
	"time"
)

// AudioOutput is the playback subsystem. Init and Quit bracket every use;
// Load/Play/Unload operate on a single loaded file.
type AudioOutput interface {
	Init() error
	Load(path string) error
	Play() error
	IsBusy() bool
	Unload() error
	Quit() error
}

// Microphone hands out a CaptureSource that must be closed by the caller.
type Microphone interface {
	Open() (CaptureSource, error)
}

type CaptureSource interface {
	// Listen waits up to timeout for speech to start, then records until the
	// speaker pauses or phraseLimit elapses. It returns WAV encoded audio.
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) ([]byte, error)
	Close() error
}
