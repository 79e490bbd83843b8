//go:build !portaudio
// +build !portaudio

package audio

import (
	"errors"
	"log/slog"
)

var errNoOutput = errors.New("audio output not available: rebuild with -tags portaudio")

// Speaker stub when portaudio is not available
type Speaker struct {
	logger *slog.Logger
}

func NewSpeaker(logger *slog.Logger) *Speaker {
	return &Speaker{logger: logger}
}

func (s *Speaker) Init() error         { return errNoOutput }
func (s *Speaker) Load(_ string) error { return errNoOutput }
func (s *Speaker) Play() error         { return errNoOutput }
func (s *Speaker) IsBusy() bool        { return false }
func (s *Speaker) Unload() error       { return nil }
func (s *Speaker) Quit() error         { return nil }
