//go:build !portaudio
// +build !portaudio

package audio

import (
	"fmt"
	"log/slog"

	"quizvoice/internal/application"
)

// Microphone stub when portaudio is not available
type Microphone struct {
	logger *slog.Logger
}

func NewMicrophone(_ MicrophoneConfig, logger *slog.Logger) *Microphone {
	return &Microphone{logger: logger}
}

func (m *Microphone) Open() (application.CaptureSource, error) {
	return nil, fmt.Errorf("microphone not available: rebuild with -tags portaudio")
}
