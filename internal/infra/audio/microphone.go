//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gordonklaus/portaudio"

	"quizvoice/internal/application"
)

type Microphone struct {
	cfg    MicrophoneConfig
	logger *slog.Logger
}

func NewMicrophone(cfg MicrophoneConfig, logger *slog.Logger) *Microphone {
	return &Microphone{cfg: cfg.withDefaults(), logger: logger}
}

// Open initializes portaudio and starts a mono input stream on the default
// device. Close on the returned source releases both.
func (m *Microphone) Open() (application.CaptureSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	buffer := make([]int16, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.cfg.SampleRate), len(buffer), buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("opening stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("starting stream: %w", err)
	}

	m.logger.Debug("microphone opened", "sampleRate", m.cfg.SampleRate)
	return &microphoneSource{stream: stream, buffer: buffer, cfg: m.cfg}, nil
}

type microphoneSource struct {
	stream *portaudio.Stream
	buffer []int16
	cfg    MicrophoneConfig
}

func (s *microphoneSource) Listen(ctx context.Context, timeout, phraseLimit time.Duration) ([]byte, error) {
	read := func() ([]int16, error) {
		if err := s.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
			return nil, err
		}
		frame := make([]int16, len(s.buffer))
		copy(frame, s.buffer)
		return frame, nil
	}

	samples, err := captureUtterance(ctx, read, utteranceConfig{
		SampleRate:      s.cfg.SampleRate,
		Threshold:       s.cfg.EnergyThreshold,
		TrailingSilence: s.cfg.TrailingSilence,
		Timeout:         timeout,
		PhraseLimit:     phraseLimit,
	})
	if err != nil {
		return nil, err
	}

	return EncodeWAV(samples, s.cfg.SampleRate), nil
}

func (s *microphoneSource) Close() error {
	return errors.Join(
		s.stream.Stop(),
		s.stream.Close(),
		portaudio.Terminate(),
	)
}
