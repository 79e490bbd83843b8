//go:build portaudio
// +build portaudio

package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	"quizvoice/internal/domain"
)

// Speaker plays WAV files on the default output device.
type Speaker struct {
	logger *slog.Logger

	mu      sync.Mutex
	samples []int16
	format  domain.AudioFormat
	stream  *portaudio.Stream
	done    chan struct{}
	busy    atomic.Bool
}

func NewSpeaker(logger *slog.Logger) *Speaker {
	return &Speaker{logger: logger}
}

func (s *Speaker) Init() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	if _, err := portaudio.DefaultOutputDevice(); err != nil {
		portaudio.Terminate()
		return fmt.Errorf("finding output device: %w", err)
	}
	return nil
}

func (s *Speaker) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading audio file: %w", err)
	}

	samples, format, err := DecodeWAV(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	if format.Channels < 1 {
		return fmt.Errorf("decoding %s: no channels", path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = samples
	s.format = format
	return nil
}

func (s *Speaker) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.samples == nil {
		return errors.New("nothing loaded")
	}

	buffer := make([]int16, framesPerBuffer*s.format.Channels)
	stream, err := portaudio.OpenDefaultStream(0, s.format.Channels, float64(s.format.SampleRate), framesPerBuffer, buffer)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("starting stream: %w", err)
	}

	s.stream = stream
	s.done = make(chan struct{})
	s.busy.Store(true)

	go s.write(stream, buffer, s.samples, s.done)
	return nil
}

func (s *Speaker) write(stream *portaudio.Stream, buffer, samples []int16, done chan struct{}) {
	defer close(done)
	defer s.busy.Store(false)

	for offset := 0; offset < len(samples); offset += len(buffer) {
		n := copy(buffer, samples[offset:])
		clear(buffer[n:])
		if err := stream.Write(); err != nil {
			s.logger.Warn("writing to output stream", "error", err)
			return
		}
	}

	// Stop drains queued buffers before returning.
	if err := stream.Stop(); err != nil {
		s.logger.Warn("stopping output stream", "error", err)
	}
}

func (s *Speaker) IsBusy() bool {
	return s.busy.Load()
}

// Unload stops any playback in progress and drops the loaded samples.
func (s *Speaker) Unload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.stream != nil {
		if s.busy.Load() {
			err = s.stream.Abort()
		}
		<-s.done
		err = errors.Join(err, s.stream.Close())
		s.stream = nil
	}
	s.samples = nil
	return err
}

func (s *Speaker) Quit() error {
	return portaudio.Terminate()
}
