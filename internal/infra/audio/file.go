package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"quizvoice/internal/application"
)

// FileMicrophone stands in for a microphone by picking up WAV files dropped
// into a directory, oldest name first. Handy on machines without audio input.
type FileMicrophone struct {
	dir          string
	pollInterval time.Duration

	mu        sync.Mutex
	processed map[string]bool
}

func NewFileMicrophone(dir string) *FileMicrophone {
	return &FileMicrophone{
		dir:          dir,
		pollInterval: 100 * time.Millisecond,
		processed:    make(map[string]bool),
	}
}

func (f *FileMicrophone) Open() (application.CaptureSource, error) {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating audio dir: %w", err)
	}
	return &fileSource{mic: f}, nil
}

type fileSource struct {
	mic *FileMicrophone
}

func (s *fileSource) Close() error {
	return nil
}

func (s *fileSource) Listen(ctx context.Context, timeout, phraseLimit time.Duration) ([]byte, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(s.mic.pollInterval)
	defer ticker.Stop()

	for {
		audio, err := s.mic.checkForNewFile()
		if err != nil {
			return nil, err
		}
		if audio != nil {
			return trimToLimit(audio, phraseLimit), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, application.ErrListenTimeout
		case <-ticker.C:
		}
	}
}

func (f *FileMicrophone) checkForNewFile() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".wav" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(f.dir, name)
		if f.processed[path] {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true
		os.Rename(path, path+".processed")

		return data, nil
	}

	return nil, nil
}

// trimToLimit cuts mono recordings down to phraseLimit. Anything it cannot
// decode is passed through untouched for the recognizer to judge.
func trimToLimit(audio []byte, phraseLimit time.Duration) []byte {
	samples, format, err := DecodeWAV(audio)
	if err != nil || format.Channels != 1 {
		return audio
	}
	limit := int(phraseLimit.Seconds() * float64(format.SampleRate))
	if len(samples) <= limit {
		return audio
	}
	return EncodeWAV(samples[:limit], format.SampleRate)
}
