package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"quizvoice/internal/application"
)

const (
	DefaultEnergyThreshold = 500
	DefaultTrailingSilence = time.Second
	framesPerBuffer        = 1024
)

type utteranceConfig struct {
	SampleRate      int
	Threshold       int16
	TrailingSilence time.Duration
	Timeout         time.Duration
	PhraseLimit     time.Duration
}

func (c utteranceConfig) samplesFor(d time.Duration) int {
	return int(d.Seconds() * float64(c.SampleRate))
}

// captureUtterance pulls frames until someone speaks and then stops again.
// Quiet frames before speech count against Timeout; once speech starts the
// recording ends after TrailingSilence of quiet or PhraseLimit of audio.
// read returns io.EOF when the source is exhausted.
func captureUtterance(ctx context.Context, read func() ([]int16, error), cfg utteranceConfig) ([]int16, error) {
	timeoutSamples := cfg.samplesFor(cfg.Timeout)
	limitSamples := cfg.samplesFor(cfg.PhraseLimit)
	silenceSamples := cfg.samplesFor(cfg.TrailingSilence)

	var (
		recorded []int16
		waited   int
		quiet    int
		speaking bool
	)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		frame, err := read()
		if errors.Is(err, io.EOF) {
			if speaking {
				return recorded, nil
			}
			return nil, application.ErrListenTimeout
		}
		if err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}

		loud := isLoud(frame, cfg.Threshold)

		if !speaking {
			if !loud {
				waited += len(frame)
				if waited >= timeoutSamples {
					return nil, application.ErrListenTimeout
				}
				continue
			}
			speaking = true
		}

		recorded = append(recorded, frame...)
		if loud {
			quiet = 0
		} else {
			quiet += len(frame)
		}

		if len(recorded) >= limitSamples {
			return recorded[:limitSamples], nil
		}
		if quiet >= silenceSamples {
			return recorded, nil
		}
	}
}

func isLoud(frame []int16, threshold int16) bool {
	for _, sample := range frame {
		if sample > threshold || sample < -threshold {
			return true
		}
	}
	return false
}
