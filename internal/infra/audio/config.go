package audio

import (
	"time"

	"quizvoice/internal/domain"
)

type MicrophoneConfig struct {
	SampleRate      int
	EnergyThreshold int16
	TrailingSilence time.Duration
}

func (c MicrophoneConfig) withDefaults() MicrophoneConfig {
	if c.SampleRate <= 0 {
		c.SampleRate = domain.DefaultAudioFormat().SampleRate
	}
	if c.EnergyThreshold <= 0 {
		c.EnergyThreshold = DefaultEnergyThreshold
	}
	if c.TrailingSilence <= 0 {
		c.TrailingSilence = DefaultTrailingSilence
	}
	return c
}
