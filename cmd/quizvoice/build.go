package main

import (
	"log/slog"
	"time"

	"quizvoice/config"
	"quizvoice/internal/application"
	"quizvoice/internal/domain"
	"quizvoice/internal/infra/audio"
	"quizvoice/internal/infra/openai"
)

func buildManager(cfg *config.Config, ui application.UI, logger *slog.Logger) *application.AudioManager {
	policy, err := domain.ParseRecognitionFailurePolicy(cfg.Audio.RecognitionFailure)
	if err != nil {
		logger.Warn("invalid recognition failure policy, using default", "error", err)
		policy = domain.FallbackToText
	}

	managerCfg := application.ManagerConfig{
		TempDir:            cfg.Audio.TempDir,
		ListenTimeout:      parseDuration(logger, "audio.listen_timeout", cfg.Audio.ListenTimeout, application.DefaultListenTimeout),
		PhraseLimit:        parseDuration(logger, "audio.phrase_limit", cfg.Audio.PhraseLimit, application.DefaultPhraseLimit),
		PollInterval:       parseDuration(logger, "audio.poll_interval", cfg.Audio.PollInterval, application.DefaultPollInterval),
		RecognitionFailure: policy,
	}

	var (
		synth      application.Synthesizer
		recognizer application.Recognizer
	)
	if cfg.OpenAI.APIKey != "" {
		baseURL := cfg.OpenAI.BaseURL
		if baseURL == "" {
			baseURL = openai.DefaultBaseURL
		}
		synth = openai.NewSpeechClientWithURL(cfg.OpenAI.APIKey, cfg.OpenAI.TTSModel, cfg.OpenAI.Voice, baseURL)
		recognizer = openai.NewWhisperClientWithURL(cfg.OpenAI.APIKey, cfg.OpenAI.STTModel, cfg.OpenAI.Language, baseURL)
	} else {
		logger.Warn("openai.api_key not set, speech services disabled")
	}

	mic := createMicrophone(cfg.Audio, logger)
	if mic == nil {
		managerCfg.SkipMicrophoneProbe = true
	}

	return application.NewAudioManager(
		synth,
		recognizer,
		audio.NewSpeaker(logger),
		mic,
		ui,
		managerCfg,
		logger,
	)
}

func createMicrophone(cfg config.AudioConfig, logger *slog.Logger) application.Microphone {
	switch cfg.Source {
	case "microphone":
		return audio.NewMicrophone(audio.MicrophoneConfig{
			SampleRate:      cfg.SampleRate,
			EnergyThreshold: int16(cfg.EnergyThreshold),
		}, logger)
	case "file":
		return audio.NewFileMicrophone(cfg.FileDir)
	case "none":
		return nil
	default:
		logger.Warn("unknown audio source, answers will be typed", "source", cfg.Source)
		return nil
	}
}

func parseDuration(logger *slog.Logger, name, value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger.Warn("invalid duration, using default", "setting", name, "value", value, "default", def)
		return def
	}
	return d
}
