package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"quizvoice/internal/domain"
)

const (
	DefaultListenTimeout = 10 * time.Second
	DefaultPhraseLimit   = 30 * time.Second
	DefaultPollInterval  = 100 * time.Millisecond
)

const (
	noticePlaybackUnavailable = "Audio playback not available. Question text is displayed above."
	noticeListening           = "Listening... Speak now!"
	noticeNoMicrophone        = "No microphone detected. Please type your answer below."
	noticeCaptureError        = "Error recording audio. Using text input instead."
	noticeNotUnderstood       = "Could not understand audio. Please try speaking again or use text input below."
	noticeServiceError        = "Could not request results from speech recognition service. Using text input instead."
	noticeNotUnderstoodFinal  = "Could not understand audio."
	noticeServiceErrorFinal   = "Could not request results from speech recognition service."
	textInputLabel            = "Type your answer here:"
)

type ManagerConfig struct {
	// TempDir holds synthesized speech files. Empty means os.TempDir().
	TempDir            string
	ListenTimeout      time.Duration
	PhraseLimit        time.Duration
	PollInterval       time.Duration
	RecognitionFailure domain.RecognitionFailurePolicy
	// SkipMicrophoneProbe leaves the microphone marked unavailable without
	// touching the device.
	SkipMicrophoneProbe bool
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		ListenTimeout:      DefaultListenTimeout,
		PhraseLimit:        DefaultPhraseLimit,
		PollInterval:       DefaultPollInterval,
		RecognitionFailure: domain.FallbackToText,
	}
}

// AudioManager speaks questions and collects spoken answers, dropping back to
// text whenever the audio hardware or the speech services let it down.
// Capability flags only ever go from available to unavailable.
type AudioManager struct {
	synth      Synthesizer
	recognizer Recognizer
	output     AudioOutput
	mic        Microphone
	ui         UI
	cfg        ManagerConfig
	logger     *slog.Logger

	mu           sync.Mutex
	availability domain.Availability
	awaitingText bool
}

func NewAudioManager(
	synth Synthesizer,
	recognizer Recognizer,
	output AudioOutput,
	mic Microphone,
	ui UI,
	cfg ManagerConfig,
	logger *slog.Logger,
) *AudioManager {
	if cfg.ListenTimeout <= 0 {
		cfg.ListenTimeout = DefaultListenTimeout
	}
	if cfg.PhraseLimit <= 0 {
		cfg.PhraseLimit = DefaultPhraseLimit
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.RecognitionFailure == "" {
		cfg.RecognitionFailure = domain.FallbackToText
	}
	if recognizer == nil {
		recognizer = &NoopRecognizer{}
	}
	if ui == nil {
		ui = &NoopUI{}
	}

	m := &AudioManager{
		synth:      synth,
		recognizer: recognizer,
		output:     output,
		mic:        mic,
		ui:         ui,
		cfg:        cfg,
		logger:     logger,
	}

	m.availability.AudioOutput = m.probeAudioOutput()
	if !cfg.SkipMicrophoneProbe {
		m.availability.Microphone = m.probeMicrophone()
	}

	logger.Info("audio manager ready",
		"audio_output", m.availability.AudioOutput,
		"microphone", m.availability.Microphone,
		"recognition_failure", cfg.RecognitionFailure,
	)

	return m
}

func (m *AudioManager) probeAudioOutput() bool {
	if m.output == nil {
		return false
	}
	if err := m.output.Init(); err != nil {
		m.logger.Warn("audio output probe failed", "error", err)
		return false
	}
	if err := m.output.Quit(); err != nil {
		m.logger.Warn("audio output probe failed", "error", err)
		return false
	}
	return true
}

func (m *AudioManager) probeMicrophone() bool {
	if m.mic == nil {
		return false
	}
	src, err := m.mic.Open()
	if err != nil {
		m.logger.Warn("microphone probe failed", "error", err)
		return false
	}
	if err := src.Close(); err != nil {
		m.logger.Warn("closing microphone after probe", "error", err)
	}
	return true
}

func (m *AudioManager) Availability() domain.Availability {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.availability
}

func (m *AudioManager) audioOutputAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.availability.AudioOutput
}

func (m *AudioManager) microphoneAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.availability.Microphone
}

func (m *AudioManager) disableAudioOutput(cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.availability.AudioOutput {
		m.logger.Warn("disabling audio output for this session", "error", cause)
	}
	m.availability.AudioOutput = false
}

// SynthesizeSpeech renders text as English speech into a new temporary file.
// The returned artifact belongs to the caller until passed to PlayAndDispose.
func (m *AudioManager) SynthesizeSpeech(ctx context.Context, text string) (domain.SpeechArtifact, error) {
	if strings.TrimSpace(text) == "" {
		return domain.SpeechArtifact{}, &SynthesisError{Text: text, Err: errors.New("empty text")}
	}
	if m.synth == nil {
		return domain.SpeechArtifact{}, &SynthesisError{Text: text, Err: errors.New("no synthesizer configured")}
	}

	audio, err := m.synth.Synthesize(ctx, text, domain.SpeechLanguage)
	if err != nil {
		return domain.SpeechArtifact{}, &SynthesisError{Text: text, Err: err}
	}
	if len(audio) == 0 {
		return domain.SpeechArtifact{}, &SynthesisError{Text: text, Err: errors.New("synthesizer returned no audio")}
	}

	path, err := writeTempAudio(m.cfg.TempDir, audio)
	if err != nil {
		return domain.SpeechArtifact{}, &SynthesisError{Text: text, Err: err}
	}

	m.logger.Debug("synthesized speech", "path", path, "bytes", len(audio))
	return domain.SpeechArtifact{Path: path}, nil
}

func writeTempAudio(dir string, audio []byte) (string, error) {
	f, err := os.CreateTemp(dir, "speech-*.wav")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(audio); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return path, nil
}

// PlayAndDispose plays the artifact and blocks until playback ends. The
// artifact file is removed on every path.
func (m *AudioManager) PlayAndDispose(artifact domain.SpeechArtifact) domain.PlaybackOutcome {
	defer m.dispose(artifact)

	if !m.audioOutputAvailable() {
		m.ui.NotifyWarning(noticePlaybackUnavailable)
		return domain.PlaybackSkipped
	}

	if err := m.play(artifact.Path); err != nil {
		m.disableAudioOutput(err)
		m.ui.NotifyWarning(noticePlaybackUnavailable)
		return domain.PlaybackFailed
	}

	return domain.PlaybackPlayed
}

func (m *AudioManager) play(path string) (err error) {
	if err := m.output.Init(); err != nil {
		return fmt.Errorf("initializing audio output: %w", err)
	}
	defer func() {
		if qerr := m.output.Quit(); qerr != nil && err == nil {
			err = fmt.Errorf("releasing audio output: %w", qerr)
		}
	}()

	if err := m.output.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	unloaded := false
	defer func() {
		if !unloaded {
			m.output.Unload()
		}
	}()

	if err := m.output.Play(); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()
	for m.output.IsBusy() {
		<-ticker.C
	}

	unloaded = true
	if err := m.output.Unload(); err != nil {
		return fmt.Errorf("unloading: %w", err)
	}
	return nil
}

func (m *AudioManager) dispose(artifact domain.SpeechArtifact) {
	if artifact.Path == "" {
		return
	}
	if err := os.Remove(artifact.Path); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("removing speech artifact", "path", artifact.Path, "error", err)
	}
}

// CaptureSpokenOrTypedAnswer runs one capture cycle. A Pending result means a
// typed answer was requested and the host should call again on its next cycle;
// until that answer arrives the microphone is not used again.
func (m *AudioManager) CaptureSpokenOrTypedAnswer(ctx context.Context) domain.AnswerResult {
	if m.isAwaitingText() {
		return m.textFallback()
	}

	if !m.microphoneAvailable() {
		m.ui.NotifyInfo(noticeNoMicrophone)
		return m.textFallback()
	}

	audio, err := m.listen(ctx)
	if err != nil {
		m.logger.Warn("capturing audio", "error", err)
		m.ui.NotifyError(noticeCaptureError)
		return m.textFallback()
	}

	text, err := m.recognizer.Recognize(ctx, audio)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrUnknownValue
	}
	if err != nil {
		return m.recognitionFailed(err)
	}

	m.logger.Info("recognized answer", "text", text)
	return domain.TextAnswer(text)
}

func (m *AudioManager) listen(ctx context.Context) ([]byte, error) {
	src, err := m.mic.Open()
	if err != nil {
		return nil, fmt.Errorf("opening microphone: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			m.logger.Warn("closing microphone", "error", err)
		}
	}()

	m.ui.NotifyInfo(noticeListening)

	audio, err := src.Listen(ctx, m.cfg.ListenTimeout, m.cfg.PhraseLimit)
	if err != nil {
		return nil, fmt.Errorf("listening: %w", err)
	}
	return audio, nil
}

func (m *AudioManager) recognitionFailed(err error) domain.AnswerResult {
	unknown := errors.Is(err, ErrUnknownValue)
	m.logger.Warn("recognition failed", "error", err, "unintelligible", unknown)

	if m.cfg.RecognitionFailure == domain.ReturnFailure {
		if unknown {
			m.ui.NotifyError(noticeNotUnderstoodFinal)
			return domain.FailedAnswer("speech not understood")
		}
		m.ui.NotifyError(noticeServiceErrorFinal)
		return domain.FailedAnswer("recognition service error")
	}

	if unknown {
		m.ui.NotifyError(noticeNotUnderstood)
	} else {
		m.ui.NotifyError(noticeServiceError)
	}
	return m.textFallback()
}

func (m *AudioManager) textFallback() domain.AnswerResult {
	m.ui.RequestInput(textInputLabel)

	text, ok := m.ui.PollSubmission()
	m.mu.Lock()
	m.awaitingText = !ok
	m.mu.Unlock()

	if !ok {
		return domain.PendingAnswer()
	}
	return domain.TextAnswer(text)
}

// CancelTextRequest drops a pending request for a typed answer so the next
// capture listens again.
func (m *AudioManager) CancelTextRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.awaitingText = false
}

func (m *AudioManager) isAwaitingText() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.awaitingText
}
