package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"quizvoice/internal/application"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSynth struct {
	audio     []byte
	err       error
	languages []string
}

func (f *fakeSynth) Synthesize(_ context.Context, _ string, language string) ([]byte, error) {
	f.languages = append(f.languages, language)
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

type fakeRecognizer struct {
	text  string
	err   error
	calls int
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeOutput struct {
	initErr error
	quitErr error
	loadErr error
	playErr error
	busyFor int

	calls  []string
	loaded string
}

func (f *fakeOutput) Init() error {
	f.calls = append(f.calls, "init")
	return f.initErr
}

func (f *fakeOutput) Load(path string) error {
	f.calls = append(f.calls, "load")
	f.loaded = path
	return f.loadErr
}

func (f *fakeOutput) Play() error {
	f.calls = append(f.calls, "play")
	return f.playErr
}

func (f *fakeOutput) IsBusy() bool {
	if f.busyFor > 0 {
		f.busyFor--
		return true
	}
	return false
}

func (f *fakeOutput) Unload() error {
	f.calls = append(f.calls, "unload")
	return nil
}

func (f *fakeOutput) Quit() error {
	f.calls = append(f.calls, "quit")
	return f.quitErr
}

type fakeMic struct {
	openErr   error
	listenErr error
	audio     []byte

	opens  int
	closes int
	listen struct {
		timeout     time.Duration
		phraseLimit time.Duration
	}
}

func (f *fakeMic) Open() (application.CaptureSource, error) {
	f.opens++
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeSource{mic: f}, nil
}

type fakeSource struct {
	mic *fakeMic
}

func (s *fakeSource) Listen(_ context.Context, timeout, phraseLimit time.Duration) ([]byte, error) {
	s.mic.listen.timeout = timeout
	s.mic.listen.phraseLimit = phraseLimit
	if s.mic.listenErr != nil {
		return nil, s.mic.listenErr
	}
	return s.mic.audio, nil
}

func (s *fakeSource) Close() error {
	s.mic.closes++
	return nil
}

type recordingUI struct {
	infos      []string
	warnings   []string
	errs       []string
	requests   []string
	submission *string
}

func (u *recordingUI) NotifyInfo(message string)    { u.infos = append(u.infos, message) }
func (u *recordingUI) NotifyWarning(message string) { u.warnings = append(u.warnings, message) }
func (u *recordingUI) NotifyError(message string)   { u.errs = append(u.errs, message) }
func (u *recordingUI) RequestInput(label string)    { u.requests = append(u.requests, label) }

func (u *recordingUI) PollSubmission() (string, bool) {
	if u.submission == nil {
		return "", false
	}
	text := *u.submission
	u.submission = nil
	return text, true
}

func (u *recordingUI) submit(text string) {
	u.submission = &text
}

var errDevice = errors.New("device unavailable")
