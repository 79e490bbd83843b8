package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"quizvoice/internal/domain"
)

var ErrQuizFinished = errors.New("quiz finished")

const noticeQuestionAudioUnavailable = "Audio unavailable for this question. Please read it above."

// VoiceIO is the part of AudioManager a quiz needs.
type VoiceIO interface {
	SynthesizeSpeech(ctx context.Context, text string) (domain.SpeechArtifact, error)
	PlayAndDispose(artifact domain.SpeechArtifact) domain.PlaybackOutcome
	CaptureSpokenOrTypedAnswer(ctx context.Context) domain.AnswerResult
	CancelTextRequest()
}

type AnswerOutcome struct {
	Question domain.Question
	Result   domain.AnswerResult
	Correct  bool
	Done     bool
}

type QuizSession struct {
	voice     VoiceIO
	ui        UI
	questions []domain.Question
	logger    *slog.Logger

	mu    sync.Mutex
	index int
	score domain.Score
}

func NewQuizSession(voice VoiceIO, ui UI, questions []domain.Question, logger *slog.Logger) (*QuizSession, error) {
	if len(questions) == 0 {
		return nil, errors.New("quiz has no questions")
	}
	if ui == nil {
		ui = &NoopUI{}
	}
	return &QuizSession{
		voice:     voice,
		ui:        ui,
		questions: questions,
		logger:    logger,
		score:     domain.Score{Total: len(questions)},
	}, nil
}

func (q *QuizSession) Current() (domain.Question, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.index >= len(q.questions) {
		return domain.Question{}, false
	}
	return q.questions[q.index], true
}

// Ask reads the current question aloud. When speech cannot be synthesized the
// question is left for the host to show as text.
func (q *QuizSession) Ask(ctx context.Context) (domain.Question, domain.PlaybackOutcome, error) {
	question, ok := q.Current()
	if !ok {
		return domain.Question{}, "", ErrQuizFinished
	}

	artifact, err := q.voice.SynthesizeSpeech(ctx, question.Prompt)
	if err != nil {
		q.logger.Warn("question audio unavailable", "error", err)
		q.ui.NotifyWarning(noticeQuestionAudioUnavailable)
		return question, domain.PlaybackSkipped, nil
	}

	outcome := q.voice.PlayAndDispose(artifact)
	q.logger.Info("asked question", "prompt", question.Prompt, "playback", outcome)
	return question, outcome, nil
}

// Answer runs one capture cycle for the current question. The quiz only moves
// on once an answer arrives or capture fails outright.
func (q *QuizSession) Answer(ctx context.Context) (AnswerOutcome, error) {
	question, ok := q.Current()
	if !ok {
		return AnswerOutcome{Done: true}, ErrQuizFinished
	}

	result := q.voice.CaptureSpokenOrTypedAnswer(ctx)
	outcome := AnswerOutcome{Question: question, Result: result}

	if result.Kind == domain.AnswerPending {
		return outcome, nil
	}

	outcome.Correct = result.Kind == domain.AnswerText && question.Accepts(result.Text)

	q.mu.Lock()
	q.score.Answered++
	if outcome.Correct {
		q.score.Correct++
	}
	q.index++
	outcome.Done = q.index >= len(q.questions)
	q.mu.Unlock()

	q.logger.Info("answer graded",
		"prompt", question.Prompt,
		"result", result.String(),
		"correct", outcome.Correct,
	)

	return outcome, nil
}

func (q *QuizSession) Score() domain.Score {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.score
}

// Reset starts the quiz over. A typed answer still being waited for belongs
// to the old run and is abandoned.
func (q *QuizSession) Reset() {
	q.voice.CancelTextRequest()

	q.mu.Lock()
	defer q.mu.Unlock()
	q.index = 0
	q.score = domain.Score{Total: len(q.questions)}
}
