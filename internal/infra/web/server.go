package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"quizvoice/internal/application"
	"quizvoice/internal/domain"
)

const maxAnswerBytes = 1024

// Quiz is what the server drives on behalf of the browser.
type Quiz interface {
	Current() (domain.Question, bool)
	Ask(ctx context.Context) (domain.Question, domain.PlaybackOutcome, error)
	Answer(ctx context.Context) (application.AnswerOutcome, error)
	Score() domain.Score
	Reset()
}

type AvailabilityReporter interface {
	Availability() domain.Availability
}

type Config struct {
	Addr           string
	AuthToken      string
	RateLimitRPS   float64
	RateLimitBurst int

	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Only set it behind a reverse proxy that overwrites them.
	TrustProxyHeaders bool
}

// Server hosts a single quiz session. Ask and answer cycles run one at a time
// so notices always belong to the request that produced them.
type Server struct {
	cfg         Config
	quiz        Quiz
	ui          *SessionUI
	status      AvailabilityReporter
	logger      *slog.Logger
	mux         *http.ServeMux
	rateLimiter *RateLimiter

	cycle sync.Mutex

	mu      sync.Mutex
	server  *http.Server
	running bool
	cancel  context.CancelFunc
}

func NewServer(cfg Config, quiz Quiz, ui *SessionUI, status AvailabilityReporter, logger *slog.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		quiz:        quiz,
		ui:          ui,
		status:      status,
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxyHeaders),
	}
	s.mux.HandleFunc("POST /ask", s.handleAsk)
	s.mux.HandleFunc("POST /answer", s.rateLimiter.Middleware(s.handleAnswer))
	s.mux.HandleFunc("POST /answer/text", s.rateLimiter.Middleware(s.requireToken(s.handleTextAnswer)))
	s.mux.HandleFunc("POST /reset", s.rateLimiter.Middleware(s.requireToken(s.handleReset)))
	s.mux.HandleFunc("GET /score", s.handleScore)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.server = &http.Server{
		Addr:        s.cfg.Addr,
		Handler:     s.mux,
		ReadTimeout: 15 * time.Second,
		// a capture cycle can listen for up to timeout + phrase limit
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	pruneCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.rateLimiter.run(pruneCtx)

	go func() {
		s.logger.Info("quiz server starting", "addr", s.cfg.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := s.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	s.running = false
	return nil
}

func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AuthToken == "" {
			next(w, r)
			return
		}
		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token != s.cfg.AuthToken {
			s.logger.Warn("unauthorized answer submission", "remote_addr", r.RemoteAddr)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

type askResponse struct {
	Prompt   string   `json:"prompt"`
	Playback string   `json:"playback"`
	Notices  []Notice `json:"notices"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	s.cycle.Lock()
	defer s.cycle.Unlock()

	question, outcome, err := s.quiz.Ask(r.Context())
	if errors.Is(err, application.ErrQuizFinished) {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "quiz finished", "score": s.quiz.Score()})
		return
	}
	if err != nil {
		s.logger.Error("asking question", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to ask question"})
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Prompt:   question.Prompt,
		Playback: string(outcome),
		Notices:  s.ui.Drain(),
	})
}

type answerResponse struct {
	Status     string   `json:"status"`
	Text       string   `json:"text,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Correct    bool     `json:"correct"`
	Expected   string   `json:"expected,omitempty"`
	Done       bool     `json:"done"`
	InputLabel string   `json:"input_label,omitempty"`
	Notices    []Notice `json:"notices"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	s.cycle.Lock()
	defer s.cycle.Unlock()

	outcome, err := s.quiz.Answer(r.Context())
	if errors.Is(err, application.ErrQuizFinished) {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "quiz finished", "score": s.quiz.Score()})
		return
	}
	if err != nil {
		s.logger.Error("capturing answer", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to capture answer"})
		return
	}

	resp := answerResponse{
		Status:     string(outcome.Result.Kind),
		Text:       outcome.Result.Text,
		Reason:     outcome.Result.Reason,
		Correct:    outcome.Correct,
		Done:       outcome.Done,
		InputLabel: s.ui.InputLabel(),
		Notices:    s.ui.Drain(),
	}
	if outcome.Result.Kind != domain.AnswerPending && !outcome.Correct {
		resp.Expected = outcome.Question.Answer
	}

	status := http.StatusOK
	if outcome.Result.Kind == domain.AnswerPending {
		status = http.StatusAccepted
	} else {
		// the question moved on; nothing typed so far can answer the next one
		s.ui.Reset()
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleTextAnswer(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxAnswerBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty answer"})
		return
	}

	if !s.ui.Submit(text) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no answer requested"})
		return
	}
	s.logger.Info("typed answer received", "text", text)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "received"})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.cycle.Lock()
	defer s.cycle.Unlock()

	s.quiz.Reset()
	s.ui.Reset()
	s.ui.Drain()
	s.logger.Info("quiz reset")
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset", "score": s.quiz.Score()})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	_, remaining := s.quiz.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"score": s.quiz.Score(),
		"done":  !remaining,
	})
}

type healthResponse struct {
	Status       string              `json:"status"`
	Running      bool                `json:"running"`
	Availability domain.Availability `json:"availability"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	resp := healthResponse{Status: "ok", Running: running}
	if s.status != nil {
		resp.Availability = s.status.Availability()
	}

	statusCode := http.StatusOK
	if !running {
		resp.Status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
