package web_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizvoice/internal/application"
	"quizvoice/internal/domain"
	"quizvoice/internal/infra/web"
)

type response struct {
	Prompt     string       `json:"prompt"`
	Playback   string       `json:"playback"`
	Status     string       `json:"status"`
	Text       string       `json:"text"`
	Correct    bool         `json:"correct"`
	Expected   string       `json:"expected"`
	Done       bool         `json:"done"`
	InputLabel string       `json:"input_label"`
	Notices    []web.Notice `json:"notices"`
	Score      domain.Score `json:"score"`
}

// newTextOnlyServer wires a real manager with no audio hardware and no speech
// services, so every question and answer goes through the browser.
func newTextOnlyServer(t *testing.T, cfg web.Config) *web.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ui := web.NewSessionUI()

	manager := application.NewAudioManager(nil, nil, nil, nil, ui, application.ManagerConfig{TempDir: t.TempDir()}, logger)
	quiz, err := application.NewQuizSession(manager, ui, []domain.Question{
		{Prompt: "What is the capital of France?", Answer: "Paris"},
		{Prompt: "How many legs does a spider have?", Answer: "8", Alternatives: []string{"eight"}},
	}, logger)
	require.NoError(t, err)

	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
		cfg.RateLimitBurst = 100
	}
	return web.NewServer(cfg, quiz, ui, manager, logger)
}

func do(t *testing.T, h http.Handler, method, target, body string) (int, response) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func noticeMessages(notices []web.Notice) []string {
	out := make([]string, len(notices))
	for i, n := range notices {
		out[i] = n.Message
	}
	return out
}

func TestServer_TextOnlyQuizRound(t *testing.T) {
	h := newTextOnlyServer(t, web.Config{}).Handler()

	code, resp := do(t, h, http.MethodPost, "/ask", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "What is the capital of France?", resp.Prompt)
	assert.Equal(t, "skipped", resp.Playback)
	assert.Contains(t, noticeMessages(resp.Notices), "Audio unavailable for this question. Please read it above.")

	code, resp = do(t, h, http.MethodPost, "/answer", "")
	require.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "Type your answer here:", resp.InputLabel)
	assert.Equal(t, []string{"No microphone detected. Please type your answer below."}, noticeMessages(resp.Notices))

	code, _ = do(t, h, http.MethodPost, "/answer/text", "  paris ")
	require.Equal(t, http.StatusAccepted, code)

	code, resp = do(t, h, http.MethodPost, "/answer", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "text", resp.Status)
	assert.Equal(t, "paris", resp.Text)
	assert.True(t, resp.Correct)
	assert.False(t, resp.Done)
	assert.Empty(t, resp.Notices)

	code, resp = do(t, h, http.MethodGet, "/score", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, domain.Score{Correct: 1, Answered: 1, Total: 2}, resp.Score)
}

func TestServer_WrongAnswerShowsExpected(t *testing.T) {
	h := newTextOnlyServer(t, web.Config{}).Handler()

	do(t, h, http.MethodPost, "/answer", "")
	do(t, h, http.MethodPost, "/answer/text", "Lyon")

	_, resp := do(t, h, http.MethodPost, "/answer", "")
	assert.False(t, resp.Correct)
	assert.Equal(t, "Paris", resp.Expected)
}

func TestServer_FinishedQuiz(t *testing.T) {
	h := newTextOnlyServer(t, web.Config{}).Handler()

	for _, answer := range []string{"Paris", "eight"} {
		do(t, h, http.MethodPost, "/answer", "")
		do(t, h, http.MethodPost, "/answer/text", answer)
		_, resp := do(t, h, http.MethodPost, "/answer", "")
		require.True(t, resp.Correct)
	}

	code, resp := do(t, h, http.MethodPost, "/ask", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, 2, resp.Score.Correct)

	code, _ = do(t, h, http.MethodPost, "/answer", "")
	assert.Equal(t, http.StatusConflict, code)
}

func TestServer_EmptyTextAnswer(t *testing.T) {
	h := newTextOnlyServer(t, web.Config{}).Handler()

	code, _ := do(t, h, http.MethodPost, "/answer/text", "   ")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestServer_TypedAnswerNeedsOpenField(t *testing.T) {
	h := newTextOnlyServer(t, web.Config{}).Handler()

	code, _ := do(t, h, http.MethodPost, "/answer/text", "Lyon")
	assert.Equal(t, http.StatusConflict, code)

	code, resp := do(t, h, http.MethodPost, "/answer", "")
	require.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, "pending", resp.Status)
}

func TestServer_TypedAnswerDoesNotCarryOver(t *testing.T) {
	h := newTextOnlyServer(t, web.Config{}).Handler()

	do(t, h, http.MethodPost, "/answer", "")
	do(t, h, http.MethodPost, "/answer/text", "Paris")
	_, resp := do(t, h, http.MethodPost, "/answer", "")
	require.True(t, resp.Correct)

	// the field closed with the first question
	code, _ := do(t, h, http.MethodPost, "/answer/text", "8")
	assert.Equal(t, http.StatusConflict, code)

	code, resp = do(t, h, http.MethodPost, "/answer", "")
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, "pending", resp.Status)

	_, resp = do(t, h, http.MethodGet, "/score", "")
	assert.Equal(t, domain.Score{Correct: 1, Answered: 1, Total: 2}, resp.Score)
}

func TestServer_Reset(t *testing.T) {
	h := newTextOnlyServer(t, web.Config{}).Handler()

	do(t, h, http.MethodPost, "/answer", "")
	do(t, h, http.MethodPost, "/answer/text", "Paris")
	do(t, h, http.MethodPost, "/answer", "")
	do(t, h, http.MethodPost, "/answer", "")

	code, resp := do(t, h, http.MethodPost, "/reset", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, domain.Score{Total: 2}, resp.Score)

	code, _ = do(t, h, http.MethodPost, "/answer/text", "Paris")
	assert.Equal(t, http.StatusConflict, code)

	// a fresh capture cycle, not the typed answer left waiting before the reset
	code, resp = do(t, h, http.MethodPost, "/answer", "")
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, []string{"No microphone detected. Please type your answer below."}, noticeMessages(resp.Notices))

	_, resp = do(t, h, http.MethodPost, "/ask", "")
	assert.Equal(t, "What is the capital of France?", resp.Prompt)
}

func TestServer_TextAnswerToken(t *testing.T) {
	const token = "quiz-secret"
	h := newTextOnlyServer(t, web.Config{AuthToken: token}).Handler()
	do(t, h, http.MethodPost, "/answer", "")

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
	}{
		{name: "header", header: token, wantStatus: http.StatusAccepted},
		{name: "query", query: token, wantStatus: http.StatusAccepted},
		{name: "wrong", header: "nope", wantStatus: http.StatusUnauthorized},
		{name: "missing", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/answer/text"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodPost, target, strings.NewReader("Paris"))
			if tt.header != "" {
				req.Header.Set("X-Auth-Token", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestServer_RateLimitsAnswers(t *testing.T) {
	h := newTextOnlyServer(t, web.Config{RateLimitRPS: 0.001, RateLimitBurst: 2}).Handler()
	do(t, h, http.MethodPost, "/answer", "")

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/answer/text", strings.NewReader("Paris"))
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusAccepted, http.StatusAccepted, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/answer/text", strings.NewReader("Paris"))
	req.RemoteAddr = "10.0.0.8:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestServer_RateLimitIgnoresForwardedHeadersByDefault(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		want       []int
	}{
		{name: "direct", trustProxy: false, want: []int{http.StatusAccepted, http.StatusTooManyRequests, http.StatusTooManyRequests}},
		{name: "behind proxy", trustProxy: true, want: []int{http.StatusAccepted, http.StatusAccepted, http.StatusAccepted}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTextOnlyServer(t, web.Config{RateLimitRPS: 0.001, RateLimitBurst: 1, TrustProxyHeaders: tt.trustProxy}).Handler()
			do(t, h, http.MethodPost, "/answer", "")

			var codes []int
			for _, forwarded := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
				req := httptest.NewRequest(http.MethodPost, "/answer/text", strings.NewReader("Paris"))
				req.RemoteAddr = "10.0.0.9:4000"
				req.Header.Set("X-Forwarded-For", forwarded)
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, req)
				codes = append(codes, rec.Code)
			}
			assert.Equal(t, tt.want, codes)
		})
	}
}

func TestServer_Health(t *testing.T) {
	s := newTextOnlyServer(t, web.Config{Addr: "127.0.0.1:0"})
	h := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","running":true,"availability":{"audio_output":false,"microphone":false}}`, rec.Body.String())
}
