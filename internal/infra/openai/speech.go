package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quizvoice/internal/infra"
)

// SpeechClient synthesizes speech through the audio/speech endpoint. It always
// asks for WAV so the result can be played without an MP3 decoder.
type SpeechClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	voice      string
}

func NewSpeechClient(apiKey, model, voice string) *SpeechClient {
	return NewSpeechClientWithURL(apiKey, model, voice, DefaultBaseURL)
}

func NewSpeechClientWithURL(apiKey, model, voice, baseURL string) *SpeechClient {
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "alloy"
	}
	return &SpeechClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		voice:      voice,
	}
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
	Instructions   string `json:"instructions,omitempty"`
}

func (c *SpeechClient) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("speech synthesis not configured: set openai.api_key")
	}

	reqBody := speechRequest{
		Model:          c.model,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: "wav",
	}
	if language != "" && supportsInstructions(c.model) {
		reqBody.Instructions = fmt.Sprintf("Speak in the language with ISO code %q.", language)
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var audio []byte
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("speech API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return infra.Permanent(fmt.Errorf("speech API error %d: %s", resp.StatusCode, string(respBody)))
		}

		audio, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading audio: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	if len(audio) == 0 {
		return nil, fmt.Errorf("speech API returned no audio")
	}

	return audio, nil
}

// tts-1 and tts-1-hd ignore instructions; the gpt-4o speech models accept them.
func supportsInstructions(model string) bool {
	return strings.HasPrefix(model, "gpt-4o")
}
