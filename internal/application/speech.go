package application

import (
	"context"
	"fmt"
)

type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// Recognizer turns captured audio into text. Implementations return
// ErrUnknownValue for unintelligible audio and *RecognitionRequestError when
// the service cannot be used.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte) (string, error)
}

// NoopRecognizer is used when no recognition backend is configured.
type NoopRecognizer struct{}

func (n *NoopRecognizer) Recognize(_ context.Context, _ []byte) (string, error) {
	return "", &RecognitionRequestError{
		Err: fmt.Errorf("speech recognition not configured: set openai.api_key to enable it"),
	}
}
