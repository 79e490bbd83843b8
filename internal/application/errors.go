package application

import (
	"errors"
	"fmt"
)

// ErrUnknownValue is returned by a Recognizer when audio was received but no
// speech could be made out of it.
var ErrUnknownValue = errors.New("speech not understood")

// ErrListenTimeout is returned by a CaptureSource when nobody started speaking
// within the wait timeout.
var ErrListenTimeout = errors.New("timed out waiting for speech")

// RecognitionRequestError wraps a failure to reach or use the recognition
// service.
type RecognitionRequestError struct {
	Err error
}

func (e *RecognitionRequestError) Error() string {
	return fmt.Sprintf("recognition request failed: %v", e.Err)
}

func (e *RecognitionRequestError) Unwrap() error {
	return e.Err
}

// SynthesisError is the only failure AudioManager lets escape.
type SynthesisError struct {
	Text string
	Err  error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesizing speech: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

func IsSynthesisError(err error) bool {
	var se *SynthesisError
	return errors.As(err, &se)
}
