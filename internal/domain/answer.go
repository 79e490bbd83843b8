package domain

import "fmt"

type AnswerKind string

const (
	AnswerText    AnswerKind = "text"
	AnswerPending AnswerKind = "pending"
	AnswerFailed  AnswerKind = "failed"
)

// AnswerResult is the outcome of one capture cycle. Text is set for AnswerText,
// Reason for AnswerFailed.
type AnswerResult struct {
	Kind   AnswerKind
	Text   string
	Reason string
}

func TextAnswer(text string) AnswerResult {
	return AnswerResult{Kind: AnswerText, Text: text}
}

func PendingAnswer() AnswerResult {
	return AnswerResult{Kind: AnswerPending}
}

func FailedAnswer(reason string) AnswerResult {
	return AnswerResult{Kind: AnswerFailed, Reason: reason}
}

func (r AnswerResult) String() string {
	switch r.Kind {
	case AnswerText:
		return fmt.Sprintf("text(%q)", r.Text)
	case AnswerFailed:
		return fmt.Sprintf("failed(%s)", r.Reason)
	default:
		return string(r.Kind)
	}
}

// RecognitionFailurePolicy decides what happens when speech was captured but
// could not be turned into text.
type RecognitionFailurePolicy string

const (
	FallbackToText RecognitionFailurePolicy = "fallback_to_text"
	ReturnFailure  RecognitionFailurePolicy = "return_failure"
)

func ParseRecognitionFailurePolicy(s string) (RecognitionFailurePolicy, error) {
	switch RecognitionFailurePolicy(s) {
	case FallbackToText, "":
		return FallbackToText, nil
	case ReturnFailure:
		return ReturnFailure, nil
	default:
		return "", fmt.Errorf("unknown recognition failure policy: %s", s)
	}
}
