package domain

import (
	"strings"
	"unicode"
)

type Question struct {
	Prompt       string   `yaml:"prompt"`
	Answer       string   `yaml:"answer"`
	Alternatives []string `yaml:"alternatives"`
}

// Accepts reports whether a spoken or typed reply matches the expected answer
// or one of its alternatives, ignoring case, punctuation and extra whitespace.
func (q Question) Accepts(reply string) bool {
	got := NormalizeAnswer(reply)
	if got == "" {
		return false
	}
	if got == NormalizeAnswer(q.Answer) {
		return true
	}
	for _, alt := range q.Alternatives {
		if got == NormalizeAnswer(alt) {
			return true
		}
	}
	return false
}

func NormalizeAnswer(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

type Score struct {
	Correct  int `json:"correct"`
	Answered int `json:"answered"`
	Total    int `json:"total"`
}
