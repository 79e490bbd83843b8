package web

import "sync"

type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// SessionUI is the browser side of the quiz as the manager sees it. Notices
// pile up until the next response drains them; a typed answer waits in a
// single slot until the manager polls for it.
type SessionUI struct {
	mu         sync.Mutex
	notices    []Notice
	inputLabel string
	submission string
	submitted  bool
}

func NewSessionUI() *SessionUI {
	return &SessionUI{}
}

func (u *SessionUI) NotifyInfo(message string)    { u.notify("info", message) }
func (u *SessionUI) NotifyWarning(message string) { u.notify("warning", message) }
func (u *SessionUI) NotifyError(message string)   { u.notify("error", message) }

func (u *SessionUI) notify(level, message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.notices = append(u.notices, Notice{Level: level, Message: message})
}

func (u *SessionUI) RequestInput(label string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.inputLabel = label
}

// PollSubmission hands over the typed answer at most once.
func (u *SessionUI) PollSubmission() (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.submitted {
		return "", false
	}
	text := u.submission
	u.submission = ""
	u.submitted = false
	u.inputLabel = ""
	return text, true
}

// Reset closes the text field and throws away an answer nobody picked up.
func (u *SessionUI) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.inputLabel = ""
	u.submission = ""
	u.submitted = false
}

// Submit stores a typed answer for the open text field, replacing one that
// was never picked up. It reports false when no field is open.
func (u *SessionUI) Submit(text string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.inputLabel == "" {
		return false
	}
	u.submission = text
	u.submitted = true
	return true
}

// InputLabel is the label of the open text field, empty when none is shown.
func (u *SessionUI) InputLabel() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.inputLabel
}

func (u *SessionUI) Drain() []Notice {
	u.mu.Lock()
	defer u.mu.Unlock()
	notices := u.notices
	u.notices = nil
	if notices == nil {
		notices = []Notice{}
	}
	return notices
}
