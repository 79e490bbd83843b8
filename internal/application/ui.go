package application

// UI is the host interface the manager talks to. Notices never block.
// Text input follows a two-phase protocol: RequestInput shows the prompt and
// returns immediately, PollSubmission reports a submitted value if there is one.
type UI interface {
	NotifyInfo(message string)
	NotifyWarning(message string)
	NotifyError(message string)
	RequestInput(label string)
	PollSubmission() (string, bool)
}

type NoopUI struct{}

func (n *NoopUI) NotifyInfo(_ string)            {}
func (n *NoopUI) NotifyWarning(_ string)         {}
func (n *NoopUI) NotifyError(_ string)           {}
func (n *NoopUI) RequestInput(_ string)          {}
func (n *NoopUI) PollSubmission() (string, bool) { return "", false }
