package signing

import (
	"time"

	"github.com/quantumauth-io/quantum-web3-demo/internal/metrics"
)

type State string

const (
	StateBuilt      State = "built"
	StateDispatched State = "dispatched"
	StateSigned     State = "signed"
	StateVerified   State = "verified"
	StateMismatched State = "mismatched"
	StateRejected   State = "rejected"
	StateErrored    State = "errored"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	switch s {
	case StateVerified, StateMismatched, StateRejected, StateErrored:
		return true
	}
	return false
}

var transitions = map[State][]State{
	StateBuilt:      {StateDispatched, StateErrored},
	StateDispatched: {StateSigned, StateRejected, StateErrored},
	StateSigned:     {StateVerified, StateMismatched},
}

// Attempt tracks one signing request from construction to its terminal state.
// Rejected and Errored mean no signature was produced; Mismatched means one was
// produced but cannot be trusted.
type Attempt struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"-"`
	Method    string    `json:"method"`
	State     State     `json:"state"`
	Signature string    `json:"signature,omitempty"`
	Outcome   *Outcome  `json:"outcome,omitempty"`
	Err       error     `json:"-"`
	StartedAt time.Time `json:"startedAt"`

	Request Request `json:"-"`
	history []State
}

func (a *Attempt) History() []State {
	return append([]State(nil), a.history...)
}

func (a *Attempt) to(next State) {
	for _, allowed := range transitions[a.State] {
		if allowed == next {
			a.State = next
			a.history = append(a.history, next)
			if next.Terminal() {
				metrics.SigningAttempt(a.Method, string(next))
			}
			return
		}
	}
	panic("signing: illegal transition " + string(a.State) + " -> " + string(next))
}

// ErrorString is the error text for display, empty on success.
func (a *Attempt) ErrorString() string {
	if a.Err == nil {
		return ""
	}
	return a.Err.Error()
}
