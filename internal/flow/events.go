package flow

import (
	"github.com/muurk/tapauth/internal/directory"
	"github.com/muurk/tapauth/internal/session"
)

// Kind is the fixed vocabulary of presenter submissions
type Kind string

const (
	KindUsernameSubmit       Kind = "username-submit"
	KindPasswordSubmit       Kind = "password-submit"
	KindPinSubmit            Kind = "pin-submit"
	KindRegisterSubmit       Kind = "register-submit"
	KindChangePasswordSubmit Kind = "change-password-submit"
	KindBack                 Kind = "back"
)

// Event is something the controller reacts to
type Event interface {
	isEvent()
}

// Submit is a field submission or button press forwarded by the presenter,
// with the values of the fields at that moment.
type Submit struct {
	Kind   Kind
	Inputs session.Inputs
}

// CardPresented reports a card read outside the input fields
type CardPresented struct {
	UID string
}

// Completed delivers the result of the request issued with sequence Seq
type Completed struct {
	Seq    uint64
	Result directory.Result
}

func (Submit) isEvent()        {}
func (CardPresented) isEvent() {}
func (Completed) isEvent()     {}

// Effect is an action the caller must perform after a step
type Effect interface {
	isEffect()
}

// Request asks the caller to send one directory request and to feed its
// result back as Completed{Seq: Seq}.
type Request struct {
	Seq    uint64
	Action directory.Action
	Fields directory.Fields
}

// Handoff asks the caller to pass the credentials to the OS login mechanism.
// The caller does not report back.
type Handoff struct {
	Username string
	Password string
}

func (Request) isEffect() {}
func (Handoff) isEffect() {}

// Result is the outcome of one step
type Result struct {
	Session session.Session
	Effects []Effect
}
