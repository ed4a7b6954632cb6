// Package session holds the state of one card-present-to-login cycle.
//
// A Session is a plain value. The flow controller receives one, returns a new
// one, and is the only code that changes it; the greeter only reads it to
// render. Candidate credentials recovered from the directory live here
// between issuing a request and handling its completion.
package session

import (
	"fmt"

	"github.com/muurk/tapauth/internal/directory"
	"github.com/muurk/tapauth/internal/i18n"
)

// Mode is the active screen of the flow
type Mode int

const (
	ModeLogin Mode = iota
	ModePinChallenge
	ModeRegister
	ModeChangePassword
)

// String returns the mode name used in logs
func (m Mode) String() string {
	switch m {
	case ModeLogin:
		return "login"
	case ModePinChallenge:
		return "pin"
	case ModeRegister:
		return "register"
	case ModeChangePassword:
		return "change_password"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the four modes
func (m Mode) Valid() bool {
	return m >= ModeLogin && m <= ModeChangePassword
}

// Field identifies an input on one of the screens
type Field int

const (
	FieldNone Field = iota
	FieldUsername
	FieldPassword
	FieldPin
	FieldOldPassword
	FieldNewPassword
)

// String returns the field name
func (f Field) String() string {
	switch f {
	case FieldNone:
		return "none"
	case FieldUsername:
		return "username"
	case FieldPassword:
		return "password"
	case FieldPin:
		return "pin"
	case FieldOldPassword:
		return "old_password"
	case FieldNewPassword:
		return "new_password"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// CalledFrom records which login field last triggered a check
type CalledFrom int

const (
	CalledFromNone CalledFrom = iota
	CalledFromUsername
	CalledFromPassword
)

// Inputs are the values currently in the screen's fields
type Inputs struct {
	Username    string
	Password    string
	Pin         string
	OldPassword string
	NewPassword string
}

// Get returns the value of field f
func (in Inputs) Get(f Field) string {
	switch f {
	case FieldUsername:
		return in.Username
	case FieldPassword:
		return in.Password
	case FieldPin:
		return in.Pin
	case FieldOldPassword:
		return in.OldPassword
	case FieldNewPassword:
		return in.NewPassword
	}
	return ""
}

// With returns a copy of in with field f set to v
func (in Inputs) With(f Field, v string) Inputs {
	switch f {
	case FieldUsername:
		in.Username = v
	case FieldPassword:
		in.Password = v
	case FieldPin:
		in.Pin = v
	case FieldOldPassword:
		in.OldPassword = v
	case FieldNewPassword:
		in.NewPassword = v
	}
	return in
}

// Candidate holds the credentials the directory returned for a known card
type Candidate struct {
	Username string
	Password string
	Pin      string
}

// Empty reports whether no candidate value is held
func (c Candidate) Empty() bool {
	return c == Candidate{}
}

// Pending describes the single request in flight, if any
type Pending struct {
	Action directory.Action
	Seq    uint64
}

// Session is the unit of work for one authentication attempt
type Session struct {
	Mode Mode

	// CardUID is the identifier last submitted for a check. It is sent to
	// the directory only, never handed off.
	CardUID string

	// Candidate is filled from a StateKnown response
	Candidate Candidate

	// CalledFrom records which login field issued the last check
	CalledFrom CalledFrom

	// Username is the login username captured at the last check, used by
	// change_password requests after the fields were cleared
	Username string

	// Inputs, Focus, SelectAll and Message describe what the screen shows
	Inputs    Inputs
	Focus     Field
	SelectAll bool
	Message   i18n.Key

	// Blocking marks Message as a dead-end notice (banned card)
	Blocking bool

	// Pending is the request in flight. Nil when idle.
	Pending *Pending

	// Hint is the last successfully logged-in user. It survives resets.
	Hint string

	// Seq numbers requests. It survives resets so that completions of
	// requests issued before a reset are recognised as stale.
	Seq uint64
}

// New creates the initial session: login mode with the username pre-filled
// from hint. The username field is focused only when there is no hint.
func New(hint string) Session {
	s := Session{
		Mode:   ModeLogin,
		Hint:   hint,
		Inputs: Inputs{Username: hint},
		Focus:  FieldUsername,
	}
	if hint != "" {
		s.Focus = FieldPassword
	}
	return s
}

// Reset returns the login-mode session that follows s. Everything except
// Hint and Seq is cleared.
func (s Session) Reset() Session {
	next := New(s.Hint)
	next.Seq = s.Seq
	return next
}

// ResetWithUsername is Reset with the username field pre-filled
func (s Session) ResetWithUsername(username string) Session {
	next := s.Reset()
	if username != "" {
		next.Inputs.Username = username
		next.Focus = FieldPassword
	}
	return next
}

// InFlight reports whether a request is pending
func (s Session) InFlight() bool {
	return s.Pending != nil
}

// Issue records a new pending request and returns its sequence number
func (s Session) Issue(action directory.Action) (Session, uint64) {
	s.Seq++
	s.Pending = &Pending{Action: action, Seq: s.Seq}
	return s, s.Seq
}

// Complete clears the pending request if seq matches it. It reports whether
// the completion belongs to the pending request.
func (s Session) Complete(seq uint64) (Session, bool) {
	if s.Pending == nil || s.Pending.Seq != seq {
		return s, false
	}
	s.Pending = nil
	return s, true
}

// Validate checks the session invariants
func (s Session) Validate() error {
	if !s.Mode.Valid() {
		return fmt.Errorf("invalid mode %d", int(s.Mode))
	}
	if s.Mode != ModePinChallenge && s.Candidate.Pin != "" {
		return fmt.Errorf("candidate PIN held in %s mode", s.Mode)
	}
	return nil
}
