package flow

import (
	"go.uber.org/zap"

	"github.com/muurk/tapauth/internal/directory"
	"github.com/muurk/tapauth/internal/guard"
	"github.com/muurk/tapauth/internal/i18n"
	"github.com/muurk/tapauth/internal/logging"
	"github.com/muurk/tapauth/internal/session"
)

// Step applies ev to s and returns the next session with the effects the
// caller must carry out. It is the only place sessions change mode.
func Step(s session.Session, ev Event) Result {
	from := s.Mode
	var res Result

	switch ev := ev.(type) {
	case Submit:
		res = submit(s, ev)
	case CardPresented:
		res = cardPresented(s, ev)
	case Completed:
		res = completed(s, ev)
	default:
		res = Result{Session: s}
	}

	logging.LogTransition(from.String(), res.Session.Mode.String(), describe(ev))
	return res
}

func describe(ev Event) string {
	switch ev := ev.(type) {
	case Submit:
		return string(ev.Kind)
	case CardPresented:
		return "card"
	case Completed:
		return "completed:" + string(ev.Result.Action)
	default:
		return "unknown"
	}
}

func submit(s session.Session, ev Submit) Result {
	if ev.Kind == KindBack {
		return Result{Session: s.Reset()}
	}

	if !accepts(s.Mode, ev.Kind) {
		return Result{Session: s}
	}

	if s.InFlight() {
		s.Message = i18n.KeyBusy
		return Result{Session: s}
	}

	s.Inputs = ev.Inputs
	s.Message = i18n.KeyNone
	s.Blocking = false
	s.SelectAll = false

	switch ev.Kind {
	case KindUsernameSubmit:
		s.CalledFrom = session.CalledFromUsername
		if f := guard.Username(s.Inputs); f != nil {
			return fail(s, f)
		}
		return check(s, s.Inputs.Username)

	case KindPasswordSubmit:
		s.CalledFrom = session.CalledFromPassword
		if f := guard.Password(s.Inputs); f != nil {
			return fail(s, f)
		}
		return check(s, s.Inputs.Password)

	case KindPinSubmit:
		return submitPin(s)

	case KindRegisterSubmit:
		if f := guard.Register(s.Inputs); f != nil {
			return fail(s, f)
		}
		return issue(s, directory.ActionRegister, directory.Fields{
			directory.FieldUID:      s.CardUID,
			directory.FieldUsername: s.Inputs.Username,
			directory.FieldPassword: s.Inputs.Password,
			directory.FieldPin:      s.Inputs.Pin,
		})

	case KindChangePasswordSubmit:
		if f := guard.ChangePassword(s.Inputs); f != nil {
			return fail(s, f)
		}
		return issue(s, directory.ActionChangePassword, directory.Fields{
			directory.FieldUID:         s.CardUID,
			directory.FieldUsername:    s.Username,
			directory.FieldOldPassword: s.Inputs.OldPassword,
			directory.FieldPassword:    s.Inputs.NewPassword,
		})
	}

	return Result{Session: s}
}

// accepts reports whether a submission kind belongs to mode
func accepts(m session.Mode, k Kind) bool {
	switch k {
	case KindUsernameSubmit, KindPasswordSubmit:
		return m == session.ModeLogin
	case KindPinSubmit:
		return m == session.ModePinChallenge
	case KindRegisterSubmit:
		return m == session.ModeRegister
	case KindChangePasswordSubmit:
		return m == session.ModeChangePassword
	}
	return false
}

func submitPin(s session.Session) Result {
	if f := guard.Pin(s.Inputs); f != nil {
		return fail(s, f)
	}

	if s.Inputs.Pin != s.Candidate.Pin {
		s.Inputs.Pin = ""
		s.Focus = session.FieldPin
		s.Message = i18n.KeyWrongPin
		return Result{Session: s}
	}

	res := issue(s, directory.ActionAuth, directory.Fields{directory.FieldUID: s.CardUID})
	res.Session.Message = i18n.KeyLoggingIn
	return res
}

func cardPresented(s session.Session, ev CardPresented) Result {
	if ev.UID == "" {
		return Result{Session: s}
	}
	if s.InFlight() {
		s.Message = i18n.KeyBusy
		return Result{Session: s}
	}
	s.CalledFrom = session.CalledFromNone
	s.Message = i18n.KeyNone
	s.Blocking = false
	return check(s, ev.UID)
}

func check(s session.Session, uid string) Result {
	s.CardUID = uid
	s.Username = s.Inputs.Username
	return issue(s, directory.ActionCheck, directory.Fields{directory.FieldUID: uid})
}

func issue(s session.Session, action directory.Action, fields directory.Fields) Result {
	s, seq := s.Issue(action)
	return Result{
		Session: s,
		Effects: []Effect{Request{Seq: seq, Action: action, Fields: fields}},
	}
}

func fail(s session.Session, f *guard.Failure) Result {
	s.Focus = f.Field
	s.Message = f.Message
	s.SelectAll = false
	return Result{Session: s}
}

func completed(s session.Session, ev Completed) Result {
	if s.Pending == nil || s.Pending.Seq != ev.Seq {
		logging.Debug("Dropping stale completion",
			zap.Uint64("seq", ev.Seq),
			zap.String("action", string(ev.Result.Action)),
		)
		return Result{Session: s}
	}
	action := s.Pending.Action
	s, _ = s.Complete(ev.Seq)

	switch action {
	case directory.ActionCheck:
		return onCheck(s, ev.Result.Response)
	case directory.ActionAuth:
		return onAuth(s, ev.Result)
	case directory.ActionRegister:
		return onRegister(s, ev.Result.Response)
	case directory.ActionChangePassword:
		return onChangePassword(s, ev.Result.Response)
	}
	return Result{Session: s}
}

func onCheck(s session.Session, resp directory.Response) Result {
	if resp.Parsed() {
		switch resp.State {
		case directory.StateKnown:
			s.Mode = session.ModePinChallenge
			s.Candidate = session.Candidate{
				Username: resp.Username,
				Password: resp.Password,
				Pin:      resp.Pin,
			}
			s.Inputs = session.Inputs{}
			s.Focus = session.FieldPin
			s.Message = i18n.KeyEnterPin
			return Result{Session: s}

		case directory.StateUnknown:
			s.Mode = session.ModeRegister
			s.Candidate = session.Candidate{}
			s.Inputs = session.Inputs{}
			s.Focus = session.FieldUsername
			s.Message = i18n.KeyRegisterPrompt
			return Result{Session: s}

		case directory.StateExpired:
			s.Mode = session.ModeChangePassword
			s.Candidate = session.Candidate{}
			s.Inputs = session.Inputs{}
			s.Focus = session.FieldOldPassword
			s.Message = i18n.KeyPasswordExpired
			return Result{Session: s}

		case directory.StateBanned:
			s = s.Reset()
			s.Message = i18n.KeyBanned
			s.Blocking = true
			return Result{Session: s}
		}

		if resp.State.IsConnectivityError() {
			s.Focus = lastSubmitted(s)
			s.Message = i18n.KeyConnectivity
			return Result{Session: s}
		}
	}

	return decideLocally(s)
}

// lastSubmitted is the field that issued the last check
func lastSubmitted(s session.Session) session.Field {
	switch s.CalledFrom {
	case session.CalledFromUsername:
		return session.FieldUsername
	case session.CalledFromPassword:
		return session.FieldPassword
	}
	return s.Focus
}

// decideLocally handles a check that produced no actionable state
func decideLocally(s session.Session) Result {
	switch s.CalledFrom {
	case session.CalledFromUsername:
		if s.Inputs.Username == "" {
			s.Focus = session.FieldUsername
			s.Message = i18n.KeyUsernamePrompt
			return Result{Session: s}
		}
		s.Focus = session.FieldPassword
		s.SelectAll = true
		s.Message = i18n.KeyEnterPassword
		return Result{Session: s}

	case session.CalledFromPassword:
		if f := guard.Login(s.Inputs); f != nil {
			return fail(s, f)
		}
		return handoff(s, s.Inputs.Username, s.Inputs.Password)
	}

	s = s.Reset()
	s.Message = i18n.KeyUsernamePrompt
	return Result{Session: s}
}

func onAuth(s session.Session, res directory.Result) Result {
	// The bridge acknowledges auth with an empty body, so only the outcome counts
	if !res.OK() {
		logging.Warn("Auth request did not succeed, handing off cached credentials anyway",
			zap.String("outcome", res.Outcome.String()),
			zap.Int("state", int(res.Response.State)),
		)
	}
	return handoff(s, s.Candidate.Username, s.Candidate.Password)
}

func onRegister(s session.Session, resp directory.Response) Result {
	if resp.Parsed() && resp.State == directory.StateSucceeded {
		next := s.ResetWithUsername(s.Inputs.Username)
		next.Message = i18n.KeyRegistered
		return Result{Session: next}
	}
	s.Focus = session.FieldUsername
	s.Message = failureMessage(resp, i18n.KeyRegisterFailed)
	return Result{Session: s}
}

func onChangePassword(s session.Session, resp directory.Response) Result {
	if resp.Parsed() && resp.State == directory.StateSucceeded {
		next := s.ResetWithUsername(s.Username)
		next.Message = i18n.KeyPasswordChanged
		return Result{Session: next}
	}
	s.Focus = session.FieldOldPassword
	s.Message = failureMessage(resp, i18n.KeyChangePasswordFail)
	return Result{Session: s}
}

// failureMessage is rejected when the directory answered with a state, and the
// generic failure when the answer could not be read.
func failureMessage(resp directory.Response, rejected i18n.Key) i18n.Key {
	if !resp.Parsed() {
		return i18n.KeyRequestFailed
	}
	return rejected
}

// handoff ends the cycle: the credentials go to the OS login mechanism and a
// fresh session starts with the user remembered as the hint.
func handoff(s session.Session, username, password string) Result {
	s.Hint = username
	next := s.Reset()
	next.Message = i18n.KeyLoggingIn
	return Result{
		Session: next,
		Effects: []Effect{Handoff{Username: username, Password: password}},
	}
}
