package flow

import (
	"github.com/muurk/tapauth/internal/i18n"
	"github.com/muurk/tapauth/internal/session"
)

// Screen is what the presenter renders for a session
type Screen struct {
	Mode      session.Mode
	Fields    []session.Field
	Focus     session.Field
	SelectAll bool
	Message   i18n.Key
	Blocking  bool
	Busy      bool
	CanGoBack bool
}

var modeFields = map[session.Mode][]session.Field{
	session.ModeLogin:          {session.FieldUsername, session.FieldPassword},
	session.ModePinChallenge:   {session.FieldPin},
	session.ModeRegister:       {session.FieldUsername, session.FieldPassword, session.FieldPin},
	session.ModeChangePassword: {session.FieldOldPassword, session.FieldNewPassword},
}

// FieldsFor returns the visible fields of mode in display order
func FieldsFor(m session.Mode) []session.Field {
	return modeFields[m]
}

// View projects s onto the screen the presenter should show
func View(s session.Session) Screen {
	fields := FieldsFor(s.Mode)
	focus := s.Focus
	if !contains(fields, focus) && len(fields) > 0 {
		focus = fields[0]
	}
	return Screen{
		Mode:      s.Mode,
		Fields:    fields,
		Focus:     focus,
		SelectAll: s.SelectAll,
		Message:   s.Message,
		Blocking:  s.Blocking,
		Busy:      s.InFlight(),
		CanGoBack: s.Mode != session.ModeLogin,
	}
}

// SubmitKind returns the submission the presenter sends when the user
// confirms field f in mode m.
func SubmitKind(m session.Mode, f session.Field) Kind {
	switch m {
	case session.ModeLogin:
		if f == session.FieldPassword {
			return KindPasswordSubmit
		}
		return KindUsernameSubmit
	case session.ModePinChallenge:
		return KindPinSubmit
	case session.ModeRegister:
		return KindRegisterSubmit
	case session.ModeChangePassword:
		return KindChangePasswordSubmit
	}
	return KindBack
}

func contains(fields []session.Field, f session.Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}
