// Package guard holds the local checks run on user input before any request
// is sent. Guards are pure: they read values and never touch the network or
// the session.
package guard

import (
	"fmt"

	"github.com/muurk/tapauth/internal/i18n"
	"github.com/muurk/tapauth/internal/session"
)

// Failure is a failed guard: the field to refocus and the message to show
type Failure struct {
	Field   session.Field
	Message i18n.Key
}

// Error implements the error interface
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

// NonEmpty reports whether s has at least one character
func NonEmpty(s string) bool {
	return s != ""
}

// Differ reports whether two password values are different
func Differ(a, b string) bool {
	return a != b
}

// Check is one guard bound to its field
type Check func() *Failure

// Required fails with key on field when value is empty
func Required(field session.Field, value string, key i18n.Key) Check {
	return func() *Failure {
		if !NonEmpty(value) {
			return &Failure{Field: field, Message: key}
		}
		return nil
	}
}

// Distinct fails with key on field when a and b are equal
func Distinct(field session.Field, a, b string, key i18n.Key) Check {
	return func() *Failure {
		if !Differ(a, b) {
			return &Failure{Field: field, Message: key}
		}
		return nil
	}
}

// First runs checks in order and returns the first failure, or nil
func First(checks ...Check) *Failure {
	for _, c := range checks {
		if f := c(); f != nil {
			return f
		}
	}
	return nil
}

// Username guards a username submission on the login screen
func Username(in session.Inputs) *Failure {
	return First(Required(session.FieldUsername, in.Username, i18n.KeyUsernameRequired))
}

// Password guards a password submission on the login screen
func Password(in session.Inputs) *Failure {
	return First(Required(session.FieldPassword, in.Password, i18n.KeyPasswordRequired))
}

// Login guards a direct login: both username and password are needed
func Login(in session.Inputs) *Failure {
	return First(
		Required(session.FieldUsername, in.Username, i18n.KeyUsernameRequired),
		Required(session.FieldPassword, in.Password, i18n.KeyPasswordRequired),
	)
}

// Pin guards a PIN submission
func Pin(in session.Inputs) *Failure {
	return First(Required(session.FieldPin, in.Pin, i18n.KeyPinRequired))
}

// Register guards a registration: username, password, then PIN
func Register(in session.Inputs) *Failure {
	return First(
		Required(session.FieldUsername, in.Username, i18n.KeyUsernameRequired),
		Required(session.FieldPassword, in.Password, i18n.KeyPasswordRequired),
		Required(session.FieldPin, in.Pin, i18n.KeyPinRequired),
	)
}

// ChangePassword guards a password change: both values present and different
func ChangePassword(in session.Inputs) *Failure {
	return First(
		Required(session.FieldOldPassword, in.OldPassword, i18n.KeyOldPasswordRequired),
		Required(session.FieldNewPassword, in.NewPassword, i18n.KeyNewPasswordRequired),
		Distinct(session.FieldNewPassword, in.OldPassword, in.NewPassword, i18n.KeyPasswordsMustDiffer),
	)
}
