package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/muurk/tapauth/internal/session"
)

func TestViewFieldsPerMode(t *testing.T) {
	tests := []struct {
		mode   session.Mode
		fields []session.Field
	}{
		{session.ModeLogin, []session.Field{session.FieldUsername, session.FieldPassword}},
		{session.ModePinChallenge, []session.Field{session.FieldPin}},
		{session.ModeRegister, []session.Field{session.FieldUsername, session.FieldPassword, session.FieldPin}},
		{session.ModeChangePassword, []session.Field{session.FieldOldPassword, session.FieldNewPassword}},
	}
	for _, tt := range tests {
		s := session.New("")
		s.Mode = tt.mode
		v := View(s)
		assert.Equal(t, tt.fields, v.Fields, tt.mode.String())
		assert.Equal(t, tt.mode != session.ModeLogin, v.CanGoBack, tt.mode.String())
	}
}

func TestViewFocusFallsBackToFirstVisibleField(t *testing.T) {
	s := session.New("")
	s.Mode = session.ModeChangePassword
	s.Focus = session.FieldPin

	assert.Equal(t, session.FieldOldPassword, View(s).Focus)
}

func TestViewInitialFocus(t *testing.T) {
	assert.Equal(t, session.FieldUsername, View(session.New("")).Focus)
	assert.Equal(t, session.FieldPassword, View(session.New("alice")).Focus)
}

func TestSubmitKind(t *testing.T) {
	assert.Equal(t, KindUsernameSubmit, SubmitKind(session.ModeLogin, session.FieldUsername))
	assert.Equal(t, KindPasswordSubmit, SubmitKind(session.ModeLogin, session.FieldPassword))
	assert.Equal(t, KindPinSubmit, SubmitKind(session.ModePinChallenge, session.FieldPin))
	assert.Equal(t, KindRegisterSubmit, SubmitKind(session.ModeRegister, session.FieldUsername))
	assert.Equal(t, KindChangePasswordSubmit, SubmitKind(session.ModeChangePassword, session.FieldNewPassword))
}
