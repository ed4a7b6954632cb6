package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/tapauth/internal/directory"
	"github.com/muurk/tapauth/internal/i18n"
)

func TestNewWithoutHint(t *testing.T) {
	s := New("")

	assert.Equal(t, ModeLogin, s.Mode)
	assert.Equal(t, FieldUsername, s.Focus)
	assert.Empty(t, s.Inputs.Username)
	assert.False(t, s.InFlight())
}

func TestNewWithHint(t *testing.T) {
	s := New("alice")

	assert.Equal(t, "alice", s.Inputs.Username)
	assert.Equal(t, FieldPassword, s.Focus)
}

func TestResetClearsEverythingButHintAndSeq(t *testing.T) {
	s := New("alice")
	s.Mode = ModePinChallenge
	s.CardUID = "04A224B2"
	s.Candidate = Candidate{Username: "bob", Password: "pw", Pin: "1234"}
	s.CalledFrom = CalledFromUsername
	s.Username = "bob"
	s.Inputs = Inputs{Username: "x", Password: "y", Pin: "1", OldPassword: "o", NewPassword: "n"}
	s.Message = i18n.KeyWrongPin
	s.Blocking = true
	s, _ = s.Issue(directory.ActionAuth)

	r := s.Reset()

	want := New("alice")
	want.Seq = 1
	assert.Equal(t, want, r)
	require.NoError(t, r.Validate())
}

func TestResetWithUsername(t *testing.T) {
	s := New("")
	s.Mode = ModeRegister

	r := s.ResetWithUsername("carol")
	assert.Equal(t, ModeLogin, r.Mode)
	assert.Equal(t, "carol", r.Inputs.Username)
	assert.Equal(t, FieldPassword, r.Focus)

	r = s.ResetWithUsername("")
	assert.Equal(t, FieldUsername, r.Focus)
}

func TestIssueAndComplete(t *testing.T) {
	s := New("")

	s, seq := s.Issue(directory.ActionCheck)
	require.True(t, s.InFlight())
	assert.Equal(t, uint64(1), seq)
	assert.Equal(t, directory.ActionCheck, s.Pending.Action)

	_, ok := s.Complete(seq + 1)
	assert.False(t, ok, "foreign sequence must not complete the pending request")

	s, ok = s.Complete(seq)
	assert.True(t, ok)
	assert.False(t, s.InFlight())

	_, ok = s.Complete(seq)
	assert.False(t, ok, "a request completes only once")
}

func TestIssueDoesNotAliasPending(t *testing.T) {
	a, _ := New("").Issue(directory.ActionCheck)
	b, _ := a.Issue(directory.ActionAuth)

	assert.Equal(t, directory.ActionCheck, a.Pending.Action)
	assert.Equal(t, directory.ActionAuth, b.Pending.Action)
}

func TestValidate(t *testing.T) {
	s := New("")
	s.Candidate.Pin = "1234"
	assert.Error(t, s.Validate())

	s.Mode = ModePinChallenge
	assert.NoError(t, s.Validate())

	s.Mode = Mode(9)
	assert.Error(t, s.Validate())
}

func TestInputsGetWith(t *testing.T) {
	fields := []Field{FieldUsername, FieldPassword, FieldPin, FieldOldPassword, FieldNewPassword}
	var in Inputs
	for i, f := range fields {
		in = in.With(f, f.String())
		assert.Equal(t, f.String(), in.Get(f), "field %d", i)
	}
	assert.Empty(t, in.Get(FieldNone))
	assert.Equal(t, in, in.With(FieldNone, "ignored"))
}
