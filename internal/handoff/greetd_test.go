package handoff

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGreetd serves one connection, answering each request with the next
// scripted response and recording what it received.
func fakeGreetd(t *testing.T, replies ...greetdResponse) (string, <-chan []greetdRequest) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "greetd.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got := make(chan []greetdRequest, 1)
	go func() {
		var seen []greetdRequest
		defer func() { got <- seen }()

		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			var req greetdRequest
			if err := readFrame(conn, &req); err != nil {
				return
			}
			seen = append(seen, req)

			reply := greetdResponse{Type: respSuccess}
			if len(replies) > 0 {
				reply, replies = replies[0], replies[1:]
			}
			if err := writeFrame(conn, reply); err != nil {
				return
			}
		}
	}()
	return path, got
}

func wait(t *testing.T, got <-chan []greetdRequest) []greetdRequest {
	t.Helper()
	select {
	case reqs := <-got:
		return reqs
	case <-time.After(5 * time.Second):
		t.Fatal("fake greetd did not finish")
		return nil
	}
}

func TestGreetdLogin(t *testing.T) {
	path, got := fakeGreetd(t,
		greetdResponse{Type: respAuthMessage, AuthMessageType: authInfo, AuthMessage: "welcome"},
		greetdResponse{Type: respAuthMessage, AuthMessageType: authSecret, AuthMessage: "Password:"},
		greetdResponse{Type: respSuccess},
		greetdResponse{Type: respSuccess},
	)

	g := &Greetd{Socket: path, Command: []string{"sway"}}
	err := g.Login(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	reqs := wait(t, got)
	require.Len(t, reqs, 4)

	assert.Equal(t, reqCreateSession, reqs[0].Type)
	assert.Equal(t, "alice", reqs[0].Username)

	assert.Equal(t, reqPostAuthMessage, reqs[1].Type)
	assert.Nil(t, reqs[1].Response, "info messages are acknowledged without a response")

	assert.Equal(t, reqPostAuthMessage, reqs[2].Type)
	require.NotNil(t, reqs[2].Response)
	assert.Equal(t, "hunter2", *reqs[2].Response)

	assert.Equal(t, reqStartSession, reqs[3].Type)
	assert.Equal(t, []string{"sway"}, reqs[3].Cmd)
}

func TestGreetdAuthErrorCancels(t *testing.T) {
	path, got := fakeGreetd(t,
		greetdResponse{Type: respAuthMessage, AuthMessageType: authSecret},
		greetdResponse{Type: respError, ErrorType: "auth_error", Description: "bad password"},
	)

	g := &Greetd{Socket: path, Command: []string{"sway"}}
	err := g.Login(context.Background(), "alice", "wrong")

	var gerr *GreetdError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "auth_error", gerr.ErrorType)

	reqs := wait(t, got)
	require.NotEmpty(t, reqs)
	assert.Equal(t, reqCancelSession, reqs[len(reqs)-1].Type)
}

func TestGreetdMissingSocket(t *testing.T) {
	t.Setenv(SocketEnv, "")

	g := &Greetd{Command: []string{"sway"}}
	err := g.Login(context.Background(), "alice", "pw")
	assert.Error(t, err)
}

func TestGreetdSocketFromEnv(t *testing.T) {
	path, got := fakeGreetd(t)
	t.Setenv(SocketEnv, path)

	g := &Greetd{Command: []string{"sh"}}
	require.NoError(t, g.Login(context.Background(), "bob", "pw"))

	reqs := wait(t, got)
	require.Len(t, reqs, 2)
	assert.Equal(t, reqStartSession, reqs[1].Type)
}

func TestFrameRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	go func() {
		_ = writeFrame(a, greetdRequest{Type: reqCreateSession, Username: "alice"})
	}()

	var req greetdRequest
	require.NoError(t, readFrame(b, &req))
	assert.Equal(t, "alice", req.Username)
}
