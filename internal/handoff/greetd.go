package handoff

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"

	"go.uber.org/zap"

	"github.com/muurk/tapauth/internal/logging"
)

// SocketEnv names the environment variable greetd sets for its greeter
const SocketEnv = "GREETD_SOCK"

// maxFrame caps a single greetd message
const maxFrame = 1 << 20

// greetd message types
const (
	reqCreateSession   = "create_session"
	reqPostAuthMessage = "post_auth_message_response"
	reqStartSession    = "start_session"
	reqCancelSession   = "cancel_session"

	respSuccess     = "success"
	respError       = "error"
	respAuthMessage = "auth_message"

	authVisible = "visible"
	authSecret  = "secret"
	authInfo    = "info"
	authError   = "error"
)

type greetdRequest struct {
	Type     string   `json:"type"`
	Username string   `json:"username,omitempty"`
	Response *string  `json:"response,omitempty"`
	Cmd      []string `json:"cmd,omitempty"`
	Env      []string `json:"env,omitempty"`
}

type greetdResponse struct {
	Type            string `json:"type"`
	ErrorType       string `json:"error_type,omitempty"`
	Description     string `json:"description,omitempty"`
	AuthMessageType string `json:"auth_message_type,omitempty"`
	AuthMessage     string `json:"auth_message,omitempty"`
}

// GreetdError is an error response from greetd
type GreetdError struct {
	ErrorType   string
	Description string
}

func (e *GreetdError) Error() string {
	return fmt.Sprintf("greetd %s: %s", e.ErrorType, e.Description)
}

// Greetd hands credentials to greetd. Every secret or visible prompt is
// answered with the password.
type Greetd struct {
	// Socket is the greetd socket path. Empty means $GREETD_SOCK.
	Socket string

	// Command is the session command started on success
	Command []string
	Env     []string
}

func (g *Greetd) Name() string { return string(ModeGreetd) }

func (g *Greetd) socketPath() (string, error) {
	if g.Socket != "" {
		return g.Socket, nil
	}
	if p := os.Getenv(SocketEnv); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("%s is not set", SocketEnv)
}

func (g *Greetd) Login(ctx context.Context, username, password string) error {
	path, err := g.socketPath()
	if err != nil {
		return err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return fmt.Errorf("failed to connect to greetd: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := g.login(conn, username, password); err != nil {
		if _, cerr := roundTrip(conn, greetdRequest{Type: reqCancelSession}); cerr != nil {
			logging.Debug("greetd cancel_session failed", zap.Error(cerr))
		}
		return err
	}
	return nil
}

func (g *Greetd) login(conn io.ReadWriter, username, password string) error {
	resp, err := roundTrip(conn, greetdRequest{Type: reqCreateSession, Username: username})
	if err != nil {
		return err
	}

	for resp.Type == respAuthMessage {
		req := greetdRequest{Type: reqPostAuthMessage}
		switch resp.AuthMessageType {
		case authSecret, authVisible:
			req.Response = &password
		case authInfo, authError:
			logging.Debug("greetd auth message",
				zap.String("type", resp.AuthMessageType),
				zap.String("message", resp.AuthMessage),
			)
		default:
			return fmt.Errorf("unexpected greetd auth message type %q", resp.AuthMessageType)
		}

		if resp, err = roundTrip(conn, req); err != nil {
			return err
		}
	}

	if err := expectSuccess(resp); err != nil {
		return err
	}

	resp, err = roundTrip(conn, greetdRequest{Type: reqStartSession, Cmd: g.Command, Env: g.Env})
	if err != nil {
		return err
	}
	return expectSuccess(resp)
}

func expectSuccess(resp greetdResponse) error {
	switch resp.Type {
	case respSuccess:
		return nil
	case respError:
		return &GreetdError{ErrorType: resp.ErrorType, Description: resp.Description}
	}
	return fmt.Errorf("unexpected greetd response %q", resp.Type)
}

func roundTrip(conn io.ReadWriter, req greetdRequest) (greetdResponse, error) {
	var resp greetdResponse
	if err := writeFrame(conn, req); err != nil {
		return resp, fmt.Errorf("failed to send %s: %w", req.Type, err)
	}
	if err := readFrame(conn, &resp); err != nil {
		return resp, fmt.Errorf("failed to read reply to %s: %w", req.Type, err)
	}
	return resp, nil
}

// writeFrame writes v as a native-endian u32 length followed by JSON
func writeFrame(w io.Writer, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	frame := make([]byte, 4+len(payload))
	binary.NativeEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[4:], payload)
	_, err = w.Write(frame)
	return err
}

func readFrame(r io.Reader, v interface{}) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	n := binary.NativeEndian.Uint32(header[:])
	if n > maxFrame {
		return fmt.Errorf("frame too large: %d bytes", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return err
	}
	return json.Unmarshal(payload, v)
}
