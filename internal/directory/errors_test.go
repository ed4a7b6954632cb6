package directory

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

func errorsAs(err error, target interface{}) bool {
	return errors.As(err, target)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), ErrTypeTimeout},
		{"net timeout", &net.OpError{Op: "read", Err: timeoutErr{}}, ErrTypeTimeout},
		{"dns", &net.DNSError{Name: "directory.invalid", Err: "no such host"}, ErrTypeTransport},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, ErrTypeTransport},
		{"other", errors.New("boom"), ErrTypeTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyTransportError(tt.err)
			if got.Type != tt.want {
				t.Errorf("ClassifyTransportError(%v).Type = %v, want %v", tt.err, got.Type, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error should wrap the original")
			}
		})
	}

	if ClassifyTransportError(nil) != nil {
		t.Error("nil error should classify as nil")
	}
}

func TestRequestErrorState(t *testing.T) {
	tests := []struct {
		typ      ErrorType
		greeter  State
		upstream State
	}{
		{ErrTypeHTTP, -5, 0},
		{ErrTypeTransport, -6, -1},
		{ErrTypeTimeout, -7, -3},
		{ErrTypeParse, -6, -4},
	}
	for _, tt := range tests {
		e := &RequestError{Type: tt.typ}
		if got := e.State(GreeterCodes); got != tt.greeter {
			t.Errorf("%v greeter state = %d, want %d", tt.typ, got, tt.greeter)
		}
		if got := e.State(UpstreamCodes); got != tt.upstream {
			t.Errorf("%v upstream state = %d, want %d", tt.typ, got, tt.upstream)
		}
	}
}

func TestRequestErrorMessage(t *testing.T) {
	e := NewHTTPError(502, "unexpected status code: 502")
	if e.Error() != "HTTP Error: unexpected status code: 502" {
		t.Errorf("Error() = %q", e.Error())
	}
	wrapped := &RequestError{Type: ErrTypeTimeout, Message: "request timed out", Err: context.DeadlineExceeded}
	if wrapped.Error() != "Timeout: request timed out (caused by: context deadline exceeded)" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}
