package directory

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// ErrorType represents the category of a request failure
type ErrorType int

const (
	// ErrTypeHTTP indicates a non-2xx answer without a usable body
	ErrTypeHTTP ErrorType = iota
	// ErrTypeTransport indicates the request never reached the service
	ErrTypeTransport
	// ErrTypeTimeout indicates no answer arrived within the timeout
	ErrTypeTimeout
	// ErrTypeParse indicates a 2xx answer whose body could not be decoded
	ErrTypeParse
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeParse:
		return "Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// RequestError describes why a request produced no usable response
type RequestError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates an error for an unusable non-2xx answer
func NewHTTPError(statusCode int, message string) *RequestError {
	return &RequestError{Type: ErrTypeHTTP, Message: message, StatusCode: statusCode}
}

// NewParseError creates an error for an undecodable body
func NewParseError(message string) *RequestError {
	return &RequestError{Type: ErrTypeParse, Message: message}
}

// ClassifyTransportError sorts a transport-level error into timeout or
// transport failures.
func ClassifyTransportError(err error) *RequestError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &RequestError{Type: ErrTypeTimeout, Message: "request timed out", Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &RequestError{Type: ErrTypeTimeout, Message: "request timed out", Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &RequestError{
			Type:    ErrTypeTransport,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &RequestError{Type: ErrTypeTransport, Message: "connection refused", Err: err}
	}

	return &RequestError{Type: ErrTypeTransport, Message: "request failed", Err: err}
}

// State maps the error onto the synthesized code space of codes
func (e *RequestError) State(codes Codes) State {
	switch e.Type {
	case ErrTypeHTTP:
		return codes.HTTP
	case ErrTypeTimeout:
		return codes.Timeout
	case ErrTypeTransport:
		return codes.Transport
	default:
		return codes.Other
	}
}

// IsTimeout reports whether err is a request timeout
func IsTimeout(err error) bool {
	return hasType(err, ErrTypeTimeout)
}

// IsHTTPError reports whether err is an unusable HTTP answer
func IsHTTPError(err error) bool {
	return hasType(err, ErrTypeHTTP)
}

// IsTransportError reports whether err is a delivery failure
func IsTransportError(err error) bool {
	return hasType(err, ErrTypeTransport)
}

func hasType(err error, t ErrorType) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Type == t
	}
	return false
}
