package directory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/muurk/tapauth/internal/logging"
)

// DefaultTimeout bounds the wait for any single request
const DefaultTimeout = 10 * time.Second

// Outcome classifies how a request ended
type Outcome int

const (
	// OutcomeOK is a 2xx answer. Its body may still be unparseable.
	OutcomeOK Outcome = iota
	// OutcomeRejected is a non-2xx answer with a decodable body
	OutcomeRejected
	// OutcomeFailed is a transport failure, a timeout or an unusable HTTP
	// error. The response is synthesized.
	OutcomeFailed
)

// String returns the outcome name used in logs
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the single outcome of one request
type Result struct {
	Action   Action
	Outcome  Outcome
	Response Response
	Err      error
}

// OK reports whether the service answered with a 2xx status
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}

// Client sends JSON requests to a single directory endpoint. It makes at most
// one delivery attempt per call and never retries.
type Client struct {
	// URL is the endpoint every request is POSTed to
	URL string

	// Codes are the states synthesized for failed requests
	Codes Codes

	http *resty.Client
}

// NewClient creates a client for the endpoint at url using GreeterCodes and
// DefaultTimeout.
func NewClient(url string) *Client {
	r := resty.New().
		SetTimeout(DefaultTimeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		URL:   url,
		Codes: GreeterCodes,
		http:  r,
	}
}

// SetTimeout sets the request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.http.SetTimeout(timeout)
}

// SetUserAgent sets the User-Agent header of every request
func (c *Client) SetUserAgent(ua string) {
	c.http.SetHeader("User-Agent", ua)
}

// Timeout returns the configured request timeout
func (c *Client) Timeout() time.Duration {
	return c.http.GetClient().Timeout
}

// SetCodes sets the states synthesized for failed requests
func (c *Client) SetCodes(codes Codes) {
	c.Codes = codes
}

// Do sends action with fields and returns its single result
func (c *Client) Do(ctx context.Context, action Action, fields Fields) Result {
	payload := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload[FieldAction] = string(action)

	logging.LogRequest(string(action), fields[FieldUID])

	result := c.Post(ctx, payload)
	result.Action = action

	outcome := result.Outcome.String()
	if !result.Response.Parsed() {
		outcome += "/unparseable"
	}
	logging.LogResponse(string(action), int(result.Response.State), outcome)
	return result
}

// Go runs Do as an asynchronous task. The returned channel delivers exactly
// one Result and is then closed.
func (c *Client) Go(ctx context.Context, action Action, fields Fields) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- c.Do(ctx, action, fields)
	}()
	return out
}

// Post sends payload as a JSON body and classifies the answer. It is the
// building block for Do and for the bridge's upstream calls, which use a
// different payload shape.
func (c *Client) Post(ctx context.Context, payload interface{}) Result {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.URL)
	if err != nil {
		reqErr := ClassifyTransportError(err)
		return Result{
			Outcome:  OutcomeFailed,
			Response: Synthesize(reqErr.State(c.Codes)),
			Err:      reqErr,
		}
	}

	decoded := Decode(resp.Body())
	status := resp.StatusCode()

	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		var perr error
		if !decoded.Parsed() {
			perr = NewParseError(decoded.Reason)
		}
		return Result{Outcome: OutcomeOK, Response: decoded, Err: perr}
	}

	if decoded.Parsed() {
		return Result{
			Outcome:  OutcomeRejected,
			Response: decoded,
			Err:      NewHTTPError(status, fmt.Sprintf("request rejected with status %d", status)),
		}
	}

	httpErr := NewHTTPError(status, fmt.Sprintf("unexpected status code: %d", status))
	return Result{
		Outcome:  OutcomeFailed,
		Response: Synthesize(httpErr.State(c.Codes)),
		Err:      httpErr,
	}
}
