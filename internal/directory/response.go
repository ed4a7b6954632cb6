package directory

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResponseKind tags a decoded Response
type ResponseKind int

const (
	// KindUnparseable means the body was not a JSON object with an integer State
	KindUnparseable ResponseKind = iota
	// KindDecoded means State and any credentials are valid
	KindDecoded
)

// Response is the result of decoding a directory response body. Only
// responses of KindDecoded carry a meaningful State.
type Response struct {
	Kind  ResponseKind
	State State

	// Username, Password and Pin are present only for StateKnown
	Username string
	Password string
	Pin      string

	// Info carries the optional "Info" or "Error" text of the body
	Info string

	// Synthesized is set when the Client produced the response itself
	Synthesized bool

	// Reason explains why a body was unparseable
	Reason string
}

// Parsed reports whether the response carries a valid State
func (r Response) Parsed() bool {
	return r.Kind == KindDecoded
}

// StateOr returns the state of a parsed response or fallback otherwise
func (r Response) StateOr(fallback State) State {
	if r.Parsed() {
		return r.State
	}
	return fallback
}

// Synthesize builds the response the Client reports for a failure
func Synthesize(state State) Response {
	return Response{Kind: KindDecoded, State: state, Synthesized: true}
}

// Unparseable builds a response that carries only a reason
func Unparseable(reason string) Response {
	return Response{Kind: KindUnparseable, Reason: reason}
}

type wireResponse struct {
	State    json.RawMessage `json:"State"`
	Username *string         `json:"Username,omitempty"`
	Password *string         `json:"Password,omitempty"`
	Pin      *string         `json:"Pin,omitempty"`
	Info     string          `json:"Info,omitempty"`
	Error    string          `json:"Error,omitempty"`
}

// Decode strictly decodes a response body. A body that is not a JSON object,
// or whose State is missing, null or not an integer, decodes as
// KindUnparseable.
func Decode(body []byte) Response {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Unparseable("empty body")
	}

	var wire wireResponse
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return Unparseable(fmt.Sprintf("invalid JSON: %v", err))
	}

	if len(wire.State) == 0 || bytes.Equal(wire.State, []byte("null")) {
		return Unparseable("missing State")
	}

	var state int
	if err := json.Unmarshal(wire.State, &state); err != nil {
		return Unparseable(fmt.Sprintf("State is not an integer: %s", string(wire.State)))
	}

	resp := Response{
		Kind:  KindDecoded,
		State: State(state),
		Info:  wire.Info,
	}
	if resp.Info == "" {
		resp.Info = wire.Error
	}
	if wire.Username != nil {
		resp.Username = *wire.Username
	}
	if wire.Password != nil {
		resp.Password = *wire.Password
	}
	if wire.Pin != nil {
		resp.Pin = *wire.Pin
	}

	return resp
}

// Wire returns r in its JSON shape. Unparseable responses map to an empty
// object, the same thing the bridge answers for unknown actions.
func (r Response) Wire() map[string]interface{} {
	out := map[string]interface{}{}
	if !r.Parsed() {
		return out
	}
	out["State"] = int(r.State)
	if r.State == StateKnown {
		out[FieldUsername] = r.Username
		out[FieldPassword] = r.Password
		out[FieldPin] = r.Pin
	}
	if r.Info != "" {
		out["Info"] = r.Info
	}
	return out
}

// Encode renders r as a response body
func (r Response) Encode() []byte {
	data, _ := json.Marshal(r.Wire())
	return data
}
