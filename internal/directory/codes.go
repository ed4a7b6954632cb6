package directory

import "fmt"

// State is a status code from the directory vocabulary. Positive values are
// business outcomes reported by the service; zero and negative values are
// connectivity classes, some reported by the bridge and some synthesized
// locally by the Client.
type State int

const (
	// StateSucceeded reports a successful register or change_password
	StateSucceeded State = 3
	// StateKnown reports a known card that needs a PIN. The response carries
	// Username, Password and Pin.
	StateKnown State = 6
	// StateUnknown reports an unknown card that must be registered
	StateUnknown State = 7
	// StateExpired reports valid but expired credentials
	StateExpired State = 17
	// StateBanned reports a banned card
	StateBanned State = 20

	// StateHTTPError is reported when the upstream answered with an HTTP error
	StateHTTPError State = 0
	// StateConnectionError is reported when the upstream could not be reached
	StateConnectionError State = -1
	// StateManualLogin is reported by bridges that saw no card on the reader
	StateManualLogin State = -2
	// StateTimeout is reported when the upstream did not answer in time
	StateTimeout State = -3
	// StateRequestError is reported for any other upstream request failure
	StateRequestError State = -4

	// StateClientHTTPError is synthesized for a non-2xx answer without a usable body
	StateClientHTTPError State = -5
	// StateClientTransportError is synthesized when the request could not be delivered
	StateClientTransportError State = -6
	// StateClientTimeout is synthesized when no answer arrived within the timeout
	StateClientTimeout State = -7
)

// Request states sent upstream by the bridge in place of an action name.
const (
	UpstreamCheck          State = 1
	UpstreamRegister       State = 2
	UpstreamChangePassword State = 18
)

// IsConnectivityError reports whether s belongs to the transport/server error
// family, whether reported remotely or synthesized by the Client.
func (s State) IsConnectivityError() bool {
	switch s {
	case StateHTTPError, StateConnectionError, StateTimeout, StateRequestError,
		StateClientHTTPError, StateClientTransportError, StateClientTimeout:
		return true
	}
	return false
}

// String returns a short human-readable meaning for the state
func (s State) String() string {
	switch s {
	case StateSucceeded:
		return "succeeded"
	case StateKnown:
		return "known, PIN required"
	case StateUnknown:
		return "unknown, registration required"
	case StateExpired:
		return "expired, password change required"
	case StateBanned:
		return "banned"
	case StateHTTPError:
		return "upstream HTTP error"
	case StateConnectionError:
		return "upstream connection error"
	case StateManualLogin:
		return "no card, manual login"
	case StateTimeout:
		return "upstream timeout"
	case StateRequestError:
		return "upstream request error"
	case StateClientHTTPError:
		return "HTTP error"
	case StateClientTransportError:
		return "transport error"
	case StateClientTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Codes is the set of states a Client synthesizes for failures that never
// produced a usable response body.
type Codes struct {
	HTTP      State
	Transport State
	Timeout   State
	Other     State
}

// GreeterCodes are used by the greeter when talking to its bridge. They never
// collide with anything a server sends.
var GreeterCodes = Codes{
	HTTP:      StateClientHTTPError,
	Transport: StateClientTransportError,
	Timeout:   StateClientTimeout,
	Other:     StateClientTransportError,
}

// UpstreamCodes are used by the bridge when talking to the remote directory.
// They are relayed to the greeter as server-reported connectivity classes.
var UpstreamCodes = Codes{
	HTTP:      StateHTTPError,
	Transport: StateConnectionError,
	Timeout:   StateTimeout,
	Other:     StateRequestError,
}

// Action names the operation requested from the bridge
type Action string

const (
	ActionCheck          Action = "check"
	ActionAuth           Action = "auth"
	ActionRegister       Action = "register"
	ActionChangePassword Action = "change_password"
)

// Wire field names
const (
	FieldAction      = "action"
	FieldUID         = "UID"
	FieldUsername    = "Username"
	FieldPassword    = "Password"
	FieldPin         = "Pin"
	FieldOldPassword = "OldPassword"
)

// RequiredFields lists the fields each action must carry
var RequiredFields = map[Action][]string{
	ActionCheck:          {FieldUID},
	ActionAuth:           {FieldUID},
	ActionRegister:       {FieldUID, FieldUsername, FieldPassword, FieldPin},
	ActionChangePassword: {FieldUID, FieldUsername, FieldOldPassword, FieldPassword},
}

// Valid reports whether a is one of the known actions
func (a Action) Valid() bool {
	_, ok := RequiredFields[a]
	return ok
}

// Fields is the flat key to string mapping sent with an action
type Fields map[string]string

// Missing returns the required fields of action that are absent from f.
// Empty values count as present; emptiness is checked before a request is
// built.
func (f Fields) Missing(action Action) []string {
	var missing []string
	for _, name := range RequiredFields[action] {
		if _, ok := f[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
