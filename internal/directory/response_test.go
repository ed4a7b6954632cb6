package directory

import "testing"

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantKind  ResponseKind
		wantState State
	}{
		{"known card", `{"State":6,"Username":"alice","Password":"s3cret","Pin":"1234"}`, KindDecoded, StateKnown},
		{"unknown card", `{"State":7}`, KindDecoded, StateUnknown},
		{"negative state", `{"State":-3}`, KindDecoded, StateTimeout},
		{"zero state", `{"State":0}`, KindDecoded, StateHTTPError},
		{"extra fields ignored", `{"State":17,"Extra":[1,2]}`, KindDecoded, StateExpired},
		{"info text", `{"Info":"Manually logging in...","State":-2}`, KindDecoded, StateManualLogin},
		{"missing state", `{"Username":"alice"}`, KindUnparseable, 0},
		{"null state", `{"State":null}`, KindUnparseable, 0},
		{"string state", `{"State":"6"}`, KindUnparseable, 0},
		{"float state", `{"State":6.5}`, KindUnparseable, 0},
		{"empty object", `{}`, KindUnparseable, 0},
		{"empty body", ``, KindUnparseable, 0},
		{"not json", `<html>502</html>`, KindUnparseable, 0},
		{"array", `[6]`, KindUnparseable, 0},
		{"wrong credential type", `{"State":6,"Pin":1234}`, KindUnparseable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode([]byte(tt.body))
			if got.Kind != tt.wantKind {
				t.Fatalf("Decode(%q).Kind = %v, want %v (reason %q)", tt.body, got.Kind, tt.wantKind, got.Reason)
			}
			if got.Parsed() && got.State != tt.wantState {
				t.Errorf("Decode(%q).State = %v, want %v", tt.body, got.State, tt.wantState)
			}
			if !got.Parsed() && got.Reason == "" {
				t.Error("unparseable response should carry a reason")
			}
		})
	}
}

func TestDecodeKnownCredentialsVerbatim(t *testing.T) {
	got := Decode([]byte(`{"State":6,"Username":" alice ","Password":"p@ss word","Pin":"0042"}`))

	if got.Username != " alice " || got.Password != "p@ss word" || got.Pin != "0042" {
		t.Errorf("credentials not kept verbatim: %+v", got)
	}
}

func TestDecodeErrorText(t *testing.T) {
	got := Decode([]byte(`{"Error":"Unknown request.","State":-1}`))
	if got.Info != "Unknown request." {
		t.Errorf("Info = %q, want the Error text", got.Info)
	}
}

func TestResponseEncodeRoundTripsKnown(t *testing.T) {
	in := Response{Kind: KindDecoded, State: StateKnown, Username: "bob", Password: "pw", Pin: "9999"}
	out := Decode(in.Encode())

	if out.State != StateKnown || out.Username != "bob" || out.Password != "pw" || out.Pin != "9999" {
		t.Errorf("Decode(Encode()) = %+v", out)
	}
}

func TestResponseEncodeOmitsCredentialsUnlessKnown(t *testing.T) {
	in := Response{Kind: KindDecoded, State: StateUnknown, Username: "leak"}
	if got := string(in.Encode()); got != `{"State":7}` {
		t.Errorf("Encode() = %s, want {\"State\":7}", got)
	}
	if got := string(Unparseable("x").Encode()); got != "{}" {
		t.Errorf("unparseable Encode() = %s, want {}", got)
	}
}

func TestStateOr(t *testing.T) {
	if got := Unparseable("x").StateOr(StateClientHTTPError); got != StateClientHTTPError {
		t.Errorf("StateOr on unparseable = %v", got)
	}
	if got := Synthesize(StateClientTimeout).StateOr(0); got != StateClientTimeout {
		t.Errorf("StateOr on synthesized = %v", got)
	}
}
