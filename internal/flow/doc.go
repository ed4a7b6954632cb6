// Package flow is the authentication flow controller.
//
// The controller is a pure transition function over session values:
//
//	res := flow.Step(sess, flow.Submit{Kind: flow.KindUsernameSubmit, Inputs: in})
//	sess = res.Session
//	for _, eff := range res.Effects {
//	    switch eff := eff.(type) {
//	    case flow.Request:  // send it, then Step(sess, flow.Completed{Seq: eff.Seq, Result: r})
//	    case flow.Handoff:  // pass credentials to the OS login mechanism
//	    }
//	}
//
// # Modes
//
// A session is in exactly one of login, PIN challenge, register or change
// password. Only Step changes the mode.
//
// # Check responses
//
// States are matched in a fixed order: the actionable states (6 known,
// 7 unknown, 17 expired, 20 banned) first, then the connectivity family
// (0, -1, -3, -4 and the locally synthesized -5, -6, -7), then a local
// decision based on which login field issued the check. Unknown positive
// states are never treated as success.
//
// # Requests in flight
//
// At most one request is pending per session. Submissions and card events
// that arrive while a request is pending are refused with the busy message.
// A completion is applied only if its sequence number matches the pending
// request, so answers that arrive after a back action are dropped.
//
// # PIN match
//
// A matching PIN sends one auth request for the cached card. When it
// completes, whatever the outcome, the cached credentials are handed off; the
// OS login mechanism verifies them again.
package flow
