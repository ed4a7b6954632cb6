// Package directory is the client side of the card directory contract.
//
// Every call is a single JSON POST to one endpoint and ends in exactly one
// Result:
//
//   - OutcomeOK: the service answered 2xx. The Response may still be
//     unparseable if the body had no integer State.
//   - OutcomeRejected: the service answered non-2xx with a decodable body.
//   - OutcomeFailed: HTTP error without a usable body, transport error or
//     timeout. The Response is synthesized from the client's Codes so callers
//     see one uniform state space.
//
// # Actions
//
//	action           fields
//	check            UID
//	auth             UID
//	register         UID, Username, Password, Pin
//	change_password  UID, Username, OldPassword, Password
//
// # Asynchronous use
//
// Go runs a request as a task and delivers its Result on a channel, which is
// how the greeter keeps its event loop free while a request is in flight:
//
//	res := <-client.Go(ctx, directory.ActionCheck, directory.Fields{
//	    directory.FieldUID: uid,
//	})
//
// The client never retries. A timed out request is reported as
// StateClientTimeout and the user resubmits.
package directory
