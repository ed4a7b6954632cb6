// Package bridge implements the local relay between the greeter and the
// upstream card directory.
//
// The greeter POSTs {"UID", "action", ...} to the bridge:
//
//   - auth marks the UID active; the active set expires entries that were not
//     re-sent within the configured TTL
//   - check, register and change_password are forwarded upstream as
//     {"NFC_Code", "State": 1|2|18, ...} and the upstream answer is returned
//   - a missing UID answers 404 {"Error":"Unknown request.","State":-1}; a
//     missing or unknown action answers 404 {}
//
// Upstream failures are reported with the upstream code family (0 HTTP,
// -1 connection, -3 timeout, -4 other). When upstream accepts an account
// (State 6 on check, 3 on register or change_password) the Provisioner is
// asked to create or update the local account.
//
// Card readers POST {"UID"} to /cards. Every read is streamed to websocket
// subscribers of /ws/cards as {"UID": "..."}; changes to the active set are
// streamed as {"Count": n}. GET /uids/count returns the active count.
//
// The bridge can advertise itself over mDNS so greeters find it with
// "tapauth-greeter scan".
package bridge
