// Package handoff passes credentials accepted by the greeter to the OS login
// mechanism.
//
// Three implementations are provided:
//
//   - Greetd speaks the greetd IPC protocol over the socket named by
//     GREETD_SOCK: create_session, answer the prompts with the password,
//     start_session with the configured command.
//   - Exec runs a command with the username as the last argument and the
//     password on stdin.
//   - DryRun only logs the username.
//
// The login screen does not wait for a hand-off before resetting. Fire runs it
// in the background, logs failures and reports the result on a channel.
//
// Usage:
//
//	h, err := handoff.New(handoff.Options{Mode: handoff.ModeGreetd, SessionCommand: []string{"sway"}})
//	if err != nil {
//	    return err
//	}
//	handoff.Fire(ctx, h, username, password)
package handoff
