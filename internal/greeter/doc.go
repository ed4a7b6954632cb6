// Package greeter is the terminal login screen.
//
// The model owns a session.Session and never decides anything itself: key
// presses, card reads and request completions become flow events, and the
// effects returned by flow.Step become commands. Directory requests run as
// tea.Cmd and come back as completion messages carrying their sequence
// number, so a completion for a request abandoned with Esc is recognised and
// dropped by the controller.
//
// Key bindings:
//
//	enter      submit the focused field
//	tab/down   next field
//	shift+tab  previous field
//	esc        back to the login screen
//	ctrl+c     quit
//
// Card reads arrive either as keyboard input (HID readers type the UID into
// the focused field) or from a bridge card feed passed as Options.Cards.
package greeter
