package bridge

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/tapauth/internal/handoff"
	"github.com/muurk/tapauth/internal/logging"
)

// Provisioner creates or updates the local account for a user upstream
// accepted.
type Provisioner interface {
	Provision(ctx context.Context, username, password string) error
}

// ExecProvisioner runs a command with the username as last argument and the
// password on stdin.
type ExecProvisioner struct {
	exec handoff.Exec
}

func NewExecProvisioner(command []string) *ExecProvisioner {
	return &ExecProvisioner{exec: handoff.Exec{Command: command}}
}

func (p *ExecProvisioner) Provision(ctx context.Context, username, password string) error {
	return p.exec.Login(ctx, username, password)
}

// NopProvisioner only logs
type NopProvisioner struct{}

func (NopProvisioner) Provision(ctx context.Context, username, password string) error {
	logging.Debug("Provisioning skipped", zap.String("username", username))
	return nil
}

// Reader reports the UID of the card currently on the reader, or "" when
// there is none.
type Reader interface {
	Present(ctx context.Context) (string, error)
}

// CommandReader asks an external program for the current UID. The program
// prints the UID on stdout, or nothing when no card is present.
type CommandReader struct {
	Command []string
}

func (c *CommandReader) Present(ctx context.Context) (string, error) {
	if len(c.Command) == 0 {
		return "", fmt.Errorf("no reader command configured")
	}
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Command[0], c.Command[1:]...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w", c.Command[0], err)
	}
	return cleanUID(stdout.String()), nil
}

// cleanUID keeps the first line of reader output without separators
func cleanUID(out string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	line = strings.TrimSpace(line)
	return strings.NewReplacer(":", "", " ", "").Replace(strings.ToUpper(line))
}
