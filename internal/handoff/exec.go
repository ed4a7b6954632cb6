package handoff

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Exec runs Command with the username appended as the last argument. The
// password is written to stdin followed by a newline.
type Exec struct {
	Command []string
}

func (e *Exec) Name() string { return string(ModeExec) }

func (e *Exec) Login(ctx context.Context, username, password string) error {
	if len(e.Command) == 0 {
		return fmt.Errorf("no command configured")
	}

	args := append(append([]string{}, e.Command[1:]...), username)
	cmd := exec.CommandContext(ctx, e.Command[0], args...)
	cmd.Stdin = strings.NewReader(password + "\n")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", e.Command[0], err, msg)
		}
		return fmt.Errorf("%s: %w", e.Command[0], err)
	}
	return nil
}
