package handoff

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/tapauth/internal/logging"
)

// Mode selects the Handoff implementation
type Mode string

const (
	ModeGreetd Mode = "greetd"
	ModeExec   Mode = "exec"
	ModeDryRun Mode = "dryrun"
)

// DefaultTimeout bounds a single background hand-off
const DefaultTimeout = 30 * time.Second

// Handoff logs a user in with the given credentials
type Handoff interface {
	Login(ctx context.Context, username, password string) error
	Name() string
}

// Options configures New
type Options struct {
	Mode Mode

	// Command is the program run by ModeExec
	Command []string

	// SessionCommand is the session started by ModeGreetd
	SessionCommand []string

	// Socket overrides GREETD_SOCK for ModeGreetd
	Socket string
}

// New builds the Handoff selected by opts.Mode
func New(opts Options) (Handoff, error) {
	switch opts.Mode {
	case ModeGreetd:
		if len(opts.SessionCommand) == 0 {
			return nil, fmt.Errorf("greetd hand-off needs a session command")
		}
		return &Greetd{Socket: opts.Socket, Command: opts.SessionCommand}, nil
	case ModeExec:
		if len(opts.Command) == 0 {
			return nil, fmt.Errorf("exec hand-off needs a command")
		}
		return &Exec{Command: opts.Command}, nil
	case ModeDryRun, "":
		return DryRun{}, nil
	}
	return nil, fmt.Errorf("unknown hand-off mode %q", opts.Mode)
}

// Fire runs h in the background. The returned channel receives the result of
// the login once and is then closed; callers are free to ignore it.
func Fire(ctx context.Context, h Handoff, username, password string) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)

		ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()

		start := time.Now()
		if err := h.Login(ctx, username, password); err != nil {
			logging.Error("Hand-off failed",
				zap.String("handoff", h.Name()),
				zap.String("username", username),
				zap.Error(err),
			)
			done <- err
			return
		}
		logging.Info("Hand-off complete",
			zap.String("handoff", h.Name()),
			zap.String("username", username),
			zap.Duration("took", time.Since(start)),
		)
		done <- nil
	}()
	return done
}

// DryRun logs the hand-off and does nothing else
type DryRun struct{}

func (DryRun) Name() string { return string(ModeDryRun) }

func (DryRun) Login(ctx context.Context, username, password string) error {
	logging.Info("Dry-run hand-off", zap.String("username", username), zap.Bool("password_set", password != ""))
	return nil
}
