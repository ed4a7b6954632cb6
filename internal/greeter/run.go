package greeter

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/tapauth/internal/bridge"
	"github.com/muurk/tapauth/internal/logging"
)

// Run shows the greeter until the user quits or ctx is cancelled
func Run(ctx context.Context, opts Options) error {
	opts.Context = ctx
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("greeter: %w", err)
	}
	return nil
}

// CardFeed follows a bridge card feed and yields the UIDs it reports
func CardFeed(ctx context.Context, url string) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for ev := range bridge.Subscribe(ctx, url) {
			if ev.UID == "" {
				continue
			}
			select {
			case out <- ev.UID:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func warnRemember(err error) {
	logging.Warn("Failed to remember last user", zap.Error(err))
}
