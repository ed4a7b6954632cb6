package bridge

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/tapauth/internal/logging"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Subscribe follows the card feed at url, reconnecting with backoff until ctx
// is done. The channel is closed when Subscribe gives up.
func Subscribe(ctx context.Context, url string) <-chan CardEvent {
	out := make(chan CardEvent)
	go func() {
		defer close(out)

		backoff := minBackoff
		for {
			connected, err := follow(ctx, url, out)
			if ctx.Err() != nil {
				return
			}
			if connected {
				backoff = minBackoff
			}
			logging.Debug("Card feed disconnected",
				zap.String("url", url),
				zap.Duration("retry_in", backoff),
				zap.Error(err),
			)

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}()
	return out
}

// follow reads one connection until it fails. It reports whether the dial
// succeeded.
func follow(ctx context.Context, url string, out chan<- CardEvent) (bool, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return false, err
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	for {
		var ev CardEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return true, err
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return true, ctx.Err()
		}
	}
}
