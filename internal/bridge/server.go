package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/tapauth/internal/directory"
	"github.com/muurk/tapauth/internal/discovery"
	"github.com/muurk/tapauth/internal/logging"
	"github.com/muurk/tapauth/internal/version"
)

// Defaults for Config
const (
	DefaultListen          = "127.0.0.1:30080"
	DefaultUpstreamTimeout = 5 * time.Second
	DefaultUIDTTL          = time.Second
	shutdownTimeout        = 10 * time.Second
)

// Config holds the bridge configuration
type Config struct {
	Listen          string
	UpstreamURL     string
	UpstreamTimeout time.Duration
	UIDTTL          time.Duration

	// Advertise registers the bridge over mDNS under Name
	Advertise bool
	Name      string
	Version   string
}

// Server is a running bridge
type Server struct {
	config      Config
	upstream    *directory.Client
	active      *ActiveSet
	hub         *Hub
	provisioner Provisioner
	reader      Reader

	listener net.Listener
	http     *http.Server
}

// Option customises a Server
type Option func(*Server)

// WithProvisioner sets the account provisioner. The default only logs.
func WithProvisioner(p Provisioner) Option {
	return func(s *Server) { s.provisioner = p }
}

// WithReader makes check requests consult the card reader first
func WithReader(r Reader) Option {
	return func(s *Server) { s.reader = r }
}

// New creates a bridge. It does not listen until Run.
func New(config Config, opts ...Option) (*Server, error) {
	if config.UpstreamURL == "" {
		return nil, fmt.Errorf("upstream URL is required")
	}
	if config.Listen == "" {
		config.Listen = DefaultListen
	}
	if config.UpstreamTimeout <= 0 {
		config.UpstreamTimeout = DefaultUpstreamTimeout
	}
	if config.UIDTTL <= 0 {
		config.UIDTTL = DefaultUIDTTL
	}
	if config.Version == "" {
		config.Version = version.Version
	}

	upstream := directory.NewClient(config.UpstreamURL)
	upstream.SetTimeout(config.UpstreamTimeout)
	upstream.SetCodes(directory.UpstreamCodes)
	upstream.SetUserAgent(version.UserAgent("bridge"))

	s := &Server{
		config:      config,
		upstream:    upstream,
		active:      NewActiveSet(config.UIDTTL),
		hub:         NewHub(),
		provisioner: NopProvisioner{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.http = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Active returns the active UID set
func (s *Server) Active() *ActiveSet {
	return s.active
}

// Addr returns the listening address once Run has started listening
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listen binds the configured address. Run calls it when needed.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	s.listener = ln
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	logging.Info("Starting tapauth bridge",
		zap.String("addr", s.listener.Addr().String()),
		zap.String("upstream", s.config.UpstreamURL),
		zap.Duration("uid_ttl", s.config.UIDTTL),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("bridge server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.reap(ctx)
		return nil
	})

	if s.config.Advertise {
		g.Go(func() error {
			return s.advertise(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return s.Shutdown(context.Background())
	})

	return g.Wait()
}

// reap expires idle UIDs and publishes the new count when it changed
func (s *Server) reap(ctx context.Context) {
	interval := s.config.UIDTTL / 2
	if interval < 100*time.Millisecond {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.active.Expire(); n > 0 {
				logging.Debug("UIDs expired", zap.Int("expired", n))
				s.hub.Publish(CountEvent(s.active.Count()))
			}
		}
	}
}

func (s *Server) advertise(ctx context.Context) error {
	_, port, err := net.SplitHostPort(s.listener.Addr().String())
	if err != nil {
		return err
	}
	var p int
	if _, err := fmt.Sscanf(port, "%d", &p); err != nil {
		return fmt.Errorf("invalid listen port %q: %w", port, err)
	}

	adv, err := discovery.Advertise(s.config.Name, p, s.config.Version)
	if err != nil {
		return err
	}
	logging.Info("Advertising bridge over mDNS",
		zap.String("name", s.config.Name),
		zap.String("service", discovery.ServiceType),
	)

	<-ctx.Done()
	adv.Shutdown()
	return nil
}

// Shutdown stops accepting requests and disconnects card feed subscribers
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down bridge...")

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	s.hub.Close()
	if err := s.http.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		return s.http.Close()
	}
	logging.Sync()
	return nil
}
