package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/tapauth/internal/bridge"
	"github.com/muurk/tapauth/internal/config"
	"github.com/muurk/tapauth/internal/logging"
)

// Serve command flags
var (
	configFile  string
	listenAddr  string
	upstreamURL string
	logLevel    string
	advertise   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bridge",
	Long: `Start the bridge HTTP server.

The upstream directory URL is required, either from the config file
(bridge.upstream_url), the TAPAUTH_BRIDGE__UPSTREAM_URL environment variable
or the --upstream flag.

When bridge.provision_command is set it is run after every successful check,
register and change_password answer, with the username as its last argument
and the password on stdin. When bridge.reader_command is set, check requests
first ask it whether a card is on the reader.`,
	Example: `  # Forward to a directory and listen on the default address
  tapauth-bridge serve --upstream https://cards.example.org/api

  # Listen on all interfaces and advertise over mDNS
  tapauth-bridge serve --listen 0.0.0.0:30080 --advertise

  # Debug logging
  tapauth-bridge serve --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configFile, "config", "", "Config file (default: tapauth config dir)")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default from config)")
	serveCmd.Flags().StringVar(&upstreamURL, "upstream", "", "Upstream directory URL")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Advertise the bridge over mDNS")
}

func runServe(cmd *cobra.Command, args []string) error {
	overrides := map[string]interface{}{}
	if cmd.Flags().Changed("log-level") {
		overrides["log.level"] = logLevel
	}
	if listenAddr != "" {
		overrides["bridge.listen"] = listenAddr
	}
	if upstreamURL != "" {
		overrides["bridge.upstream_url"] = upstreamURL
	}
	if cmd.Flags().Changed("advertise") {
		overrides["bridge.advertise"] = advertise
	}

	cfg, err := config.Load(config.Options{File: configFile, Overrides: overrides})
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if level == "" {
		level = logLevel
	}
	if err := logging.InitializeWithOutput(level, cfg.Log.File); err != nil {
		return err
	}
	if cfg.Bridge.UpstreamURL == "" {
		return fmt.Errorf("no upstream directory: set bridge.upstream_url or pass --upstream")
	}

	var opts []bridge.Option
	if provision := cfg.Bridge.ProvisionArgs(); len(provision) > 0 {
		opts = append(opts, bridge.WithProvisioner(bridge.NewExecProvisioner(provision)))
	}
	if reader := cfg.Bridge.ReaderArgs(); len(reader) > 0 {
		opts = append(opts, bridge.WithReader(&bridge.CommandReader{Command: reader}))
	}

	srv, err := bridge.New(bridge.Config{
		Listen:          cfg.Bridge.Listen,
		UpstreamURL:     cfg.Bridge.UpstreamURL,
		UpstreamTimeout: cfg.Bridge.UpstreamTimeout,
		UIDTTL:          cfg.Bridge.UIDTTL,
		Advertise:       cfg.Bridge.Advertise,
		Name:            cfg.Bridge.Name,
	}, opts...)
	if err != nil {
		return fmt.Errorf("failed to create bridge: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
