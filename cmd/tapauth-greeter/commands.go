package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/tapauth/internal/config"
	"github.com/muurk/tapauth/internal/directory"
	"github.com/muurk/tapauth/internal/discovery"
	"github.com/muurk/tapauth/internal/greeter"
	"github.com/muurk/tapauth/internal/handoff"
	"github.com/muurk/tapauth/internal/i18n"
	"github.com/muurk/tapauth/internal/logging"
	"github.com/muurk/tapauth/internal/version"
)

// Global flags
var (
	configFile   string
	directoryURL string
	logLevel     string
	scanTimeout  int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: tapauth config dir)")
	rootCmd.PersistentFlags().StringVar(&directoryURL, "directory", "", "Directory endpoint URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(scanCmd)
}

// loadConfig applies the command-line flags on top of the layered config
func loadConfig() (*config.Config, error) {
	overrides := map[string]interface{}{}
	if directoryURL != "" {
		overrides["directory.url"] = directoryURL
	}
	if logLevel != "" {
		overrides["log.level"] = logLevel
	}
	return config.Load(config.Options{File: configFile, Overrides: overrides})
}

func newDirectoryClient(cfg *config.Config) *directory.Client {
	client := directory.NewClient(cfg.Directory.URL)
	client.SetTimeout(cfg.Directory.Timeout)
	client.SetUserAgent(version.UserAgent("greeter"))
	return client
}

func runGreeter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the TUI, so logs only go to a file
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = os.DevNull
	}
	if err := logging.InitializeWithOutput(cfg.Log.Level, logFile); err != nil {
		return err
	}
	defer logging.Sync()

	target, err := handoff.New(handoff.Options{
		Mode:           handoff.Mode(cfg.Handoff.Mode),
		Command:        cfg.Handoff.CommandArgs(),
		SessionCommand: cfg.Handoff.SessionArgs(),
		Socket:         cfg.Handoff.Socket,
	})
	if err != nil {
		return err
	}

	var hint string
	if state, err := config.LoadState(); err != nil {
		logging.Warn("Failed to load greeter state", zap.Error(err))
	} else {
		hint = state.LastUser
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := greeter.Options{
		Requester: newDirectoryClient(cfg),
		Handoff:   target,
		Catalog:   i18n.Lookup(cfg.Greeter.Locale, os.Getenv("LANG")),
		Hint:      hint,
		Remember:  config.RememberUser,

		QuitAfterHandoff: target.Name() == string(handoff.ModeGreetd),
	}
	if cfg.Greeter.CardFeed != "" {
		opts.Cards = greeter.CardFeed(ctx, cfg.Greeter.CardFeed)
	}

	logging.Info("Greeter starting",
		zap.String("directory", cfg.Directory.URL),
		zap.String("handoff", target.Name()),
		zap.String("locale", opts.Catalog.Tag().String()),
	)
	return greeter.Run(ctx, opts)
}

// probeCmd sends one check request and prints the answer
var probeCmd = &cobra.Command{
	Use:   "probe <uid>",
	Short: "Ask the directory about a card",
	Long: `Send a single check request for a card UID and print the state the
directory answered with. Credentials in the answer are never printed.`,
	Example: `  # Check a card against the configured directory
  tapauth-greeter probe 04A224B2C35E80

  # Check against a bridge found with 'scan'
  tapauth-greeter probe 04A224B2C35E80 --directory http://192.168.1.20:30080/`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Log.Level); err != nil {
		return err
	}
	defer logging.Sync()

	uid := strings.TrimSpace(args[0])
	fmt.Printf("Checking %s against %s...\n\n", logging.Fingerprint(uid), cfg.Directory.URL)

	res := newDirectoryClient(cfg).Do(cmd.Context(), directory.ActionCheck, directory.Fields{
		directory.FieldUID: uid,
	})

	stateColor := color.New(color.FgGreen, color.Bold)
	switch {
	case !res.Response.Parsed():
		stateColor = color.New(color.FgRed, color.Bold)
	case res.Response.State == directory.StateBanned, res.Response.State.IsConnectivityError():
		stateColor = color.New(color.FgRed, color.Bold)
	case res.Response.State != directory.StateKnown:
		stateColor = color.New(color.FgYellow, color.Bold)
	}

	fmt.Printf("   Outcome: %s\n", res.Outcome)
	if res.Response.Parsed() {
		fmt.Printf("   State:   %s\n", stateColor.Sprintf("%d (%s)", int(res.Response.State), res.Response.State))
	} else {
		fmt.Printf("   State:   %s\n", stateColor.Sprint("unparseable answer"))
	}
	if res.Response.State == directory.StateKnown && res.Response.Username != "" {
		fmt.Printf("   User:    %s\n", res.Response.Username)
	}
	if res.Err != nil {
		fmt.Printf("   Error:   %s\n", color.RedString(res.Err.Error()))
	}
	return nil
}

// scanCmd discovers bridges on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for tapauth bridges on the network",
	Long: `Scan for tapauth bridges using mDNS/DNS-SD discovery and print the
directory and card feed URLs to put in the greeter config.`,
	Example: `  # Scan for 5 seconds (default)
  tapauth-greeter scan

  # Longer scan for slow networks
  tapauth-greeter scan --timeout 15`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for tapauth bridges (timeout: %ds)...\n\n", scanTimeout)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(scanTimeout)*time.Second)
	defer cancel()

	bridges, err := discovery.NewScanner().Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(bridges) == 0 {
		fmt.Println("No bridges found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure tapauth-bridge runs with advertising enabled")
		fmt.Println("  - Check that this machine is on the same network segment")
		fmt.Println("  - Try increasing --timeout for slower networks")
		return nil
	}

	fmt.Printf("Found %d bridge(s):\n\n", len(bridges))

	bold := color.New(color.Bold)
	for i, b := range bridges {
		fmt.Printf("%d. %s\n", i+1, bold.Sprint(b.Instance))
		fmt.Printf("   Directory: %s\n", color.CyanString(b.BaseURL()))
		fmt.Printf("   Cards:     %s\n", color.CyanString(b.CardFeedURL()))
		if v := b.GetMetadata(discovery.TXTVersion); v != "" {
			fmt.Printf("   Version:   %s\n", v)
		}
		fmt.Println()
	}

	fmt.Println("Use 'tapauth-greeter --directory <url>' to log in through a bridge")
	return nil
}
