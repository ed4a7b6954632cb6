// Tapauth-bridge sits between greeters and the upstream card directory.
//
// It accepts the greeter's auth, check, register and change_password
// requests, forwards the directory ones upstream, keeps the set of active
// card UIDs, provisions local accounts after successful answers, and streams
// card events to greeters over a websocket.
//
// Usage:
//
//	tapauth-bridge serve [flags]
//
// See 'tapauth-bridge serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/tapauth/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tapauth-bridge",
	Short: "tapauth card directory bridge",
	Long: `A local HTTP bridge between tapauth greeters and the upstream card directory.

Greeters POST their requests here. Directory requests are forwarded upstream
with the upstream state codes, successful answers provision the local account,
and card events are streamed to subscribed greeters.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tapauth-bridge %s (commit: %s)\n", version.Version, version.Commit)
	},
}
