// Tapauth-greeter is the login screen of an NFC-card authentication kiosk.
//
// It asks the directory about presented cards, walks the user through the PIN,
// registration or password-change screens, and hands the resulting
// credentials to the OS login mechanism.
//
// Usage:
//
//	tapauth-greeter [command] [flags]
//
// Running without arguments shows the login screen.
// See 'tapauth-greeter --help' for available commands.
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
	Use:   "tapauth-greeter",
	Short: "NFC card login screen",
	Long: `A terminal login screen for NFC-card authentication.

Present a card or type a username to start. Known cards ask for their PIN,
unknown cards can be registered to an account, and expired passwords are
changed in place before logging in.

Configuration is read from the tapauth config file, TAPAUTH_* environment
variables and the flags below, in increasing order of precedence.`,
	Version:      version.Version,
	SilenceUsage: true,
	RunE:         runGreeter,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tapauth-greeter %s (commit: %s)\n", version.Version, version.Commit)
	},
}
