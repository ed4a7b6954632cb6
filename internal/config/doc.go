// Package config loads tapauth configuration and the small amount of state
// the greeter keeps between runs.
//
// # Configuration
//
// Configuration is layered, later layers overriding earlier ones:
//
//  1. built-in defaults
//  2. the YAML config file (--config, $TAPAUTH_CONFIG, or config.yaml in the
//     config directory when it exists)
//  3. environment variables prefixed TAPAUTH_, with "__" separating levels
//     (TAPAUTH_DIRECTORY__URL sets directory.url)
//  4. explicit overrides, usually from command-line flags
//
// A .env file in the working directory is loaded into the environment first.
// The result is validated before it is returned.
//
// # Files
//
// The config directory follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/tapauth or $HOME/.config/tapauth
//   - macOS: $HOME/.config/tapauth
//   - Windows: %LOCALAPPDATA%\tapauth
//
// state.yaml in the same directory remembers the last user handed off, so the
// login screen can offer it again.
//
// # Security
//
// Passwords, PINs and card identifiers are never written by this package.
package config
