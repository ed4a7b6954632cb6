package config

import (
	"strings"
	"time"
)

// Config is the complete tapauth configuration
type Config struct {
	Directory DirectoryConfig `mapstructure:"directory" validate:"required"`
	Greeter   GreeterConfig   `mapstructure:"greeter"`
	Handoff   HandoffConfig   `mapstructure:"handoff"`
	Log       LogConfig       `mapstructure:"log"`
	Bridge    BridgeConfig    `mapstructure:"bridge"`
}

// DirectoryConfig is the endpoint the greeter sends its requests to
type DirectoryConfig struct {
	URL     string        `mapstructure:"url"     validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type GreeterConfig struct {
	Locale string `mapstructure:"locale"`
	// CardFeed is the bridge websocket streaming card events. Empty disables it.
	CardFeed string `mapstructure:"card_feed" validate:"omitempty,url"`
}

type HandoffConfig struct {
	Mode           string `mapstructure:"mode"            validate:"oneof=greetd exec dryrun"`
	Command        string `mapstructure:"command"`
	SessionCommand string `mapstructure:"session_command"`
	Socket         string `mapstructure:"socket"`
}

// CommandArgs splits Command on whitespace
func (h HandoffConfig) CommandArgs() []string {
	return strings.Fields(h.Command)
}

// SessionArgs splits SessionCommand on whitespace
func (h HandoffConfig) SessionArgs() []string {
	return strings.Fields(h.SessionCommand)
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	File  string `mapstructure:"file"`
}

// BridgeConfig configures tapauth-bridge
type BridgeConfig struct {
	Listen           string        `mapstructure:"listen"            validate:"required,hostname_port"`
	UpstreamURL      string        `mapstructure:"upstream_url"      validate:"omitempty,url"`
	UpstreamTimeout  time.Duration `mapstructure:"upstream_timeout"  validate:"gt=0"`
	UIDTTL           time.Duration `mapstructure:"uid_ttl"           validate:"gt=0"`
	ProvisionCommand string        `mapstructure:"provision_command"`
	ReaderCommand    string        `mapstructure:"reader_command"`
	Advertise        bool          `mapstructure:"advertise"`
	Name             string        `mapstructure:"name"`
}

// ProvisionArgs splits ProvisionCommand on whitespace
func (b BridgeConfig) ProvisionArgs() []string {
	return strings.Fields(b.ProvisionCommand)
}

// ReaderArgs splits ReaderCommand on whitespace
func (b BridgeConfig) ReaderArgs() []string {
	return strings.Fields(b.ReaderCommand)
}

// State is what the greeter remembers between runs
type State struct {
	Version  int    `yaml:"version"`
	LastUser string `yaml:"last_user,omitempty"`
}
