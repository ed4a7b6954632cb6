package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/muurk/tapauth/internal/logging"
)

const (
	// EnvPrefix prefixes every environment override
	EnvPrefix = "TAPAUTH_"

	// ConfigEnv names an explicit config file
	ConfigEnv = "TAPAUTH_CONFIG"

	// DotEnvFile is loaded into the environment when present
	DotEnvFile = ".env"
)

// Defaults are the built-in configuration values
var Defaults = map[string]interface{}{
	"directory.url":           "http://127.0.0.1:30080/",
	"directory.timeout":       "10s",
	"greeter.locale":          "en",
	"greeter.card_feed":       "",
	"handoff.mode":            "dryrun",
	"log.level":               "",
	"bridge.listen":           "127.0.0.1:30080",
	"bridge.upstream_timeout": "5s",
	"bridge.uid_ttl":          "1s",
	"bridge.advertise":        false,
	"bridge.name":             "tapauth-bridge",
}

// Options controls Load
type Options struct {
	// File is an explicit config file. It must exist.
	File string

	// Overrides are applied last, keyed like "directory.url"
	Overrides map[string]interface{}

	// SkipDotEnv disables loading .env
	SkipDotEnv bool
}

// Load reads the layered configuration and validates it
func Load(opts Options) (*Config, error) {
	if !opts.SkipDotEnv {
		if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
		}
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, err := resolveFile(opts.File)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		logging.Debug("Loaded config file", zap.String("path", path))
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to apply overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "mapstructure"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct constraints of c
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// envKey maps TAPAUTH_BRIDGE__UID_TTL to bridge.uid_ttl
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Join(strings.Split(s, "__"), ".")
}

// resolveFile picks the config file: explicit, then $TAPAUTH_CONFIG, then the
// default path when it exists.
func resolveFile(explicit string) (string, error) {
	for _, p := range []string{explicit, os.Getenv(ConfigEnv)} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file %s: %w", p, err)
		}
		return p, nil
	}

	p, err := GetConfigPath()
	if err != nil {
		return "", nil
	}
	if _, err := os.Stat(p); err != nil {
		return "", nil
	}
	return p, nil
}
