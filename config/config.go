// Package config loads settings from flags, SWEEPER_* environment variables
// and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug       = "debug"
	ConfigListenAddr  = "listen-addr"
	ConfigBinding     = "binding"
	ConfigNatsURL     = "nats-url"
	ConfigNatsSubject = "nats-subject"
	ConfigNatsTimeout = "nats-timeout"
	ConfigHistoryFile = "history-file"
	ConfigConfigFile  = "config-file"
	ConfigRemote      = "remote"
)

type Config struct {
	*viper.Viper
}

// DefaultConfig returns a config holding only the defaults.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigListenAddr, "127.0.0.1:7373")
	c.SetDefault(ConfigBinding, "word")
	c.SetDefault(ConfigNatsURL, "")
	c.SetDefault(ConfigNatsSubject, "sweeper.engine")
	c.SetDefault(ConfigNatsTimeout, 2*time.Second)
	c.SetDefault(ConfigHistoryFile, "/tmp/sweeper-readline.tmp")
	c.SetDefault(ConfigRemote, "")
}

// Load parses args as flags and reads the environment and config file.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("sweeper", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigListenAddr, "", "TCP address to serve the engine on")
	fs.String(ConfigBinding, "", "wire binding: word or serial")
	fs.String(ConfigNatsURL, "", "NATS server URL; empty disables NATS")
	fs.String(ConfigNatsSubject, "", "NATS subject the engine answers on")
	fs.Duration(ConfigNatsTimeout, 0, "NATS request timeout")
	fs.String(ConfigHistoryFile, "", "shell history file")
	fs.String(ConfigConfigFile, "", "YAML config file")
	fs.String(ConfigRemote, "", "engine the shell drives: empty for in-process, tcp or nats")
	if err := fs.Parse(args); err != nil {
		return err
	}
	// only flags given on the command line override lower layers
	var changed []*pflag.Flag
	fs.Visit(func(f *pflag.Flag) { changed = append(changed, f) })
	if err := c.bindFlags(changed); err != nil {
		return err
	}

	c.SetEnvPrefix("sweeper")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if path := c.GetString(ConfigConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return err
		}
	}
	switch c.GetString(ConfigBinding) {
	case "word", "serial":
	default:
		return errors.New("binding must be word or serial")
	}
	switch c.GetString(ConfigRemote) {
	case "", "tcp", "nats":
	default:
		return errors.New("remote must be tcp or nats")
	}
	return nil
}

func (c *Config) bindFlags(flags []*pflag.Flag) error {
	for _, f := range flags {
		if f == nil {
			return errors.New("config: nil flag")
		}
		if err := c.BindPFlag(f.Name, f); err != nil {
			return fmt.Errorf("config: binding flag %s: %w", f.Name, err)
		}
	}
	return nil
}

// SanitizedSettings returns the settings with secrets in URLs masked.
func (c *Config) SanitizedSettings() map[string]any {
	out := c.AllSettings()
	if u, ok := out[ConfigNatsURL].(string); ok && strings.Contains(u, "@") {
		out[ConfigNatsURL] = "***" + u[strings.LastIndex(u, "@"):]
	}
	return out
}
