// Package config defines the runtime configuration for yggdrasil and
// checks it before anything is started.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	chaterr "yggdrasil/internal/errors"
	"yggdrasil/util"
)

// Config holds every tuneable for one process, server or client.
//
// The env tags are relative to EnvPrefix.
type Config struct {
	// ── Server ───────────────────────────────────────────────────────
	Listen      bool          `env:"LISTEN"`
	Host        string        `env:"HOST"`
	Port        int           `env:"PORT"`
	Path        string        `env:"PATH"`
	StatsPath   string        `env:"STATS_PATH"` // "" disables
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT"`
	ReadLimit   int64         `env:"READ_LIMIT"`
	GracePeriod time.Duration `env:"GRACE_PERIOD"`

	// ── Client ───────────────────────────────────────────────────────
	URL              string        `env:"URL"`
	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT"`
	DialAttempts     int           `env:"DIAL_ATTEMPTS"`

	// ── Output ───────────────────────────────────────────────────────
	Verbose int `env:"VERBOSE"`
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Host:             DefaultBindHost,
		Port:             DefaultPort,
		Path:             DefaultPath,
		StatsPath:        DefaultStatsPath,
		ReadLimit:        DefaultReadLimit,
		GracePeriod:      DefaultGracePeriod,
		HandshakeTimeout: DefaultHandshakeTimeout,
		DialAttempts:     DefaultDialAttempts,
	}
}

// ListenAddr is the host:port the server binds.
func (c *Config) ListenAddr() string {
	return util.FormatAddr(c.Host, c.Port)
}

// ParseURL checks that raw names a WebSocket endpoint.
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &chaterr.ConfigError{
			Field: "url", Value: raw, Message: err.Error(),
		}
	}
	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
	default:
		return nil, &chaterr.ConfigError{
			Field:   "url",
			Value:   raw,
			Message: fmt.Sprintf("unsupported scheme %q", u.Scheme),
			Hint:    "use ws://host:port/path or wss://host/path",
		}
	}
	if u.Host == "" {
		return nil, &chaterr.ConfigError{
			Field: "url", Value: raw, Message: "missing host",
			Hint: "use ws://host:port/path",
		}
	}
	return u, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Listen {
		if err := c.validateServer(); err != nil {
			return err
		}
	} else if err := c.validateClient(); err != nil {
		return err
	}

	switch {
	case c.IdleTimeout < 0:
		return negative("idle-timeout", c.IdleTimeout)
	case c.ReadLimit < 0:
		return negative("read-limit", c.ReadLimit)
	case c.GracePeriod < 0:
		return negative("grace-period", c.GracePeriod)
	case c.HandshakeTimeout < 0:
		return negative("handshake-timeout", c.HandshakeTimeout)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.URL != "" {
		return &chaterr.ConfigError{
			Field:   "listen",
			Message: "listen mode does not take a server URL",
			Hint:    "drop -l to connect to " + c.URL,
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &chaterr.ConfigError{
			Field: "port", Value: c.Port, Message: "out of range 1-65535",
			Hint: fmt.Sprintf("the default is %d", DefaultPort),
		}
	}
	if !strings.HasPrefix(c.Path, "/") {
		return &chaterr.ConfigError{
			Field: "path", Value: c.Path, Message: "must start with /",
			Hint: "e.g. --path " + DefaultPath,
		}
	}
	if c.StatsPath == "" {
		return nil
	}
	if !strings.HasPrefix(c.StatsPath, "/") {
		return &chaterr.ConfigError{
			Field: "stats-path", Value: c.StatsPath, Message: "must start with /",
			Hint: `pass --stats-path "" to disable the endpoint`,
		}
	}
	if c.StatsPath == c.Path {
		return &chaterr.ConfigError{
			Field: "stats-path", Value: c.StatsPath,
			Message: "collides with the upgrade path",
		}
	}
	return nil
}

func (c *Config) validateClient() error {
	if c.URL == "" {
		return &chaterr.ConfigError{
			Field:   "url",
			Message: "server URL is required",
			Hint:    "yggdrasil ws://host:8080/ws, or -l to run a server",
		}
	}
	if _, err := ParseURL(c.URL); err != nil {
		return err
	}
	if c.DialAttempts < 1 {
		return &chaterr.ConfigError{
			Field: "dial-attempts", Value: c.DialAttempts, Message: "must be at least 1",
		}
	}
	return nil
}

func negative(field string, v interface{}) error {
	return &chaterr.ConfigError{Field: field, Value: v, Message: "must not be negative"}
}
