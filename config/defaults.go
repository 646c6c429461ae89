package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// Shared by Default, the CLI flag definitions and the usage text.

const (
	// DefaultBindHost is the interface the server listens on.
	DefaultBindHost = "0.0.0.0"

	// DefaultPort is the server's TCP port.
	DefaultPort = 8080

	// DefaultPath is the HTTP path that accepts WebSocket upgrades.
	DefaultPath = "/ws"

	// DefaultStatsPath serves the metrics snapshot as JSON.
	DefaultStatsPath = "/stats"

	// DefaultReadLimit caps one inbound frame, in bytes.
	DefaultReadLimit = 64 << 10

	// DefaultHandshakeTimeout bounds the client's opening handshake.
	DefaultHandshakeTimeout = 10 * time.Second

	// DefaultGracePeriod is how long shutdown waits for sessions to
	// finish their closing handshake.
	DefaultGracePeriod = 5 * time.Second

	// DefaultDialAttempts is how many times the client tries to reach
	// the server before giving up.
	DefaultDialAttempts = 5

	// EnvPrefix prefixes every environment variable LoadFromEnv reads.
	EnvPrefix = "YGG_"
)
