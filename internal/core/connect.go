package core

import (
	"context"
	"fmt"
	"time"

	chaterr "yggdrasil/internal/errors"
	"yggdrasil/internal/capability"
	"yggdrasil/internal/retry"
	"yggdrasil/internal/transport"
	"yggdrasil/util"
)

// ConnectMode dials a relay server and runs a capability on the
// resulting connection.  Transient dial failures are retried with
// exponential backoff.
type ConnectMode struct {
	Dialer     transport.Dialer
	Capability capability.Capability
	URL        string
	Attempts   int
	Logger     *util.Logger

	// Backoff overrides the retry policy built from Attempts.
	Backoff *retry.Backoff
}

func (m *ConnectMode) backoff() *retry.Backoff {
	if m.Backoff != nil {
		return m.Backoff
	}
	return &retry.Backoff{
		Attempts:  m.Attempts,
		Jitter:    true,
		Retryable: chaterr.IsRetryable,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			m.Logger.Verbose("attempt %d: %v (retrying in %v)", attempt, err, wait.Round(time.Millisecond))
		},
	}
}

// Run connects and hands the connection to the capability, which
// closes it.
func (m *ConnectMode) Run(ctx context.Context) error {
	m.Logger.Verbose("connecting to %s", m.URL)

	var conn *transport.Conn
	err := m.backoff().Do(ctx, func(int) error {
		c, err := m.Dialer.Dial(ctx, m.URL)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(err)
			}
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return fmt.Errorf("connect to %s: %w", m.URL, err)
	}

	m.Logger.Verbose("connected to %s", conn.RemoteAddr())
	return m.Capability.Handle(ctx, conn)
}
