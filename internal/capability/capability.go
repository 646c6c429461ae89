// Package capability defines what happens over an established
// WebSocket connection.  Matchmaker runs the relay protocol for one
// server-side connection; Console bridges a terminal to a server for
// the line client.
package capability

import (
	"context"

	"yggdrasil/internal/transport"
)

// Capability handles a single connection according to a specific
// behaviour.
type Capability interface {
	// Handle runs the capability against conn.  It blocks until the
	// connection is done or the context is cancelled.
	Handle(ctx context.Context, conn *transport.Conn) error
}
