// Package transport adapts gorilla/websocket to the relay.  It owns the
// HTTP upgrade on the server side, dialing on the client side, and the
// Conn wrapper both sides read frames from and write text to.
//
// Control frames never reach callers: pings are answered with pongs
// inside the read loop, and a close frame surfaces as the error returned
// by ReadFrame.
package transport

import "context"

// Dialer opens outbound WebSocket connections.
type Dialer interface {
	// Dial performs the opening handshake against url (ws:// or wss://).
	Dial(ctx context.Context, url string) (*Conn, error)
}
