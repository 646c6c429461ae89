// Package errors provides the error taxonomy for the relay.
//
// Only failures at the transport boundary are errors: a framing violation
// reported by the WebSocket layer (ProtocolError) or a lower-level I/O or
// handshake failure (TransportError).  Both are terminal for the affected
// connection and never propagate to other sessions.  Soft protocol
// outcomes such as an unknown recipient are plain reply text and do not
// appear here.
package errors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/gorilla/websocket"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	// ErrClientAlreadyConnected is reserved; no current code path raises it.
	ErrClientAlreadyConnected = errors.New("client already connected")
	// ErrMessageParsing is reserved; frames carry no envelope to parse.
	ErrMessageParsing = errors.New("message parsing error")
	// ErrConnClosed reports an orderly close initiated by either peer.
	ErrConnClosed = errors.New("connection closed")
)

// ── Structured error types ───────────────────────────────────────────

// ProtocolError wraps a framing violation reported by the transport.
type ProtocolError struct {
	Op  string // "read", "upgrade"
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("protocol error: %v", e.Err)
	}
	return fmt.Sprintf("protocol error: %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// TransportError represents a failure in the underlying connection:
// socket I/O, deadlines, or the HTTP upgrade handshake.
type TransportError struct {
	Op        string // "upgrade", "dial", "listen", "read", "write"
	Addr      string // peer or listen address involved
	Err       error  // underlying error
	Retryable bool   // whether a client should try again
}

func (e *TransportError) Error() string {
	s := fmt.Sprintf("transport error: %s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *TransportError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// WrapTransport creates a TransportError, detecting retryability from
// the underlying error.
func WrapTransport(op, addr string, err error) *TransportError {
	return &TransportError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(op, err),
	}
}

// WrapProtocol creates a ProtocolError.
func WrapProtocol(op string, err error) *ProtocolError {
	return &ProtocolError{Op: op, Err: err}
}

// ClassifyRead maps an error returned by a WebSocket read onto the
// taxonomy.  Normal and going-away closes become ErrConnClosed; close
// frames carrying a protocol-violation code, oversize frames and other
// framing failures become a ProtocolError; everything else is a
// TransportError.
func ClassifyRead(addr string, err error) error {
	if err == nil {
		return nil
	}

	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		switch ce.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
			return ErrConnClosed
		case websocket.CloseAbnormalClosure:
			return WrapTransport("read", addr, err)
		default:
			return WrapProtocol("read", err)
		}
	}

	if errors.Is(err, websocket.ErrReadLimit) {
		return WrapProtocol("read", err)
	}

	if isIOError(err) {
		return WrapTransport("read", addr, err)
	}

	// gorilla reports framing violations as plain "websocket: ..." errors.
	return WrapProtocol("read", err)
}

// ── Classification helpers ───────────────────────────────────────────

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return classifyRetryable("", err)
}

func isIOError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// classifyRetryable inspects standard library and gorilla error types.
func classifyRetryable(op string, err error) bool {
	if err == nil {
		return false
	}
	// The server answered but refused the upgrade; retrying will not help.
	if errors.Is(err, websocket.ErrBadHandshake) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		// Refused or reset dials are expected while a server restarts.
		return opErr.Op == "dial" || op == "dial"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }
