package errors

import (
	"fmt"
	"io"
	"net"
	"os"
	"testing"

	"github.com/gorilla/websocket"
)

func TestTransportError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  TransportError
		want string
	}{
		{
			name: "retryable",
			err:  TransportError{Op: "dial", Addr: "example.com:8080", Err: io.EOF, Retryable: true},
			want: "transport error: dial example.com:8080: EOF (retryable)",
		},
		{
			name: "non-retryable",
			err:  TransportError{Op: "listen", Addr: ":8080", Err: fmt.Errorf("bind failed")},
			want: "transport error: listen :8080: bind failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	err := WrapTransport("read", "x", io.EOF)
	if !Is(err, io.EOF) {
		t.Error("should unwrap to io.EOF")
	}
}

func TestProtocolError_Format(t *testing.T) {
	err := WrapProtocol("read", fmt.Errorf("bad opcode"))
	want := "protocol error: read: bad opcode"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	bare := &ProtocolError{Err: fmt.Errorf("bad opcode")}
	if got := bare.Error(); got != "protocol error: bad opcode" {
		t.Errorf("got %q", got)
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "port",
				Value:   99999,
				Message: "out of range 1-65535",
				Hint:    "use a port between 1 and 65535",
			},
			want: "config: --port=99999: out of range 1-65535\n  hint: use a port between 1 and 65535",
		},
		{
			name: "missing value no hint",
			err: ConfigError{
				Field:   "url",
				Message: "required in connect mode",
			},
			want: "config: --url: required in connect mode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyRead(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		closed    bool
		protocol  bool
		transport bool
	}{
		{name: "normal close", err: &websocket.CloseError{Code: websocket.CloseNormalClosure}, closed: true},
		{name: "going away", err: &websocket.CloseError{Code: websocket.CloseGoingAway}, closed: true},
		{name: "no status", err: &websocket.CloseError{Code: websocket.CloseNoStatusReceived}, closed: true},
		{name: "abnormal close", err: &websocket.CloseError{Code: websocket.CloseAbnormalClosure}, transport: true},
		{name: "protocol close", err: &websocket.CloseError{Code: websocket.CloseProtocolError}, protocol: true},
		{name: "read limit", err: websocket.ErrReadLimit, protocol: true},
		{name: "eof", err: io.ErrUnexpectedEOF, transport: true},
		{name: "deadline", err: os.ErrDeadlineExceeded, transport: true},
		{name: "net closed", err: net.ErrClosed, transport: true},
		{name: "framing", err: fmt.Errorf("websocket: bad opcode 7"), protocol: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyRead("127.0.0.1:1", tt.err)
			var pe *ProtocolError
			var te *TransportError
			if Is(got, ErrConnClosed) != tt.closed {
				t.Errorf("closed = %v, want %v (%v)", !tt.closed, tt.closed, got)
			}
			if As(got, &pe) != tt.protocol {
				t.Errorf("protocol = %v, want %v (%v)", !tt.protocol, tt.protocol, got)
			}
			if As(got, &te) != tt.transport {
				t.Errorf("transport = %v, want %v (%v)", !tt.transport, tt.transport, got)
			}
		})
	}

	if ClassifyRead("x", nil) != nil {
		t.Error("nil should classify to nil")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", fmt.Errorf("something"), false},
		{"bad handshake", WrapTransport("dial", "x", websocket.ErrBadHandshake), false},
		{"refused dial", WrapTransport("dial", "x", &net.OpError{Op: "dial", Err: fmt.Errorf("connection refused")}), true},
		{"explicit retryable", &TransportError{Retryable: true}, true},
		{"explicit non-retryable", &TransportError{Retryable: false}, false},
		{"wrapped retryable", fmt.Errorf("outer: %w", &TransportError{Retryable: true}), true},
		{"protocol", WrapProtocol("read", io.EOF), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReservedSentinels(t *testing.T) {
	if ErrClientAlreadyConnected.Error() != "client already connected" {
		t.Errorf("got %q", ErrClientAlreadyConnected.Error())
	}
	if ErrMessageParsing.Error() != "message parsing error" {
		t.Errorf("got %q", ErrMessageParsing.Error())
	}
}

func TestReExports(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", &ProtocolError{Op: "read", Err: ErrConnClosed})

	if !Is(wrapped, ErrConnClosed) {
		t.Error("Is should see through both layers")
	}
	var pe *ProtocolError
	if !As(wrapped, &pe) || pe.Op != "read" {
		t.Errorf("As = %+v", pe)
	}
}
