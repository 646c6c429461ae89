package transport

import (
	"errors"
	"net"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	chaterr "yggdrasil/internal/errors"
	"yggdrasil/internal/metrics"
	"yggdrasil/util"
)

var errInvalidUTF8 = errors.New("text frame is not valid UTF-8")

// controlWait bounds how long a ping reply or close frame may block.
const controlWait = 5 * time.Second

// FrameKind distinguishes the data frames a peer can send.
type FrameKind int

const (
	TextFrame FrameKind = iota + 1
	BinaryFrame
)

func (k FrameKind) String() string {
	switch k {
	case TextFrame:
		return "text"
	case BinaryFrame:
		return "binary"
	default:
		return "unknown"
	}
}

// Frame is one complete inbound data message.
type Frame struct {
	Kind FrameKind
	Text string // set for TextFrame
	Data []byte // set for BinaryFrame
}

// Conn is a WebSocket connection with serialized writes.  One goroutine
// may call ReadFrame while any number of goroutines call WriteText.
type Conn struct {
	ws      *websocket.Conn
	addr    string
	metrics *metrics.Collector
	logger  *util.Logger

	wmu       sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func newConn(ws *websocket.Conn, m *metrics.Collector, logger *util.Logger) *Conn {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	c := &Conn{
		ws:      ws,
		addr:    util.RemoteHost(ws.RemoteAddr()),
		metrics: m,
		logger:  logger,
	}
	ws.SetPingHandler(c.handlePing)
	ws.SetPongHandler(func(string) error {
		c.logger.Debug("pong from %s", c.addr)
		return nil
	})
	return c
}

// handlePing answers a ping with a pong carrying the same payload.
func (c *Conn) handlePing(appData string) error {
	c.logger.Debug("ping from %s", c.addr)
	err := c.ws.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(controlWait))
	if err == nil || errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return nil
	}
	return err
}

// RemoteAddr returns the peer address as a string.
func (c *Conn) RemoteAddr() string { return c.addr }

// ReadFrame blocks for the next data frame.  The error is classified:
// errors.ErrConnClosed for an orderly close, otherwise a ProtocolError
// or TransportError.  A text frame that is not valid UTF-8 fails the
// connection with close code 1007 and a ProtocolError.
func (c *Conn) ReadFrame() (Frame, error) {
	kind, data, err := c.ws.ReadMessage()
	if err != nil {
		return Frame{}, chaterr.ClassifyRead(c.addr, err)
	}
	if kind == websocket.TextMessage && !utf8.Valid(data) {
		// The library leaves text payload validation to the application.
		c.CloseWith(websocket.CloseInvalidFramePayloadData, "invalid UTF-8") //nolint:errcheck
		return Frame{}, chaterr.WrapProtocol("read", errInvalidUTF8)
	}
	c.metrics.FrameReceived(int64(len(data)))
	if kind == websocket.TextMessage {
		return Frame{Kind: TextFrame, Text: string(data)}, nil
	}
	return Frame{Kind: BinaryFrame, Data: data}, nil
}

// WriteText sends text as a single text frame.
func (c *Conn) WriteText(text string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return chaterr.WrapTransport("write", c.addr, err)
	}
	c.metrics.FrameSent(int64(len(text)))
	return nil
}

// Reply sends a server reply to this connection's own client.
func (c *Conn) Reply(text string) error {
	if err := c.WriteText(text); err != nil {
		return err
	}
	c.metrics.ReplySent()
	return nil
}

// SetIdleDeadline arms a read deadline d from now; d <= 0 clears it.
func (c *Conn) SetIdleDeadline(d time.Duration) error {
	if d <= 0 {
		return c.ws.SetReadDeadline(time.Time{})
	}
	return c.ws.SetReadDeadline(time.Now().Add(d))
}

// CloseWith starts the closing handshake with the given close code.
// The connection stays readable until the peer answers.
func (c *Conn) CloseWith(code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	err := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(controlWait))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return chaterr.WrapTransport("close", c.addr, err)
	}
	return nil
}

// Close tears down the underlying network connection.  Safe to call
// more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
