package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	chaterr "yggdrasil/internal/errors"
	"yggdrasil/internal/metrics"
	"yggdrasil/util"
)

// AcceptorConfig tunes the server-side upgrade.
type AcceptorConfig struct {
	ReadLimit        int64         // max inbound frame size; 0 = unlimited
	HandshakeTimeout time.Duration // upgrade handshake bound; 0 = none
	Metrics          *metrics.Collector
	Logger           *util.Logger
}

// Acceptor upgrades HTTP requests to WebSocket connections.
type Acceptor struct {
	upgrader  websocket.Upgrader
	readLimit int64
	metrics   *metrics.Collector
	logger    *util.Logger
}

// NewAcceptor returns an Acceptor for cfg.  Any origin is accepted:
// clients are anonymous and carry no credentials.
func NewAcceptor(cfg AcceptorConfig) *Acceptor {
	return &Acceptor{
		upgrader: websocket.Upgrader{
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
			WriteBufferPool:  util.WriteBufferPool,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
		readLimit: cfg.ReadLimit,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// Accept performs the upgrade.  On failure the HTTP error response has
// already been written and a TransportError is returned.
func (a *Acceptor) Accept(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	ws, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, chaterr.WrapTransport("upgrade", r.RemoteAddr, err)
	}
	if a.readLimit > 0 {
		ws.SetReadLimit(a.readLimit)
	}
	return newConn(ws, a.metrics, a.logger), nil
}
