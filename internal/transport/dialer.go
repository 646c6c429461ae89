package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	chaterr "yggdrasil/internal/errors"
	"yggdrasil/internal/metrics"
	"yggdrasil/util"
)

// WSDialer dials WebSocket servers, honouring HTTP(S)_PROXY.
type WSDialer struct {
	HandshakeTimeout time.Duration
	Metrics          *metrics.Collector
	Logger           *util.Logger
}

// Dial connects to url.  Failures are returned as a TransportError whose
// Retryable flag tells the caller whether another attempt can help.
func (d *WSDialer) Dial(ctx context.Context, url string) (*Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
	}

	ws, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (HTTP %s)", err, resp.Status)
		}
		return nil, chaterr.WrapTransport("dial", url, err)
	}
	return newConn(ws, d.Metrics, d.Logger), nil
}

var _ Dialer = (*WSDialer)(nil)
