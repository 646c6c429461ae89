package capability

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sourcegraph/conc"

	chaterr "yggdrasil/internal/errors"
	"yggdrasil/internal/metrics"
	"yggdrasil/internal/registry"
	"yggdrasil/internal/relay"
	"yggdrasil/internal/session"
	"yggdrasil/internal/transport"
	"yggdrasil/util"
)

// shutdownWait bounds how long a session waits for the client to answer
// a going-away close during server shutdown.
const shutdownWait = 2 * time.Second

// Matchmaker serves one client connection: it creates the session,
// publishes it in the Registry and runs two units until the connection
// ends.  The protocol unit reads frames and drives the session; the
// forwarder drains the session's relay channel into the connection.
type Matchmaker struct {
	Registry    *registry.Registry
	Metrics     *metrics.Collector
	Logger      *util.Logger
	IdleTimeout time.Duration // 0 = sessions may idle forever

	// NewID overrides session id generation in tests.
	NewID func() string
}

func (m *Matchmaker) logger() *util.Logger {
	if m.Logger == nil {
		return util.NewLogger(0)
	}
	return m.Logger
}

func (m *Matchmaker) newID() string {
	if m.NewID != nil {
		return m.NewID()
	}
	return uuid.NewString()
}

// Handle runs a session on conn.  It returns nil on an orderly close
// and the classified error otherwise.
func (m *Matchmaker) Handle(ctx context.Context, conn *transport.Conn) error {
	defer conn.Close()

	id := m.newID()
	log := m.logger().With("session " + id)
	sess := session.New(id, m.Registry, conn, log, m.Metrics)
	sess.Open()
	m.Metrics.SessionOpened()
	defer m.Metrics.SessionClosed()

	log.Info("opened from %s", conn.RemoteAddr())

	var units conc.WaitGroup
	units.Go(func() {
		if err := relay.Forward(sess.Outbox(), conn); err != nil {
			log.Verbose("forwarder stopped: %v", err)
			// Unblock the protocol unit; the connection is unusable.
			conn.Close()
		}
	})

	dl := &readDeadline{conn: conn}
	stop := context.AfterFunc(ctx, func() {
		conn.CloseWith(websocket.CloseGoingAway, "server shutting down") //nolint:errcheck
		dl.drain(shutdownWait)
	})
	defer stop()

	err := m.serve(sess, conn, dl, log)

	sess.Close()
	conn.Close()
	units.Wait()
	if n := sess.Outbox().Len(); n > 0 {
		log.Verbose("%d relayed messages undelivered", n)
	}

	switch {
	case err == nil || chaterr.Is(err, chaterr.ErrConnClosed):
		log.Info("closed")
		return nil
	case ctx.Err() != nil:
		log.Verbose("ended at shutdown: %v", err)
		return nil
	default:
		m.Metrics.RecordError(err.Error())
		log.Warn("ended: %v", err)
		return err
	}
}

// serve is the protocol unit.
func (m *Matchmaker) serve(sess *session.Session, conn *transport.Conn, dl *readDeadline, log *util.Logger) error {
	for {
		if m.IdleTimeout > 0 {
			if err := dl.idle(m.IdleTimeout); err != nil {
				return chaterr.WrapTransport("read", conn.RemoteAddr(), err)
			}
		}

		frame, err := conn.ReadFrame()
		if err != nil {
			return err
		}

		if frame.Kind != transport.TextFrame {
			log.Debug("ignoring %s frame", frame.Kind)
			continue
		}
		if err := sess.HandleText(frame.Text); err != nil {
			return err
		}
	}
}

// readDeadline owns the connection's read deadline.  The idle timer
// re-arms it per frame until shutdown starts; from then on only the
// shutdown wait applies.
type readDeadline struct {
	mu       sync.Mutex
	draining bool
	conn     *transport.Conn
}

func (d *readDeadline) idle(timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.draining {
		return nil
	}
	return d.conn.SetIdleDeadline(timeout)
}

func (d *readDeadline) drain(wait time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draining = true
	d.conn.SetIdleDeadline(wait) //nolint:errcheck
}
