package core

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/conc"

	chaterr "yggdrasil/internal/errors"
	"yggdrasil/internal/capability"
	"yggdrasil/internal/metrics"
	"yggdrasil/internal/transport"
	"yggdrasil/util"
)

// ListenMode is the relay server.  It upgrades requests on Path and runs
// Capability on every resulting connection, each in its own goroutine.
// When StatsPath is set the metrics snapshot is served there as JSON.
type ListenMode struct {
	Address     string // "host:port"
	Path        string
	StatsPath   string
	GracePeriod time.Duration

	Acceptor   *transport.Acceptor
	Capability capability.Capability
	Metrics    *metrics.Collector
	Logger     *util.Logger

	mu       sync.Mutex
	closing  bool
	handlers conc.WaitGroup
}

// Run serves until ctx is cancelled.  Live sessions see the same ctx and
// begin their closing handshake; Run then waits up to GracePeriod for
// them to finish.
func (m *ListenMode) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.Address)
	if err != nil {
		return chaterr.WrapTransport("listen", m.Address, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(m.Path, func(w http.ResponseWriter, r *http.Request) {
		m.upgrade(ctx, w, r)
	})
	if m.StatsPath != "" {
		mux.HandleFunc(m.StatsPath, m.serveStats)
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	m.Logger.Info("listening on ws://%s%s", ln.Addr(), m.Path)
	if m.StatsPath != "" {
		m.Logger.Verbose("stats on http://%s%s", ln.Addr(), m.StatsPath)
	}

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return chaterr.WrapTransport("serve", m.Address, err)
		}
		return nil
	case <-ctx.Done():
	}

	m.Logger.Info("shutting down (%d active of %d sessions served)",
		m.Metrics.ActiveSessions(), m.Metrics.TotalSessions())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), m.grace())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		m.Logger.Verbose("http shutdown: %v", err)
	}
	m.drain()
	return nil
}

func (m *ListenMode) upgrade(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := m.Acceptor.Accept(w, r)
	if err != nil {
		m.Logger.Verbose("upgrade from %s: %v", r.RemoteAddr, err)
		m.Metrics.RecordError(err.Error())
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closing {
		conn.CloseWith(websocket.CloseGoingAway, "server shutting down") //nolint:errcheck
		conn.Close()
		return
	}
	m.handlers.Go(func() {
		m.Capability.Handle(ctx, conn) //nolint:errcheck
	})
}

func (m *ListenMode) serveStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, m.Metrics.JSON()) //nolint:errcheck
}

// drain stops new sessions and waits for live ones.
func (m *ListenMode) drain() {
	m.mu.Lock()
	m.closing = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.handlers.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.Logger.Verbose("all sessions closed")
	case <-time.After(m.grace()):
		m.Logger.Warn("%d sessions still open after %v", m.Metrics.ActiveSessions(), m.grace())
	}
}

func (m *ListenMode) grace() time.Duration {
	if m.GracePeriod > 0 {
		return m.GracePeriod
	}
	return time.Second
}
