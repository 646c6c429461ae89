// Package metrics provides lightweight, lock-free counters and gauges
// for tracking runtime statistics of a relay server.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a relay server.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	sessionsActive  atomic.Int64
	sessionsTotal   atomic.Int64
	framesIn        atomic.Int64
	repliesOut      atomic.Int64
	messagesRelayed atomic.Int64
	relayConnects   atomic.Int64
	bytesIn         atomic.Int64
	bytesOut        atomic.Int64
	errorsTotal     atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string

	// Registry gauges, sampled when a snapshot is taken.
	directorySize func() int
	knownNames    func() int
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Session metrics ──────────────────────────────────────────────────

// SessionOpened increments both the active and total counters.
func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.sessionsActive.Add(1)
	c.sessionsTotal.Add(1)
}

// SessionClosed decrements the active session counter.
func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.sessionsActive.Add(-1)
}

// ActiveSessions returns the current number of live sessions.
func (c *Collector) ActiveSessions() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsActive.Load()
}

// TotalSessions returns the lifetime session count.
func (c *Collector) TotalSessions() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsTotal.Load()
}

// ── Frame metrics ────────────────────────────────────────────────────

// FrameReceived records one inbound data frame of n bytes.
func (c *Collector) FrameReceived(n int64) {
	if c == nil {
		return
	}
	c.framesIn.Add(1)
	c.bytesIn.Add(n)
}

// FrameSent records one outbound text frame of n bytes.
func (c *Collector) FrameSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// ReplySent records a server reply to the session's own client.
func (c *Collector) ReplySent() {
	if c == nil {
		return
	}
	c.repliesOut.Add(1)
}

// FramesIn returns the number of inbound data frames.
func (c *Collector) FramesIn() int64 {
	if c == nil {
		return 0
	}
	return c.framesIn.Load()
}

// RepliesOut returns the number of replies written.
func (c *Collector) RepliesOut() int64 {
	if c == nil {
		return 0
	}
	return c.repliesOut.Load()
}

// TotalBytesIn returns total payload bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total payload bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Relay metrics ────────────────────────────────────────────────────

// MessageRelayed records a chat payload enqueued for another session.
func (c *Collector) MessageRelayed() {
	if c == nil {
		return
	}
	c.messagesRelayed.Add(1)
}

// RelayConnected records a successful relay connect.
func (c *Collector) RelayConnected() {
	if c == nil {
		return
	}
	c.relayConnects.Add(1)
}

// MessagesRelayed returns the total chat payloads relayed.
func (c *Collector) MessagesRelayed() int64 {
	if c == nil {
		return 0
	}
	return c.messagesRelayed.Load()
}

// RelayConnects returns the total successful relay connects.
func (c *Collector) RelayConnects() int64 {
	if c == nil {
		return 0
	}
	return c.relayConnects.Load()
}

// ObserveRegistry makes every Snapshot sample the number of reachable
// sessions and of distinct display names ever chosen.
func (c *Collector) ObserveRegistry(directorySize, knownNames func() int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.directorySize, c.knownNames = directorySize, knownNames
	c.mu.Unlock()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	SessionsActive   int64  `json:"sessions_active"`
	SessionsTotal    int64  `json:"sessions_total"`
	FramesIn         int64  `json:"frames_in"`
	RepliesOut       int64  `json:"replies_out"`
	MessagesRelayed  int64  `json:"messages_relayed"`
	RelayConnects    int64  `json:"relay_connects"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	ErrorsTotal      int64  `json:"errors_total"`
	DirectorySize    int    `json:"directory_size"`
	KnownNames       int    `json:"known_names"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:          time.Since(c.startTime).Truncate(time.Second).String(),
		SessionsActive:  c.sessionsActive.Load(),
		SessionsTotal:   c.sessionsTotal.Load(),
		FramesIn:        c.framesIn.Load(),
		RepliesOut:      c.repliesOut.Load(),
		MessagesRelayed: c.messagesRelayed.Load(),
		RelayConnects:   c.relayConnects.Load(),
		BytesIn:         c.bytesIn.Load(),
		BytesOut:        c.bytesOut.Load(),
		ErrorsTotal:     c.errorsTotal.Load(),
	}
	if c.directorySize != nil {
		s.DirectorySize = c.directorySize()
	}
	if c.knownNames != nil {
		s.KnownNames = c.knownNames()
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
