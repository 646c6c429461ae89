// Package relay implements the per-session outbound queue and the
// forwarder that drains it into the session's live connection.
//
// A Channel is an unbounded FIFO of text payloads.  Any number of
// sessions may Send to it; exactly one forwarder receives from it.
// Senders never block, so a slow client cannot stall the session that
// is writing to it.
package relay

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Send once the owning session has ended.
var ErrClosed = errors.New("relay channel closed")

// Channel is a per-session ordered queue of pending outbound payloads.
type Channel struct {
	mu     sync.Mutex
	queue  []string
	ready  chan struct{} // signalled when queue grows; closed on Close
	closed bool
}

// New returns an open, empty Channel.
func New() *Channel {
	return &Channel{ready: make(chan struct{}, 1)}
}

// Send appends payload to the queue.  It never blocks.
func (c *Channel) Send(payload string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.queue = append(c.queue, payload)
	c.mu.Unlock()

	select {
	case c.ready <- struct{}{}:
	default:
	}
	return nil
}

// Recv blocks until a payload is available and returns it.  Once the
// channel is closed, Recv keeps returning queued payloads and then
// reports ok=false.
func (c *Channel) Recv() (payload string, ok bool) {
	for {
		c.mu.Lock()
		if len(c.queue) > 0 {
			payload = c.queue[0]
			c.queue[0] = ""
			c.queue = c.queue[1:]
			c.mu.Unlock()
			return payload, true
		}
		if c.closed {
			c.mu.Unlock()
			return "", false
		}
		c.mu.Unlock()
		<-c.ready
	}
}

// Close stops further sends and wakes the receiver.  Close is idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ready)
}

// Len returns the number of queued payloads.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Sink is the live outbound stream a forwarder writes into.
type Sink interface {
	WriteText(text string) error
}

// Forward pushes every payload received on ch into out, in order.  It
// returns nil when ch is closed and drained, or the first write error.
func Forward(ch *Channel, out Sink) error {
	for {
		payload, ok := ch.Recv()
		if !ok {
			return nil
		}
		if err := out.WriteText(payload); err != nil {
			return err
		}
	}
}
