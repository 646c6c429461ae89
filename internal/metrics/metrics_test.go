package metrics

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCollector_Sessions(t *testing.T) {
	c := New()

	c.SessionOpened()
	c.SessionOpened()
	if c.ActiveSessions() != 2 {
		t.Errorf("active = %d, want 2", c.ActiveSessions())
	}
	if c.TotalSessions() != 2 {
		t.Errorf("total = %d, want 2", c.TotalSessions())
	}

	c.SessionClosed()
	if c.ActiveSessions() != 1 {
		t.Errorf("active = %d, want 1", c.ActiveSessions())
	}
	if c.TotalSessions() != 2 {
		t.Errorf("total should remain 2, got %d", c.TotalSessions())
	}
}

func TestCollector_Frames(t *testing.T) {
	c := New()

	c.FrameReceived(5)
	c.FrameReceived(7)
	c.FrameSent(11)
	c.ReplySent()

	if c.FramesIn() != 2 {
		t.Errorf("frames in = %d, want 2", c.FramesIn())
	}
	if c.TotalBytesIn() != 12 {
		t.Errorf("bytes in = %d, want 12", c.TotalBytesIn())
	}
	if c.TotalBytesOut() != 11 {
		t.Errorf("bytes out = %d, want 11", c.TotalBytesOut())
	}
	if c.RepliesOut() != 1 {
		t.Errorf("replies = %d, want 1", c.RepliesOut())
	}
}

func TestCollector_Relay(t *testing.T) {
	c := New()

	c.RelayConnected()
	c.MessageRelayed()
	c.MessageRelayed()
	c.MessageRelayed()

	if c.RelayConnects() != 1 {
		t.Errorf("connects = %d, want 1", c.RelayConnects())
	}
	if c.MessagesRelayed() != 3 {
		t.Errorf("relayed = %d, want 3", c.MessagesRelayed())
	}
}

func TestCollector_Errors(t *testing.T) {
	c := New()

	c.RecordError("first error")
	c.RecordError("second error")

	if c.ErrorCount() != 2 {
		t.Errorf("errors = %d, want 2", c.ErrorCount())
	}
}

func TestCollector_Snapshot(t *testing.T) {
	c := New()
	c.SessionOpened()
	c.FrameReceived(100)
	c.FrameSent(50)
	c.MessageRelayed()
	c.RecordError("test")

	snap := c.Snapshot()
	if snap.SessionsActive != 1 {
		t.Errorf("snap active = %d", snap.SessionsActive)
	}
	if snap.BytesIn != 100 {
		t.Errorf("snap bytes in = %d", snap.BytesIn)
	}
	if snap.MessagesRelayed != 1 {
		t.Errorf("snap relayed = %d", snap.MessagesRelayed)
	}
	if snap.ErrorsTotal != 1 {
		t.Errorf("snap errors = %d", snap.ErrorsTotal)
	}
	if snap.LastErrorMessage != "test" {
		t.Errorf("snap error msg = %q", snap.LastErrorMessage)
	}
	if snap.LastError == "" {
		t.Error("expected last error timestamp")
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.SessionOpened()
	c.FrameSent(42)

	raw := c.JSON()
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("JSON parse error: %v", err)
	}
	if snap.SessionsActive != 1 {
		t.Errorf("JSON active = %d", snap.SessionsActive)
	}
	if snap.BytesOut != 42 {
		t.Errorf("JSON bytes out = %d", snap.BytesOut)
	}
}

func TestCollector_ObserveRegistry(t *testing.T) {
	c := New()
	if snap := c.Snapshot(); snap.DirectorySize != 0 || snap.KnownNames != 0 {
		t.Errorf("unobserved gauges = %d, %d", snap.DirectorySize, snap.KnownNames)
	}

	online, names := 3, 5
	c.ObserveRegistry(func() int { return online }, func() int { return names })
	online = 2

	snap := c.Snapshot()
	if snap.DirectorySize != 2 || snap.KnownNames != 5 {
		t.Errorf("gauges = %d, %d; want 2, 5 sampled at snapshot time", snap.DirectorySize, snap.KnownNames)
	}
	if !strings.Contains(c.JSON(), `"directory_size": 2`) {
		t.Errorf("JSON missing directory_size: %s", c.JSON())
	}
}

func TestNilCollector_NoOps(t *testing.T) {
	var c *Collector

	// None of these should panic.
	c.SessionOpened()
	c.SessionClosed()
	c.FrameReceived(100)
	c.FrameSent(100)
	c.ReplySent()
	c.MessageRelayed()
	c.RelayConnected()
	c.RecordError("test")
	c.ObserveRegistry(func() int { return 1 }, nil)

	if c.ActiveSessions() != 0 {
		t.Error("nil collector should return 0")
	}
	if c.TotalBytesIn() != 0 {
		t.Error("nil collector should return 0")
	}
	if c.ErrorCount() != 0 {
		t.Error("nil collector should return 0")
	}

	snap := c.Snapshot()
	if snap.SessionsActive != 0 {
		t.Error("nil snapshot should be zero")
	}

	if j := c.JSON(); j == "" {
		t.Error("nil JSON should return valid JSON")
	}
}
