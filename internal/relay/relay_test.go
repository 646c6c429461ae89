package relay

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu     sync.Mutex
	got    []string
	failAt int // 1-based write index that fails; 0 never fails
}

func (s *recordingSink) WriteText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAt > 0 && len(s.got)+1 == s.failAt {
		return fmt.Errorf("write rejected")
	}
	s.got = append(s.got, text)
	return nil
}

func (s *recordingSink) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

func TestChannel_FIFO(t *testing.T) {
	ch := New()
	for i := 0; i < 5; i++ {
		if err := ch.Send(fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	if ch.Len() != 5 {
		t.Fatalf("Len = %d, want 5", ch.Len())
	}
	for i := 0; i < 5; i++ {
		got, ok := ch.Recv()
		if !ok {
			t.Fatalf("Recv %d: channel reported closed", i)
		}
		if want := fmt.Sprintf("m%d", i); got != want {
			t.Errorf("Recv %d = %q, want %q", i, got, want)
		}
	}
}

func TestChannel_RecvBlocksUntilSend(t *testing.T) {
	ch := New()
	done := make(chan string, 1)
	go func() {
		p, _ := ch.Recv()
		done <- p
	}()

	select {
	case p := <-done:
		t.Fatalf("Recv returned %q before any Send", p)
	case <-time.After(50 * time.Millisecond):
	}

	ch.Send("late") //nolint:errcheck

	select {
	case p := <-done:
		if p != "late" {
			t.Errorf("got %q, want late", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not wake after Send")
	}
}

func TestChannel_CloseDrainsThenEnds(t *testing.T) {
	ch := New()
	ch.Send("a") //nolint:errcheck
	ch.Send("b") //nolint:errcheck
	ch.Close()
	ch.Close() // idempotent

	if err := ch.Send("c"); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after Close = %v, want ErrClosed", err)
	}

	for _, want := range []string{"a", "b"} {
		got, ok := ch.Recv()
		if !ok || got != want {
			t.Errorf("Recv = %q,%v want %q,true", got, ok, want)
		}
	}
	if _, ok := ch.Recv(); ok {
		t.Error("Recv on closed, drained channel should report ok=false")
	}
}

func TestChannel_CloseWakesReceiver(t *testing.T) {
	ch := New()
	done := make(chan bool, 1)
	go func() {
		_, ok := ch.Recv()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	ch.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("expected ok=false after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not wake the receiver")
	}
}

func TestChannel_ConcurrentSendersKeepPerSenderOrder(t *testing.T) {
	ch := New()
	const senders, perSender = 8, 50

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				ch.Send(fmt.Sprintf("%d:%d", s, i)) //nolint:errcheck
			}
		}(s)
	}
	wg.Wait()
	ch.Close()

	next := make([]int, senders)
	count := 0
	for {
		p, ok := ch.Recv()
		if !ok {
			break
		}
		var s, i int
		if _, err := fmt.Sscanf(p, "%d:%d", &s, &i); err != nil {
			t.Fatalf("bad payload %q", p)
		}
		if i != next[s] {
			t.Fatalf("sender %d: got %d, want %d", s, i, next[s])
		}
		next[s]++
		count++
	}
	if count != senders*perSender {
		t.Errorf("received %d payloads, want %d", count, senders*perSender)
	}
}

func TestForward_DeliversInOrderUntilClosed(t *testing.T) {
	ch := New()
	sink := &recordingSink{}

	errCh := make(chan error, 1)
	go func() { errCh <- Forward(ch, sink) }()

	ch.Send("alice: one") //nolint:errcheck
	ch.Send("alice: two") //nolint:errcheck
	ch.Close()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Forward did not return after Close")
	}

	got := sink.lines()
	if len(got) != 2 || got[0] != "alice: one" || got[1] != "alice: two" {
		t.Errorf("forwarded %v", got)
	}
}

func TestForward_StopsOnWriteError(t *testing.T) {
	ch := New()
	sink := &recordingSink{failAt: 2}

	ch.Send("first")  //nolint:errcheck
	ch.Send("second") //nolint:errcheck
	ch.Send("third")  //nolint:errcheck

	if err := Forward(ch, sink); err == nil {
		t.Fatal("expected write error")
	}
	if got := sink.lines(); len(got) != 1 || got[0] != "first" {
		t.Errorf("forwarded %v, want [first]", got)
	}
	if ch.Len() != 1 {
		t.Errorf("Len = %d, want 1 undelivered payload", ch.Len())
	}
}
