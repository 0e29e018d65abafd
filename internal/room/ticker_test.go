package room

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func recvFire(t *testing.T, ch <-chan Msg, within time.Duration) TimerFired {
	t.Helper()
	select {
	case m := <-ch:
		fired, ok := m.(TimerFired)
		if !ok {
			t.Fatalf("unexpected message %T", m)
		}
		return fired
	case <-time.After(within):
		t.Fatalf("timed out waiting for tick")
		return TimerFired{} // unreachable
	}
}

func recvNoFire(t *testing.T, ch <-chan Msg, within time.Duration) {
	t.Helper()
	select {
	case m := <-ch:
		t.Fatalf("expected no tick, got %+v", m)
	case <-time.After(within):
	}
}

func TestTicker_EmitsOncePerSecond(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tk := NewTicker(fc)
	out := make(chan Msg, 4)

	tk.Start(context.Background(), out)
	defer tk.Stop()

	fc.Advance(time.Second)
	fire := recvFire(t, out, time.Second)
	if fire.Gen != tk.Gen() {
		t.Fatalf("gen %d, want %d", fire.Gen, tk.Gen())
	}

	fc.Advance(time.Second)
	_ = recvFire(t, out, time.Second)
}

func TestTicker_RestartIsIdempotent(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tk := NewTicker(fc)
	out := make(chan Msg, 4)

	// Starting twice without an intervening advance leaves exactly one live
	// ticker: one fire per second, carrying the newest generation.
	tk.Start(context.Background(), out)
	tk.Start(context.Background(), out)
	defer tk.Stop()

	fc.Advance(time.Second)
	fire := recvFire(t, out, time.Second)
	if fire.Gen != 2 {
		t.Fatalf("gen %d, want 2", fire.Gen)
	}
	recvNoFire(t, out, 100*time.Millisecond)
}

func TestTicker_StopPreventsFurtherFires(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tk := NewTicker(fc)
	out := make(chan Msg, 4)

	tk.Start(context.Background(), out)
	if !tk.Running() {
		t.Fatalf("ticker should report running")
	}
	tk.Stop()
	if tk.Running() {
		t.Fatalf("ticker should report stopped")
	}

	fc.Advance(time.Second)
	recvNoFire(t, out, 100*time.Millisecond)
}
