package framez

import (
	"context"
	"errors"
	"testing"
	"time"
)

// waitForWaiters spins until the fake clock has a registered timer or
// ticker, so a Step lands after the producer goroutine is listening.
func waitForWaiters(t *testing.T, clock *FakeClock) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !clock.HasWaiters() {
		if time.Now().After(deadline) {
			t.Fatal("clock never acquired waiters")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRandomSourceEmitsOnTick(t *testing.T) {
	clock := NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	src := NewRandomSource(100*time.Millisecond, 500*time.Millisecond, clock).WithSeed(42)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := src.Process(ctx)

	waitForWaiters(t, clock)
	clock.Step(500 * time.Millisecond)

	select {
	case f := <-out:
		if err := RandomSchema().Validate(f); err != nil {
			t.Fatalf("frame does not match RandomSchema: %v", err)
		}
		if f.Len() != 5 {
			t.Errorf("expected 5 rows over one interval, got %d", f.Len())
		}
		times := f.Index().Times()
		if times == nil {
			t.Fatal("expected a time index")
		}
		for i := 1; i < len(times); i++ {
			if !times[i].After(times[i-1]) {
				t.Errorf("timestamps must increase, got %v then %v", times[i-1], times[i])
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestRandomSourceRunFeedsFacade(t *testing.T) {
	clock := NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	src := NewRandomSource(100*time.Millisecond, 500*time.Millisecond, clock).WithSeed(7)

	sf := NewStreamingFrame(RandomSchema())
	sizes := make(chan float64, 8)
	sf.Size().Each(func(v float64) error {
		sizes <- v
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- src.Run(ctx, sf)
	}()

	waitForWaiters(t, clock)
	clock.Step(500 * time.Millisecond)

	select {
	case v := <-sizes:
		// 5 rows, 3 columns.
		if v != 15 {
			t.Errorf("expected 15 cells, got %v", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for aggregate")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("source did not stop on cancel")
	}
}
