package framez

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestStreamEmitWalksSubscribersInOrder(t *testing.T) {
	s := newStream[int]("test")

	var order []string
	s.subscribe(func(int) error {
		order = append(order, "first")
		return nil
	})
	s.subscribe(func(int) error {
		order = append(order, "second")
		return nil
	})

	if err := s.emit(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected subscribers in registration order, got %v", order)
	}
}

func TestStreamEmitAbortsOnFirstError(t *testing.T) {
	s := newStream[int]("test")
	boom := errors.New("boom")

	called := false
	s.subscribe(func(int) error { return boom })
	s.subscribe(func(int) error {
		called = true
		return nil
	})

	if err := s.emit(1); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if called {
		t.Error("subscriber after the failing one should not run")
	}
}

func TestFoldThreadsRunningState(t *testing.T) {
	s := newStream[int]("test")
	sums := fold(s, "sum", 0, func(acc, v int) (int, error) {
		return acc + v, nil
	})

	var got []int
	sums.subscribe(func(v int) error {
		got = append(got, v)
		return nil
	})

	for _, v := range []int{1, 2, 3} {
		if err := s.emit(v); err != nil {
			t.Fatalf("emit(%d): %v", v, err)
		}
	}

	want := []int{1, 3, 6}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestAccumulateWrapsStepErrors(t *testing.T) {
	s := newStream[int]("test")
	boom := errors.New("boom")

	results := accumulate(s, "failing", 0, func(state, v int) (int, int, error) {
		if v < 0 {
			return state, 0, boom
		}
		return state + v, state + v, nil
	})

	var got []int
	results.subscribe(func(v int) error {
		got = append(got, v)
		return nil
	})

	if err := s.emit(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.emit(-1)
	var stepErr *StepError[int]
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.Item != -1 {
		t.Errorf("expected failing item -1, got %d", stepErr.Item)
	}
	if stepErr.StreamName != "failing" {
		t.Errorf("expected stream name failing, got %s", stepErr.StreamName)
	}
	if !errors.Is(err, boom) {
		t.Error("StepError should unwrap to the cause")
	}

	// A failed step must not advance the running state.
	if err := s.emit(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[len(got)-1] != 5 {
		t.Errorf("state advanced through a failed step: %v", got)
	}
}

func TestMapStreamTransformsItems(t *testing.T) {
	s := newStream[int]("test")
	doubled := mapStream(s, "double", func(v int) (int, error) {
		return v * 2, nil
	})

	var got []int
	doubled.subscribe(func(v int) error {
		got = append(got, v)
		return nil
	})

	for _, v := range []int{1, 2} {
		if err := s.emit(v); err != nil {
			t.Fatalf("emit(%d): %v", v, err)
		}
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Errorf("expected [2 4], got %v", got)
	}
}

func TestZipPairsArrivals(t *testing.T) {
	a := newStream[int]("a")
	b := newStream[string]("b")
	zipped := zip2(a, b, "zip")

	var got []string
	zipped.subscribe(func(p pair[int, string]) error {
		got = append(got, fmt.Sprintf("%d%s", p.a, p.b))
		return nil
	})

	// The faster side queues until the slower side catches up.
	steps := []func() error{
		func() error { return a.emit(1) },
		func() error { return a.emit(2) },
		func() error { return b.emit("x") },
		func() error { return b.emit("y") },
		func() error { return b.emit("z") },
		func() error { return a.emit(3) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	want := []string{"1x", "2y", "3z"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestStreamChanBridgesToChannel(t *testing.T) {
	ss := NewStreamingSeries(Field{Name: "x", Kind: Float64})
	ch := ss.Series().Chan(context.Background(), 2)

	emitSeries(t, ss, NewSeries("x", OrdinalIndex(1), 1))
	emitSeries(t, ss, NewSeries("x", OrdinalIndex(1), 2))

	if s := <-ch; s.Float(0) != 1 {
		t.Errorf("expected first batch, got %v", s.Values())
	}
	if s := <-ch; s.Float(0) != 2 {
		t.Errorf("expected second batch, got %v", s.Values())
	}
}

func TestStreamChanFailsAfterCancel(t *testing.T) {
	ss := NewStreamingSeries(Field{Name: "x", Kind: Float64})
	ctx, cancel := context.WithCancel(context.Background())
	ss.Series().Chan(ctx, 0)
	cancel()

	// With no buffer and no receiver, only the cancellation can resolve
	// the send.
	err := ss.Emit(NewSeries("x", OrdinalIndex(1), 1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDrive(t *testing.T) {
	t.Run("drains channel until close", func(t *testing.T) {
		in := make(chan int, 3)
		in <- 1
		in <- 2
		in <- 3
		close(in)

		var got []int
		err := Drive(context.Background(), in, func(v int) error {
			got = append(got, v)
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("expected 3 items, got %v", got)
		}
	})

	t.Run("returns the first emit error", func(t *testing.T) {
		in := make(chan int, 2)
		in <- 1
		in <- 2
		close(in)

		boom := errors.New("boom")
		err := Drive(context.Background(), in, func(v int) error {
			if v == 2 {
				return boom
			}
			return nil
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})

	t.Run("stops on context cancel", func(t *testing.T) {
		in := make(chan int)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Drive(ctx, in, func(int) error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}
