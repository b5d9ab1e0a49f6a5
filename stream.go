package framez

import (
	"context"

	"github.com/gammazero/deque"
)

// stream is one node of the synchronous dataflow graph. Emitting a value
// walks the subscribers in registration order; each accumulator step runs
// to completion before the next, so state is mutated by exactly one
// in-flight step at a time. The first error aborts the walk and propagates
// back out of the originating Emit call.
type stream[T any] struct {
	name string
	subs []func(T) error
}

func newStream[T any](name string) *stream[T] {
	return &stream[T]{name: name}
}

func (s *stream[T]) subscribe(fn func(T) error) {
	s.subs = append(s.subs, fn)
}

func (s *stream[T]) emit(v T) error {
	for _, sub := range s.subs {
		if err := sub(v); err != nil {
			return err
		}
	}
	return nil
}

// accumulate registers a pure accumulator step on an upstream node and
// returns the derived node of per-step results. The state is an explicit
// value threaded through every call: steps return the next state rather
// than mutating shared storage, which keeps zipped streams free of
// aliasing between old and new state.
func accumulate[S, T, R any](up *stream[T], name string, start S, step func(S, T) (S, R, error)) *stream[R] {
	down := newStream[R](name)
	state := start
	up.subscribe(func(v T) error {
		next, result, err := step(state, v)
		if err != nil {
			return NewStepError(v, err, name)
		}
		state = next
		return down.emit(result)
	})
	return down
}

// fold registers an accumulator whose state and result are the same value,
// the collapsed form of accumulate.
func fold[T, A any](up *stream[T], name string, start A, step func(A, T) (A, error)) *stream[A] {
	return accumulate(up, name, start, func(state A, v T) (A, A, error) {
		next, err := step(state, v)
		return next, next, err
	})
}

// mapStream registers a stateless per-item transformation.
func mapStream[T, R any](up *stream[T], name string, fn func(T) (R, error)) *stream[R] {
	down := newStream[R](name)
	up.subscribe(func(v T) error {
		r, err := fn(v)
		if err != nil {
			return NewStepError(v, err, name)
		}
		return down.emit(r)
	})
	return down
}

// pair is one element of a zipped stream.
type pair[A, B any] struct {
	a A
	b B
}

// zip2 pairs two streams element-for-element in arrival order. Each side
// queues its pending elements; a pair is emitted as soon as both sides have
// one. Both streams must emit at the same cadence: if either side falls
// behind, the joined step simply waits for it, and a persistent cadence
// mismatch grows the faster side's queue without bound (undefined behavior,
// not detected).
func zip2[A, B any](a *stream[A], b *stream[B], name string) *stream[pair[A, B]] {
	down := newStream[pair[A, B]](name)
	var qa deque.Deque[A]
	var qb deque.Deque[B]

	drain := func() error {
		for qa.Len() > 0 && qb.Len() > 0 {
			p := pair[A, B]{a: qa.PopFront(), b: qb.PopFront()}
			if err := down.emit(p); err != nil {
				return err
			}
		}
		return nil
	}

	a.subscribe(func(v A) error {
		qa.PushBack(v)
		return drain()
	})
	b.subscribe(func(v B) error {
		qb.PushBack(v)
		return drain()
	})
	return down
}

// Stream is the public read side of a dataflow node. Facades expose their
// underlying node through it so applications can observe per-step results.
type Stream[T any] struct {
	src *stream[T]
}

// Name returns the node name, useful for debugging.
func (s *Stream[T]) Name() string {
	return s.src.name
}

// Each registers a consumer invoked synchronously for every value the node
// emits. An error returned by the consumer propagates back out of the
// originating Emit call.
func (s *Stream[T]) Each(fn func(T) error) {
	s.src.subscribe(fn)
}

// Chan bridges the node to a channel, the inverse of Drive. Every value the
// node emits is sent on the returned channel; the originating Emit call
// blocks until the consumer receives, so a stalled consumer stalls the
// graph. Once ctx is canceled further emits fail with ctx.Err(). The
// channel is never closed.
func (s *Stream[T]) Chan(ctx context.Context, buf int) <-chan T {
	out := make(chan T, buf)
	s.src.subscribe(func(v T) error {
		select {
		case out <- v:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	return out
}

// Drive feeds a channel of items into a facade's Emit function until the
// channel closes or the context is canceled. It bridges channel-based
// producers (FrameBatcher, RandomSource) to the synchronous graph and
// returns the first emit error encountered.
func Drive[T any](ctx context.Context, in <-chan T, emit func(T) error) error {
	for {
		select {
		case v, ok := <-in:
			if !ok {
				return nil
			}
			if err := emit(v); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
