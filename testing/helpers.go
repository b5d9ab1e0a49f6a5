// Package testing provides test utilities for framez.
package testing

import (
	"testing"
	"time"
)

// CollectWithTimeout collects up to n items from a channel, giving up when
// the channel closes or the timeout expires. This is a shared utility for
// tests driving channel-based producers (FrameBatcher, RandomSource).
func CollectWithTimeout[T any](t *testing.T, ch <-chan T, n int, timeout time.Duration) []T {
	t.Helper()

	var items []T
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for len(items) < n {
		select {
		case item, ok := <-ch:
			if !ok {
				return items
			}
			items = append(items, item)
		case <-timer.C:
			return items
		}
	}
	return items
}

// DrainWithTimeout collects every item until the channel closes or the
// timeout expires.
func DrainWithTimeout[T any](t *testing.T, ch <-chan T, timeout time.Duration) []T {
	t.Helper()

	var items []T
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case item, ok := <-ch:
			if !ok {
				return items
			}
			items = append(items, item)
		case <-timer.C:
			return items
		}
	}
}
