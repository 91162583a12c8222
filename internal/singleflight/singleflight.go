// Package singleflight coalesces concurrent loads of the same cache key.
package singleflight

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrLoaderPanic is returned to followers whose leader's fn panicked.
// The leader itself re-panics with the original value.
var ErrLoaderPanic = errors.New("singleflight: loader panicked")

// Group coalesces concurrent function calls for the same key K so that
// the supplied fn is executed at most once per flight. Other concurrent
// callers wait for the shared result.
//
// Concurrency notes:
//   - The first caller for a given key becomes the leader and runs fn.
//   - Followers wait on c.done. Publishing (val, err) happens-before
//     close(c.done), so reads after <-done observe the final values.
//   - Cancelling ctx in a follower unblocks only that follower; it does
//     NOT cancel the leader's fn.
//
// The zero Group is ready to use.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done chan struct{} // closed when val/err are published
	val  V
	err  error
	dups int // followers that joined this flight; guarded by Group.mu
}

// Do runs fn once for the given key. Concurrent calls with the same key
// wait for the shared result; shared reports whether the result was
// handed to more than one caller. If ctx is cancelled in a follower,
// that follower returns ctx.Err() while the leader continues to run fn.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, err error, shared bool) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.dups++
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, c.err, true
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err(), true
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	g.doCall(c, key, fn)

	g.mu.Lock()
	shared = c.dups > 0
	g.mu.Unlock()
	return c.val, c.err, shared
}

// doCall runs fn, publishes its result, and forgets the flight. A panic
// in fn is published to followers as ErrLoaderPanic and then re-raised.
func (g *Group[K, V]) doCall(c *call[V], key K, fn func() (V, error)) {
	normal := false
	defer func() {
		if !normal {
			r := recover()
			c.err = fmt.Errorf("%w: %v", ErrLoaderPanic, r)
			g.finish(c, key)
			if r != nil { // nil means runtime.Goexit; let it continue
				panic(r)
			}
			return
		}
		g.finish(c, key)
	}()

	c.val, c.err = fn()
	normal = true
}

func (g *Group[K, V]) finish(c *call[V], key K) {
	g.mu.Lock()
	if g.m[key] == c {
		delete(g.m, key)
	}
	g.mu.Unlock()
	close(c.done)
}

// Forget drops the in-flight marker for key, so the next Do starts a new
// flight instead of joining the current one.
func (g *Group[K, V]) Forget(key K) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}
