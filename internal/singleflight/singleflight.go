// Package singleflight merges concurrent calls that share a key.
package singleflight

import "sync"

// Group manages a set of in-flight calls to prevent duplicate work.
// A key is released as soon as its call returns, so a later caller always
// runs fn again.
type Group[T any] struct {
	mu sync.Mutex
	m  map[string]*call[T]
}

// Result is what DoChan delivers.
type Result[T any] struct {
	Val    T
	Err    error
	Shared bool
}

type call[T any] struct {
	wg    sync.WaitGroup
	val   T
	err   error
	dups  int
	chans []chan<- Result[T]
}

// New creates a new Group.
func New[T any]() *Group[T] {
	return &Group[T]{
		m: make(map[string]*call[T]),
	}
}

// Do executes fn once for all concurrent callers with the same key. Callers
// that arrive while fn runs wait and receive the same results with shared
// set to true.
func (g *Group[T]) Do(key string, fn func() (T, error)) (val T, err error, shared bool) {
	g.mu.Lock()
	if c, ok := g.m[key]; ok {
		c.dups++
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := &call[T]{}
	c.wg.Add(1)
	g.m[key] = c
	g.mu.Unlock()

	shared = g.doCall(c, key, fn)
	return c.val, c.err, shared
}

// DoChan is like Do but returns at once. The result arrives on the channel,
// so a caller can stop waiting without affecting the others. fn runs in its
// own goroutine when no call for key is in flight.
func (g *Group[T]) DoChan(key string, fn func() (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)

	g.mu.Lock()
	if c, ok := g.m[key]; ok {
		c.dups++
		c.chans = append(c.chans, ch)
		g.mu.Unlock()
		return ch
	}

	c := &call[T]{chans: []chan<- Result[T]{ch}}
	c.wg.Add(1)
	g.m[key] = c
	g.mu.Unlock()

	go g.doCall(c, key, fn)

	return ch
}

func (g *Group[T]) doCall(c *call[T], key string, fn func() (T, error)) bool {
	c.val, c.err = fn()

	g.mu.Lock()
	if g.m[key] == c {
		delete(g.m, key)
	}
	shared := c.dups > 0
	for _, ch := range c.chans {
		ch <- Result[T]{Val: c.val, Err: c.err, Shared: shared}
	}
	g.mu.Unlock()
	c.wg.Done()

	return shared
}

// InFlight reports whether a call for key is running.
func (g *Group[T]) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.m[key]
	return ok
}

// Waiters returns how many callers joined the call for key after it
// started, 0 when none is in flight.
func (g *Group[T]) Waiters(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.m[key]; ok {
		return c.dups
	}
	return 0
}

// Forget releases key so the next caller starts a new call even while the
// current one is still running.
func (g *Group[T]) Forget(key string) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}
