// File: core/concurrency/readygate.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ReadyGate holds setup actions until the engine runtime is initialized.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"
)

// ReadyGate queues actions until MarkReady, drains them once in FIFO order,
// and runs every later action immediately.
type ReadyGate struct {
	mu       sync.Mutex
	ready    bool
	draining bool
	pending  *queue.Queue
}

// NewReadyGate returns a gate in the not-ready state.
func NewReadyGate() *ReadyGate {
	return &ReadyGate{pending: queue.New()}
}

// Defer runs fn now if the gate is open, otherwise queues it.
func (g *ReadyGate) Defer(fn func()) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	if g.ready {
		g.mu.Unlock()
		fn()
		return
	}
	g.pending.Add(fn)
	g.mu.Unlock()
}

// MarkReady drains the queue and opens the gate. Actions deferred while the
// drain is running are queued behind it. Only the first call drains; it
// returns the number of actions run.
func (g *ReadyGate) MarkReady() int {
	g.mu.Lock()
	if g.ready || g.draining {
		g.mu.Unlock()
		return 0
	}
	g.draining = true
	n := 0
	for g.pending.Length() > 0 {
		fn := g.pending.Remove().(func())
		g.mu.Unlock()
		fn()
		n++
		g.mu.Lock()
	}
	g.ready = true
	g.draining = false
	g.mu.Unlock()
	return n
}

// Ready reports whether the gate is open.
func (g *ReadyGate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

// Pending returns the number of queued actions.
func (g *ReadyGate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending.Length()
}
