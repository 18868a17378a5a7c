// File: core/concurrency/eventloop.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// EventLoop is the single goroutine that drives push-based sessions. Chunk
// events from any number of sources are queued in arrival order and handed to
// registered handlers one at a time, so no two feed steps ever overlap.
// Suspension happens only between events, never inside a handler.

package concurrency

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-csv/api"
)

type Event = api.Event

type EventHandler interface {
	// HandleEvent processes a single Event.
	HandleEvent(ev Event)
}

// EventLoop batches events and dispatches them to handlers on one goroutine.
// The handler list is copy-on-write behind a mutex.
type EventLoop struct {
	handlers     atomic.Value  // stores []EventHandler slice (atomically swapped)
	handlersMu   sync.Mutex    // protects writes to handlers slice
	inbox        chan Event    // channel of incoming events
	batchSize    int           // max batch size per poll
	ringCapacity int           // size of event buffer
	quitCh       chan struct{} // closed on Stop()
	doneCh       chan struct{} // closed after Run() exits
	stopOnce     sync.Once
	running      atomic.Bool
	processed    atomic.Uint64
}

// NewEventLoop creates a new EventLoop with batchSize and ringCapacity parameters.
func NewEventLoop(batchSize, ringCapacity int) *EventLoop {
	if batchSize <= 0 {
		batchSize = 16
	}
	if ringCapacity <= 0 {
		ringCapacity = 1024
	}
	el := &EventLoop{
		inbox:        make(chan Event, ringCapacity),
		batchSize:    batchSize,
		ringCapacity: ringCapacity,
		quitCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	el.handlers.Store([]EventHandler{})
	return el
}

// RegisterHandler adds a new event handler.
func (el *EventLoop) RegisterHandler(h EventHandler) {
	el.handlersMu.Lock()
	defer el.handlersMu.Unlock()
	oldHandlers := el.handlers.Load().([]EventHandler)
	newHandlers := make([]EventHandler, len(oldHandlers)+1)
	copy(newHandlers, oldHandlers)
	newHandlers[len(oldHandlers)] = h
	el.handlers.Store(newHandlers)
}

// Run processes events until Stop is called.
func (el *EventLoop) Run() {
	if !el.running.CompareAndSwap(false, true) {
		return
	}
	defer func() {
		el.drain()
		close(el.doneCh)
	}()

	batch := make([]Event, 0, el.batchSize)
	backoffNs := int64(1)
	const maxBackoffNs = int64(1_000_000)

	timer := time.NewTimer(time.Hour)
	stopTimer(timer)

	for {
		batch = batch[:0]

	DrainLoop:
		for i := 0; i < el.batchSize; i++ {
			select {
			case ev := <-el.inbox:
				batch = append(batch, ev)
			default:
				break DrainLoop
			}
		}

		if len(batch) == 0 {
			timer.Reset(time.Duration(backoffNs))
			select {
			case <-el.quitCh:
				stopTimer(timer)
				return
			case ev := <-el.inbox:
				stopTimer(timer)
				el.dispatch(ev)
				backoffNs = 1
			case <-timer.C:
				backoffNs *= 2
				if backoffNs > maxBackoffNs {
					backoffNs = maxBackoffNs
				}
			}
			continue
		}

		for _, ev := range batch {
			el.dispatch(ev)
		}
		backoffNs = 1
		select {
		case <-el.quitCh:
			return
		default:
		}
	}
}

func (el *EventLoop) dispatch(ev Event) {
	el.processed.Add(1)
	if ev.Fn != nil {
		ev.Fn()
		return
	}
	handlers := el.handlers.Load().([]EventHandler)
	for _, handler := range handlers {
		handler.HandleEvent(ev)
	}
}

// drain releases pooled chunks of events that will never be dispatched.
func (el *EventLoop) drain() {
	for {
		select {
		case ev := <-el.inbox:
			ev.Chunk.Done()
		default:
			return
		}
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// Pending returns approximate count of buffered events waiting in inbox.
func (el *EventLoop) Pending() int {
	return len(el.inbox)
}

// Processed returns the number of events dispatched so far.
func (el *EventLoop) Processed() uint64 {
	return el.processed.Load()
}

// Post adds an event without blocking; it returns false if the inbox is full
// or the loop is stopped.
func (el *EventLoop) Post(ev Event) bool {
	select {
	case <-el.quitCh:
		return false
	default:
	}
	select {
	case el.inbox <- ev:
		return true
	default:
		return false
	}
}

// PostWait blocks until ev is queued, ctx is done or the loop stops.
func (el *EventLoop) PostWait(ctx context.Context, ev Event) error {
	select {
	case <-el.quitCh:
		return ErrLoopStopped
	default:
	}
	select {
	case el.inbox <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-el.quitCh:
		return ErrLoopStopped
	}
}

// Call runs fn on the loop goroutine and waits for it to return.
func (el *EventLoop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := el.PostWait(ctx, Event{Fn: func() {
		defer close(done)
		fn()
	}}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-el.doneCh:
		select {
		case <-done:
			return nil
		default:
			return ErrLoopStopped
		}
	}
}

// Stop signals the Run loop to exit and waits for completion.
func (el *EventLoop) Stop() {
	el.stopOnce.Do(func() { close(el.quitCh) })
	if el.running.Load() {
		<-el.doneCh
		return
	}
	el.drain()
}
