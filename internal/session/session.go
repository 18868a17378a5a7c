// File: internal/session/session.go
// Package session
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lifecycle state machine shared by every parse session.

package session

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-csv/api"
)

// Lifecycle tracks Created -> Reading -> {Finished | Aborted | Errored}.
type Lifecycle struct {
	mu    sync.Mutex
	state api.SessionState
	err   error
	done  chan struct{}
	once  sync.Once
}

// NewLifecycle returns a lifecycle in the Created state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		state: api.SessionCreated,
		done:  make(chan struct{}),
	}
}

// State returns the current state.
func (l *Lifecycle) State() api.SessionState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Begin moves Created to Reading. It fails once the lifecycle is terminal.
func (l *Lifecycle) Begin() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case api.SessionCreated:
		l.state = api.SessionReading
		return nil
	case api.SessionReading:
		return nil
	case api.SessionAborted:
		return api.ErrAborted
	default:
		return fmt.Errorf("%w: session is %s", api.ErrSessionClosed, l.state)
	}
}

// Terminate moves to a terminal state and records err. Only the first call
// has an effect; it reports whether this call made the transition.
func (l *Lifecycle) Terminate(state api.SessionState, err error) bool {
	if !state.Terminal() {
		panic(api.NewError(api.ErrCodeInternal, "non-terminal target state").
			WithContext("state", state.String()))
	}
	l.mu.Lock()
	if l.state.Terminal() {
		l.mu.Unlock()
		return false
	}
	l.state = state
	l.err = err
	l.mu.Unlock()
	l.once.Do(func() { close(l.done) })
	return true
}

// Err returns the error recorded by Terminate.
func (l *Lifecycle) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Done returns a channel closed once the lifecycle is terminal.
func (l *Lifecycle) Done() <-chan struct{} {
	return l.done
}
