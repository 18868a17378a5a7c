// File: facade/session.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Session is one parse in progress. It owns an engine handle, the input
// buffer, an optional cell scratch buffer and the row handler with its
// context. A session is driven from one goroutine at a time: the caller in
// direct mode, the event loop in push mode.

package facade

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-csv/api"
	"github.com/momentics/hioload-csv/internal/session"
	"github.com/momentics/hioload-csv/pool"
)

type Session struct {
	p      *Parser
	slot   api.Slot
	handle api.Handle
	opts   api.EngineOptions

	onRow  RowHandler
	onData RowDataHandler
	ctx    any

	input      *pool.GrowableBuffer
	cells      *pool.GrowableBuffer // nil unless CopyCells
	bounds     []int
	row        []string
	bufferSize int
	zeroCopy   bool

	progress      api.ProgressFunc
	progressEvery uint64

	lc        *session.Lifecycle
	rows      atomic.Uint64
	bytesRead atomic.Uint64

	// Driving-goroutine state.
	src          api.PullSource
	srcErr       error
	srcDone      bool
	inStep       bool
	halted       bool
	finishCalled bool

	releaseOnce sync.Once
	releasedCh  chan struct{}
}

var _ api.RowAccessor = (*Session)(nil)

func newSession(p *Parser, cfg *Config, sc *SessionConfig) *Session {
	s := &Session{
		p:             p,
		opts:          cfg.Engine,
		input:         pool.NewGrowableBuffer(cfg.MaxBufferSize),
		bufferSize:    cfg.BufferSize,
		zeroCopy:      cfg.ZeroCopyRows,
		progressEvery: uint64(cfg.ProgressEvery),
		lc:            session.NewLifecycle(),
		releasedCh:    make(chan struct{}),
	}
	if cfg.CopyCells {
		s.cells = pool.NewGrowableBuffer(cfg.MaxBufferSize)
	}
	if sc != nil {
		if sc.Engine != nil {
			s.opts = mergeEngine(s.opts, *sc.Engine)
		}
		if sc.BufferSize > 0 {
			s.bufferSize = sc.BufferSize
		}
		if sc.ProgressEvery > 0 {
			s.progressEvery = uint64(sc.ProgressEvery)
		}
		s.progress = sc.Progress
	}
	if s.progressEvery == 0 {
		s.progressEvery = 1
	}
	return s
}

// Slot returns the registry slot the engine carries back to the trampolines.
func (s *Session) Slot() api.Slot { return s.slot }

// Context returns the value given at creation.
func (s *Session) Context() any { return s.ctx }

// State returns the lifecycle state.
func (s *Session) State() api.SessionState { return s.lc.State() }

// Err returns the error that ended the session, if any.
func (s *Session) Err() error { return s.lc.Err() }

// Rows returns the number of rows delivered to the handler.
func (s *Session) Rows() uint64 { return s.rows.Load() }

// BytesRead returns the number of bytes handed to the engine.
func (s *Session) BytesRead() uint64 { return s.bytesRead.Load() }

// Done is closed once the session reached a terminal state and released its
// engine handle, buffers and slot.
func (s *Session) Done() <-chan struct{} { return s.releasedCh }

// ParseBytes feeds one chunk. Rows completed by the chunk are delivered
// before it returns; a trailing partial row waits for more input or Finish.
// An empty chunk is a no-op.
func (s *Session) ParseBytes(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := s.lc.Begin(); err != nil {
		return err
	}
	grew, err := s.input.EnsureCapacity(len(p))
	if err != nil {
		return s.fail(err)
	}
	if grew {
		s.handle.SetInputBuffer(s.input.Bytes())
	}
	n := copy(s.input.Bytes(), p)
	s.bytesRead.Add(uint64(n))
	return s.settle(s.step(func() api.Status { return s.handle.Feed(n) }))
}

// Finish flushes a pending partial row and ends the session. It must be
// called exactly once; a second call returns api.ErrInvalidState.
func (s *Session) Finish() error {
	if s.finishCalled {
		return fmt.Errorf("finish called twice on slot %d: %w", s.slot, api.ErrInvalidState)
	}
	switch s.lc.State() {
	case api.SessionAborted, api.SessionErrored:
		return s.lc.Err()
	}
	if err := s.lc.Begin(); err != nil {
		return err
	}
	s.finishCalled = true
	return s.settle(s.step(s.handle.Finish))
}

// Abort stops row delivery and moves the session to Aborted. Called from a
// row handler it takes effect when the current feed step returns; otherwise
// resources are released at once. Aborting a terminal session is a no-op.
//
// Abort must run on the goroutine driving the session: the caller of
// ParseBytes and Finish, or a row handler. To stop a running Consume from
// another goroutine, cancel its context.
func (s *Session) Abort() {
	if s.halted || s.lc.State().Terminal() {
		return
	}
	s.halted = true
	s.handle.Abort()
	s.lc.Terminate(api.SessionAborted, api.ErrAborted)
	log.Debugf("session %d aborted after %d rows", s.slot, s.rows.Load())
	s.release()
}

// Delete tears the session down, aborting it first if it is still running.
// It is safe to call more than once and from inside a row handler.
func (s *Session) Delete() {
	s.Abort()
	s.release()
}

// step runs one engine call with the in-step marker set, so that teardown
// requested by a row handler waits for the engine to return.
func (s *Session) step(fn func() api.Status) api.Status {
	s.inStep = true
	defer func() { s.inStep = false }()
	return fn()
}

// settle maps a step status onto the lifecycle.
func (s *Session) settle(st api.Status) error {
	switch st {
	case api.StatusOK:
		if s.lc.State().Terminal() {
			s.release()
			return s.lc.Err()
		}
		return nil
	case api.StatusNoMoreInput:
		s.finishCalled = true
		s.lc.Terminate(api.SessionFinished, nil)
		s.release()
		return s.lc.Err()
	case api.StatusCancelled:
		s.halted = true
		s.lc.Terminate(api.SessionAborted, api.ErrAborted)
		s.release()
		return s.lc.Err()
	}
	return s.fail(&api.ParseError{Slot: s.slot, Status: st, BytesRead: s.bytesRead.Load()})
}

// fail moves the session to Errored and tears it down.
func (s *Session) fail(err error) error {
	if !s.halted {
		s.halted = true
		s.handle.Abort()
	}
	if s.lc.Terminate(api.SessionErrored, err) {
		log.Warningf("session %d failed: %v", s.slot, err)
	}
	s.release()
	return s.lc.Err()
}

// release destroys the handle, drops both buffers and frees the slot, once.
// Inside a step it is deferred to settle.
func (s *Session) release() {
	if s.inStep {
		return
	}
	s.releaseOnce.Do(func() {
		s.handle.Destroy()
		s.input.Release()
		if s.cells != nil {
			s.cells.Release()
		}
		s.row, s.bounds, s.src = nil, nil, nil
		if err := s.p.registry.Unregister(s.slot); err != nil {
			log.Errorf("unregister slot %d: %v", s.slot, err)
		}
		s.p.released(s)
		close(s.releasedCh)
	})
}
