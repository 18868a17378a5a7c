// File: facade/parser.go
// Unified facade layer for hioload-csv.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Parser aggregates the session registry, the row and read trampolines, the
// deferred-init gate and the event loop that drives push sources. It is the
// only place sessions are created, and the only value the engine's
// trampolines close over.

package facade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tliron/commonlog"

	"github.com/momentics/hioload-csv/adapters"
	"github.com/momentics/hioload-csv/api"
	"github.com/momentics/hioload-csv/core/concurrency"
	"github.com/momentics/hioload-csv/internal/session"
)

var log = commonlog.GetLogger("hioload-csv.facade")

// RowHandler receives control once per row. Cells are read through the
// session accessors, which are valid only until the handler returns.
type RowHandler func(s *Session, ctx any)

// RowDataHandler receives the cells of one row. The slice and its strings
// must be copied to be kept past the call when ZeroCopyRows is set.
type RowDataHandler func(row []string, ctx any)

// Parser is the main facade type.
// It implements api.GracefulShutdown to allow unified shutdown logic.
type Parser struct {
	engine   api.Engine
	registry *session.Registry[Session]
	gate     *concurrency.ReadyGate
	loop     *concurrency.EventLoop
	control  *adapters.ControlAdapter

	// Trampolines are bound once and shared by every handle.
	rowNoDataFn   api.RowTrampoline
	rowWithDataFn api.RowTrampoline
	readFn        api.ReadTrampoline

	mu        sync.RWMutex
	config    Config
	started   bool
	stopped   bool
	startedAt time.Time

	created atomic.Uint64
	rows    atomic.Uint64
	bytes   atomic.Uint64
	errored atomic.Uint64
	aborted atomic.Uint64
}

// Ensure compliance with api.GracefulShutdown.
var _ api.GracefulShutdown = (*Parser)(nil)

// New constructs a Parser over engine. A nil cfg selects DefaultConfig.
func New(engine api.Engine, cfg *Config) (*Parser, error) {
	if engine == nil {
		return nil, fmt.Errorf("nil engine: %w", api.ErrInvalidArgument)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BufferSize <= 0 || cfg.MaxBufferSize < 0 {
		return nil, fmt.Errorf("buffer size %d, max %d: %w", cfg.BufferSize, cfg.MaxBufferSize, api.ErrInvalidArgument)
	}
	if cfg.MaxBufferSize > 0 && cfg.BufferSize > cfg.MaxBufferSize {
		return nil, fmt.Errorf("buffer size %d exceeds max %d: %w", cfg.BufferSize, cfg.MaxBufferSize, api.ErrInvalidArgument)
	}
	if cfg.ProgressEvery < 0 {
		return nil, fmt.Errorf("progress interval %d: %w", cfg.ProgressEvery, api.ErrInvalidArgument)
	}

	p := &Parser{
		engine:   engine,
		registry: session.NewRegistry[Session](),
		gate:     concurrency.NewReadyGate(),
		loop:     concurrency.NewEventLoop(cfg.BatchSize, cfg.RingCapacity),
		control:  adapters.NewControlAdapter(),
		config:   *cfg,
	}
	p.rowNoDataFn = p.rowNoData
	p.rowWithDataFn = p.rowWithData
	p.readFn = p.read
	p.loop.RegisterHandler(p)

	// Expose configuration values via Control for observability and hot-reload.
	p.control.SetConfig(cfg.asMap())
	p.control.OnReload(p.reload)

	if cfg.EnableDebug {
		p.control.RegisterDebugProbe("registry.active", func() any { return p.registry.Active() })
		p.control.RegisterDebugProbe("registry.slots", func() any { return p.registry.Len() })
		p.control.RegisterDebugProbe("registry.resets", func() any { return p.registry.Resets() })
		p.control.RegisterDebugProbe("loop.pending", func() any { return p.loop.Pending() })
		p.control.RegisterDebugProbe("loop.processed", func() any { return p.loop.Processed() })
	}
	return p, nil
}

// Start initializes the engine runtime, starts the event loop and runs the
// actions queued by RunOnLoad. Subsequent calls to Start have no effect.
func (p *Parser) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return fmt.Errorf("parser shut down: %w", api.ErrInvalidState)
	}
	if p.started {
		p.mu.Unlock()
		return nil
	}
	if initializer, ok := p.engine.(api.Initializer); ok {
		if err := initializer.Init(); err != nil {
			p.mu.Unlock()
			return fmt.Errorf("engine init: %w", err)
		}
	}
	go p.loop.Run()
	p.started = true
	p.startedAt = time.Now()
	metrics := p.config.EnableMetrics
	p.mu.Unlock()

	if metrics {
		p.control.SetMetric("sessions.active", 0)
	}
	n := p.gate.MarkReady()
	log.Infof("parser started, %d deferred actions run", n)
	return nil
}

// RunOnLoad runs fn once the parser is started, or immediately if it already
// is. Queued actions run in the order they were deferred.
func (p *Parser) RunOnLoad(fn func()) {
	p.gate.Defer(fn)
}

// Ready reports whether Start has completed its deferred actions.
func (p *Parser) Ready() bool {
	return p.gate.Ready()
}

// Shutdown stops the event loop and deletes every session still registered.
// Direct-mode feeding must not run concurrently with Shutdown.
func (p *Parser) Shutdown() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	p.mu.Unlock()

	p.loop.Stop()
	var remaining []*Session
	p.registry.Range(func(_ api.Slot, s *Session) {
		remaining = append(remaining, s)
	})
	for _, s := range remaining {
		s.Delete()
	}
	if len(remaining) > 0 {
		log.Warningf("shutdown aborted %d active sessions", len(remaining))
	}
	log.Info("parser stopped")
	return nil
}

// Control returns the Control interface for dynamic config and metrics.
func (p *Parser) Control() api.Control {
	return p.control
}

// Active returns the number of sessions currently registered.
func (p *Parser) Active() int {
	return p.registry.Active()
}

// Metrics returns a snapshot of the parser counters.
func (p *Parser) Metrics() api.ParserMetrics {
	p.mu.RLock()
	startedAt := p.startedAt
	p.mu.RUnlock()
	return api.ParserMetrics{
		ActiveSessions:  p.registry.Active(),
		CreatedSessions: p.created.Load(),
		Rows:            p.rows.Load(),
		BytesRead:       p.bytes.Load(),
		Errored:         p.errored.Load(),
		Aborted:         p.aborted.Load(),
		StartedAt:       startedAt,
	}
}

// NewSession creates a session whose handler pulls cells lazily through the
// session accessors. ctx is handed back to every handler call.
func (p *Parser) NewSession(handler RowHandler, ctx any, sc *SessionConfig) (*Session, error) {
	if handler == nil {
		return nil, fmt.Errorf("nil row handler: %w", api.ErrInvalidArgument)
	}
	return p.newSession(handler, nil, ctx, sc)
}

// NewDataSession creates a session whose handler receives every row as a
// slice of cell strings.
func (p *Parser) NewDataSession(handler RowDataHandler, ctx any, sc *SessionConfig) (*Session, error) {
	if handler == nil {
		return nil, fmt.Errorf("nil row handler: %w", api.ErrInvalidArgument)
	}
	return p.newSession(nil, handler, ctx, sc)
}

func (p *Parser) newSession(onRow RowHandler, onData RowDataHandler, ctx any, sc *SessionConfig) (*Session, error) {
	p.mu.RLock()
	started, stopped, cfg := p.started, p.stopped, p.config
	p.mu.RUnlock()
	if stopped {
		return nil, fmt.Errorf("parser shut down: %w", api.ErrInvalidState)
	}
	if !started {
		return nil, api.ErrNotReady
	}

	s := newSession(p, &cfg, sc)
	s.onRow, s.onData, s.ctx = onRow, onData, ctx

	slot, err := p.registry.Register(s)
	if err != nil {
		return nil, err
	}
	s.slot = slot

	h, err := p.engine.Create(s.opts)
	if err == nil && h == nil {
		err = errors.New("engine returned no handle")
	}
	if err != nil {
		if uerr := p.registry.Unregister(slot); uerr != nil {
			log.Errorf("unregister slot %d: %v", slot, uerr)
		}
		s.input.Release()
		if errors.Is(err, api.ErrNotReady) || errors.Is(err, api.ErrInvalidArgument) {
			return nil, fmt.Errorf("create engine handle: %w", err)
		}
		return nil, fmt.Errorf("create engine handle: %w: %w", api.ErrResourceExhausted, err)
	}
	s.handle = h
	h.SetContext(slot)
	if onData != nil {
		h.SetRowHandler(p.rowWithDataFn)
	} else {
		h.SetRowHandler(p.rowNoDataFn)
	}

	p.created.Add(1)
	if cfg.EnableMetrics {
		p.control.AddMetric("sessions.created", 1)
		p.control.SetMetric("sessions.active", p.registry.Active())
	}
	log.Debugf("session %d created", slot)
	return s, nil
}

// released folds a session's counters into the parser totals.
func (p *Parser) released(s *Session) {
	rows, n := s.rows.Load(), s.bytesRead.Load()
	p.rows.Add(rows)
	p.bytes.Add(n)
	state := s.lc.State()
	switch state {
	case api.SessionErrored:
		p.errored.Add(1)
	case api.SessionAborted:
		p.aborted.Add(1)
	}

	p.mu.RLock()
	metrics := p.config.EnableMetrics
	p.mu.RUnlock()
	if metrics {
		p.control.AddMetric("rows.delivered", int64(rows))
		p.control.AddMetric("bytes.read", int64(n))
		switch state {
		case api.SessionErrored:
			p.control.AddMetric("sessions.errored", 1)
		case api.SessionAborted:
			p.control.AddMetric("sessions.aborted", 1)
		}
		p.control.SetMetric("sessions.active", p.registry.Active())
	}
	log.Debugf("session %d released: %s, %d rows, %d bytes", s.slot, state, rows, n)
}

// reload applies Control config changes to the defaults of new sessions.
func (p *Parser) reload() {
	snap := p.control.GetConfig()
	p.mu.Lock()
	p.config.apply(snap)
	p.mu.Unlock()
	log.Debug("config reloaded")
}
