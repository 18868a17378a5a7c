// File: engine/engine.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/momentics/hioload-csv/api"
	"github.com/momentics/hioload-csv/pool"
)

// Engine creates tokenizer handles. Create fails until Init has run.
type Engine struct {
	ready   atomic.Bool
	scratch *pool.SyncPool[*rowScratch]
	live    atomic.Int64
}

var (
	_ api.Engine      = (*Engine)(nil)
	_ api.Initializer = (*Engine)(nil)
)

type rowScratch struct {
	data   []byte
	bounds []int
	flags  []byte
}

// New returns an uninitialized engine.
func New() *Engine {
	return &Engine{
		scratch: pool.NewSyncPool(func() *rowScratch {
			return &rowScratch{
				data:   make([]byte, 0, 512),
				bounds: make([]int, 0, 32),
				flags:  make([]byte, 0, 16),
			}
		}),
	}
}

// Init marks the engine runtime ready.
func (e *Engine) Init() error {
	e.ready.Store(true)
	return nil
}

// Live returns the number of created and not yet destroyed handles.
func (e *Engine) Live() int64 {
	return e.live.Load()
}

// Create returns a new handle configured with opts.
func (e *Engine) Create(opts api.EngineOptions) (api.Handle, error) {
	if !e.ready.Load() {
		return nil, api.ErrNotReady
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Quote == 0 {
		opts.Quote = '"'
	}
	switch opts.Delimiter {
	case '\n', '\r', '\f', opts.Quote:
		return nil, fmt.Errorf("delimiter %q: %w", opts.Delimiter, api.ErrInvalidArgument)
	}
	if opts.MaxColumns < 0 || opts.MaxRowSize < 0 {
		return nil, fmt.Errorf("negative limits: %w", api.ErrInvalidArgument)
	}
	e.live.Add(1)
	sc := e.scratch.Get()
	return &handle{
		engine: e,
		opts:   opts,
		sc:     sc,
		state:  stateFieldStart,
	}, nil
}
