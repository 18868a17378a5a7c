// Package fake
// Author: momentics <momentics@gmail.com>
//
// Scripted engine for testing the session layer. Rows are split on '\n' and
// cells on the delimiter with no quoting; feed failures and creation failures
// can be injected, and every lifecycle call is counted.

package fake

import (
	"bytes"
	"sync"

	"github.com/momentics/hioload-csv/api"
)

// Engine is a fake implementation of api.Engine.
type Engine struct {
	mu      sync.Mutex
	handles []*Handle

	// CreateErr, when set, is returned by Create.
	CreateErr error
	// FailOnFeed makes the n-th Feed or ParseMore of every handle return FailStatus.
	FailOnFeed int
	FailStatus api.Status
}

var _ api.Engine = (*Engine)(nil)

// NewEngine creates a fake engine.
func NewEngine() *Engine {
	return &Engine{FailStatus: 99}
}

// Create implements api.Engine.Create.
func (e *Engine) Create(opts api.EngineOptions) (api.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.CreateErr != nil {
		return nil, e.CreateErr
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	h := &Handle{opts: opts, failOn: e.FailOnFeed, failStatus: e.FailStatus}
	e.handles = append(e.handles, h)
	return h, nil
}

// Handles returns every handle created so far.
func (e *Engine) Handles() []*Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Handle(nil), e.handles...)
}

// Handle is a fake implementation of api.Handle.
type Handle struct {
	opts       api.EngineOptions
	failOn     int
	failStatus api.Status

	row   api.RowTrampoline
	read  api.ReadTrampoline
	slot  api.Slot
	input []byte

	pending []byte
	cells   [][]byte
	scanned uint64

	Feeds     int
	Finishes  int
	Aborts    int
	Destroys  int
	BufferSet int
	aborted   bool
	failed    api.Status
}

func (h *Handle) SetRowHandler(fn api.RowTrampoline) { h.row = fn }
func (h *Handle) SetContext(slot api.Slot) { h.slot = slot }
func (h *Handle) SetReadCallback(fn api.ReadTrampoline) { h.read = fn }
func (h *Handle) Scanned() uint64 { return h.scanned }

func (h *Handle) SetInputBuffer(buf []byte) {
	h.input = buf
	h.BufferSet++
}

// Slot returns the context slot the handle was configured with.
func (h *Handle) Slot() api.Slot { return h.slot }

// Destroyed reports whether Destroy ran.
func (h *Handle) Destroyed() bool { return h.Destroys > 0 }

func (h *Handle) Feed(n int) api.Status {
	if st := h.step(); st != api.StatusOK {
		return st
	}
	return h.parse(h.input[:n])
}

func (h *Handle) ParseMore() api.Status {
	if st := h.step(); st != api.StatusOK {
		return st
	}
	n := h.read(h.slot, h.input)
	if n == 0 {
		return api.StatusNoMoreInput
	}
	return h.parse(h.input[:n])
}

func (h *Handle) step() api.Status {
	if h.aborted {
		return api.StatusCancelled
	}
	if h.failed != api.StatusOK {
		return h.failed
	}
	h.Feeds++
	if h.failOn > 0 && h.Feeds == h.failOn {
		h.failed = h.failStatus
		return h.failed
	}
	return api.StatusOK
}

func (h *Handle) parse(p []byte) api.Status {
	h.scanned += uint64(len(p))
	h.pending = append(h.pending, p...)
	for {
		i := bytes.IndexByte(h.pending, '\n')
		if i < 0 {
			return api.StatusOK
		}
		if st := h.emit(h.pending[:i]); st != api.StatusOK {
			return st
		}
		h.pending = h.pending[i+1:]
	}
}

func (h *Handle) emit(line []byte) api.Status {
	h.cells = bytes.Split(line, []byte{h.opts.Delimiter})
	if h.row != nil && !h.aborted {
		h.row(h.slot)
	}
	h.cells = nil
	if h.aborted {
		return api.StatusCancelled
	}
	return api.StatusOK
}

func (h *Handle) Finish() api.Status {
	h.Finishes++
	if h.aborted {
		return api.StatusCancelled
	}
	if h.failed != api.StatusOK {
		return h.failed
	}
	if len(h.pending) > 0 {
		line := h.pending
		h.pending = nil
		if st := h.emit(line); st != api.StatusOK {
			return st
		}
	}
	return api.StatusNoMoreInput
}

func (h *Handle) Abort() {
	h.Aborts++
	h.aborted = true
}

func (h *Handle) Destroy() {
	h.Destroys++
	h.row = nil
	h.read = nil
}

// Fire invokes the configured row trampoline as a misbehaving engine would.
// It reports whether a trampoline was still attached.
func (h *Handle) Fire() bool {
	if h.row == nil {
		return false
	}
	h.row(h.slot)
	return true
}

// FireAt invokes the row trampoline with an arbitrary slot.
func (h *Handle) FireAt(slot api.Slot) bool {
	if h.row == nil {
		return false
	}
	h.row(slot)
	return true
}

func (h *Handle) CellCount() int { return len(h.cells) }

func (h *Handle) Cell(i int) api.Cell {
	if i < 0 || i >= len(h.cells) {
		return api.Cell{}
	}
	return api.Cell{Bytes: h.cells[i]}
}

func (h *Handle) CellLen(i int) int { return len(h.Cell(i).Bytes) }

func (h *Handle) CopyCell(i int, dst []byte) int { return copy(dst, h.Cell(i).Bytes) }
