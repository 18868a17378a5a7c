// File: engine/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package engine

import "github.com/momentics/hioload-csv/api"

type scanState uint8

const (
	stateFieldStart scanState = iota
	stateUnquoted
	stateQuoted
	stateQuoteInQuoted
)

// handle is not safe for concurrent use; the session layer drives it from a
// single goroutine.
type handle struct {
	engine *Engine
	opts   api.EngineOptions

	row   api.RowTrampoline
	read  api.ReadTrampoline
	slot  api.Slot
	input []byte

	sc         *rowScratch
	state      scanState
	fieldStart int
	fieldFlags byte
	rowStarted bool
	pendingCR  bool

	scanned   uint64
	failed    api.Status
	aborted   bool
	finished  bool
	destroyed bool
}

var _ api.Handle = (*handle)(nil)

func (h *handle) SetRowHandler(fn api.RowTrampoline) { h.row = fn }
func (h *handle) SetContext(slot api.Slot) { h.slot = slot }
func (h *handle) SetInputBuffer(buf []byte) { h.input = buf }
func (h *handle) SetReadCallback(fn api.ReadTrampoline) { h.read = fn }
func (h *handle) Scanned() uint64 { return h.scanned }

// Abort stops row delivery. A Feed in progress returns StatusCancelled after
// the current callback.
func (h *handle) Abort() {
	h.aborted = true
}

func (h *handle) Destroy() {
	if h.destroyed {
		panic(api.NewError(api.ErrCodeInternal, "engine handle destroyed twice").
			WithContext("slot", h.slot))
	}
	h.destroyed = true
	h.row = nil
	h.read = nil
	h.input = nil
	h.sc.data = h.sc.data[:0]
	h.sc.bounds = h.sc.bounds[:0]
	h.sc.flags = h.sc.flags[:0]
	h.engine.scratch.Put(h.sc)
	h.sc = &rowScratch{}
	h.engine.live.Add(-1)
}

// blocked returns the status a step must report without parsing, or StatusOK.
func (h *handle) blocked() api.Status {
	switch {
	case h.failed != api.StatusOK:
		return h.failed
	case h.aborted:
		return api.StatusCancelled
	case h.finished, h.destroyed:
		return StatusClosed
	}
	return api.StatusOK
}

func (h *handle) Feed(n int) api.Status {
	if st := h.blocked(); st != api.StatusOK {
		return st
	}
	if n > len(h.input) {
		n = len(h.input)
	}
	return h.scan(h.input[:n])
}

func (h *handle) ParseMore() api.Status {
	if st := h.blocked(); st != api.StatusOK {
		return st
	}
	if h.read == nil {
		h.failed = StatusNoReader
		return h.failed
	}
	n := h.read(h.slot, h.input)
	if n <= 0 {
		return api.StatusNoMoreInput
	}
	if n > len(h.input) {
		n = len(h.input)
	}
	return h.scan(h.input[:n])
}

func (h *handle) Finish() api.Status {
	if h.finished {
		return api.StatusNoMoreInput
	}
	if st := h.blocked(); st != api.StatusOK {
		return st
	}
	h.finished = true
	switch h.state {
	case stateQuoted:
		if h.opts.Strict {
			h.failed = StatusUnterminatedQuote
			return h.failed
		}
	}
	if h.rowStarted {
		if st := h.endRow(); st != api.StatusOK {
			return st
		}
	}
	return api.StatusNoMoreInput
}

func (h *handle) scan(p []byte) api.Status {
	delim, quote := h.opts.Delimiter, h.opts.Quote
	if h.opts.NoQuotes {
		quote = 0
	}
	i := 0
	stop := func(st api.Status) api.Status {
		h.scanned += uint64(i + 1)
		return st
	}
	for ; i < len(p); i++ {
		c := p[i]
		if h.pendingCR {
			h.pendingCR = false
			if c == '\n' {
				continue
			}
		}
		switch h.state {
		case stateFieldStart, stateUnquoted:
			if h.state == stateFieldStart && c == quote && quote != 0 {
				h.state = stateQuoted
				h.fieldFlags |= api.QuoteClosed
				h.rowStarted = true
				continue
			}
			// Copy the plain run up to the next special byte in one append.
			j := i
			for j < len(p) {
				b := p[j]
				if b == delim || b == '\n' || b == '\r' || (b == quote && quote != 0) {
					break
				}
				j++
			}
			if j > i {
				h.sc.data = append(h.sc.data, p[i:j]...)
				h.state = stateUnquoted
				h.rowStarted = true
				i = j - 1
				if st := h.checkRowSize(); st != api.StatusOK {
					return stop(st)
				}
				continue
			}
			switch c {
			case delim:
				h.rowStarted = true
				if st := h.endField(); st != api.StatusOK {
					return stop(st)
				}
			case '\n', '\r':
				h.pendingCR = c == '\r'
				if h.rowStarted {
					if st := h.endRow(); st != api.StatusOK {
						return stop(st)
					}
				}
			default:
				// Quote inside an unquoted field.
				if h.opts.Strict {
					h.failed = StatusBareQuote
					return stop(h.failed)
				}
				h.sc.data = append(h.sc.data, c)
				h.state = stateUnquoted
			}
		case stateQuoted:
			if c == quote {
				h.state = stateQuoteInQuoted
				continue
			}
			if c == delim || c == '\n' || c == '\r' {
				h.fieldFlags |= api.QuoteNeeded
			}
			h.sc.data = append(h.sc.data, c)
			if st := h.checkRowSize(); st != api.StatusOK {
				return stop(st)
			}
		case stateQuoteInQuoted:
			switch c {
			case quote:
				h.sc.data = append(h.sc.data, quote)
				h.fieldFlags |= api.QuoteEmbedded | api.QuoteNeeded
				h.state = stateQuoted
			case delim:
				if st := h.endField(); st != api.StatusOK {
					return stop(st)
				}
			case '\n', '\r':
				h.pendingCR = c == '\r'
				if st := h.endRow(); st != api.StatusOK {
					return stop(st)
				}
			default:
				if h.opts.Strict {
					h.failed = StatusBareQuote
					return stop(h.failed)
				}
				h.sc.data = append(h.sc.data, c)
				h.state = stateUnquoted
			}
		}
	}
	h.scanned += uint64(len(p))
	return api.StatusOK
}

func (h *handle) checkRowSize() api.Status {
	if h.opts.MaxRowSize > 0 && len(h.sc.data) > h.opts.MaxRowSize {
		h.failed = StatusRowOverflow
		return h.failed
	}
	return api.StatusOK
}

func (h *handle) endField() api.Status {
	if h.opts.MaxColumns > 0 && len(h.sc.flags) >= h.opts.MaxColumns {
		h.failed = StatusColumnOverflow
		return h.failed
	}
	h.sc.bounds = append(h.sc.bounds, h.fieldStart, len(h.sc.data))
	h.sc.flags = append(h.sc.flags, h.fieldFlags)
	h.fieldStart = len(h.sc.data)
	h.fieldFlags = 0
	h.state = stateFieldStart
	return api.StatusOK
}

// endRow closes the last field, reports the row and resets the row buffer.
func (h *handle) endRow() api.Status {
	if st := h.endField(); st != api.StatusOK {
		return st
	}
	if h.row != nil && !h.aborted {
		h.row(h.slot)
	}
	h.sc.data = h.sc.data[:0]
	h.sc.bounds = h.sc.bounds[:0]
	h.sc.flags = h.sc.flags[:0]
	h.fieldStart = 0
	h.rowStarted = false
	if h.aborted {
		return api.StatusCancelled
	}
	return api.StatusOK
}

func (h *handle) CellCount() int {
	return len(h.sc.flags)
}

func (h *handle) Cell(i int) api.Cell {
	if i < 0 || i >= len(h.sc.flags) {
		return api.Cell{}
	}
	return api.Cell{
		Bytes:  h.sc.data[h.sc.bounds[2*i]:h.sc.bounds[2*i+1]:h.sc.bounds[2*i+1]],
		Quoted: h.sc.flags[i],
	}
}

func (h *handle) CellLen(i int) int {
	if i < 0 || i >= len(h.sc.flags) {
		return 0
	}
	return h.sc.bounds[2*i+1] - h.sc.bounds[2*i]
}

func (h *handle) CopyCell(i int, dst []byte) int {
	return copy(dst, h.Cell(i).Bytes)
}
