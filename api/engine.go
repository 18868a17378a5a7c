// File: api/engine.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Engine ABI consumed by the session layer. The engine tokenizes bytes into
// rows and cells; it can call back only through context-free trampolines that
// receive a Slot, never a rich session value.

package api

import "fmt"

// Status is the result of one engine step.
type Status int

const (
	// StatusOK means the step consumed its input and parsing may continue.
	StatusOK Status = iota
	// StatusCancelled is returned once Abort was requested.
	StatusCancelled
	// StatusNoMoreInput is the canonical success terminal.
	StatusNoMoreInput
)

// Terminal reports whether s ends a parse, successfully or not.
func (s Status) Terminal() bool {
	return s != StatusOK
}

// Failed reports whether s is an engine error code.
func (s Status) Failed() bool {
	return s != StatusOK && s != StatusCancelled && s != StatusNoMoreInput
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusCancelled:
		return "cancelled"
	case StatusNoMoreInput:
		return "no more input"
	default:
		if desc, ok := statusDesc[s]; ok {
			return desc
		}
		return fmt.Sprintf("error status %d", int(s))
	}
}

var statusDesc = map[Status]string{}

// RegisterStatus attaches a human-readable description to an engine error code.
// Engines call it from init.
func RegisterStatus(s Status, desc string) {
	statusDesc[s] = desc
}

// Slot is the small integer an engine carries back to a trampoline.
type Slot int

// RowTrampoline is invoked by the engine once per recognized row.
type RowTrampoline func(slot Slot)

// ReadTrampoline fills p for a pull-mode engine and returns the number of
// bytes written. Zero means the source is exhausted.
type ReadTrampoline func(slot Slot, p []byte) int

// Quote flags describe how a cell was written in the input.
const (
	QuoteClosed   byte = 1 << 1 // value was quoted
	QuoteNeeded   byte = 1 << 2 // value contains a delimiter, quote or newline
	QuoteEmbedded byte = 1 << 3 // value contains an escaped quote
)

// Cell is a view over one field of the current row. Bytes is valid only until
// the row callback returns.
type Cell struct {
	Bytes  []byte
	Quoted byte
}

// EngineOptions are passed to Engine.Create.
type EngineOptions struct {
	Delimiter  byte
	Quote      byte
	NoQuotes   bool
	MaxColumns int
	MaxRowSize int
	Strict     bool
}

// Engine creates parse handles.
type Engine interface {
	Create(opts EngineOptions) (Handle, error)
}

// Initializer is implemented by engines whose runtime needs setup before the
// first Create.
type Initializer interface {
	Init() error
}

// Handle is one engine instance. It must be destroyed exactly once.
type Handle interface {
	SetRowHandler(fn RowTrampoline)
	SetContext(slot Slot)
	SetInputBuffer(buf []byte)
	SetReadCallback(fn ReadTrampoline)

	// Feed parses the first n bytes of the assigned input buffer.
	Feed(n int) Status
	// ParseMore pulls one buffer through the read callback and parses it.
	ParseMore() Status
	// Finish flushes a pending partial row. The handle is terminal afterwards.
	Finish() Status
	// Abort stops further row callbacks, including within the current step.
	Abort()
	Destroy()

	CellCount() int
	Cell(i int) Cell
	CellLen(i int) int
	// CopyCell copies cell i into dst and returns the number of bytes written.
	CopyCell(i int, dst []byte) int
	// Scanned returns the cumulative number of bytes the engine has parsed.
	Scanned() uint64
}
