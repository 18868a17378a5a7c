// File: api/handler.go
// Package api defines row handler contracts.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// RowAccessor exposes the current row during a callback. Returned cell data is
// valid only until the callback returns.
type RowAccessor interface {
	CellCount() int
	Cell(i int) string
	CellBytes(i int) []byte
}

// ProgressFunc is called every N delivered rows. Returning false aborts the parse.
type ProgressFunc func(rows uint64) bool
