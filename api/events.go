// File: api/events.go
// Package api defines core event types for hioload-csv.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Event is one unit of work delivered to the single-threaded event loop.
// Chunk events carry input for the session at Slot; Call events run Fn.
// Owner identifies the session that posted the chunk, so an event that
// outlives its session is not fed to a later occupant of the same slot.
type Event struct {
	Slot  Slot
	Owner any
	Chunk Chunk
	Fn    func()
}
