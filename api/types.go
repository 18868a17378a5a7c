// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations, DTOs, and constants.

package api

import "time"

// SessionState enumerates the lifecycle of a parse session.
type SessionState int

const (
	SessionCreated SessionState = iota
	SessionReading
	SessionFinished
	SessionAborted
	SessionErrored
)

// Terminal reports whether no further input may be fed.
func (s SessionState) Terminal() bool {
	return s >= SessionFinished
}

func (s SessionState) String() string {
	switch s {
	case SessionCreated:
		return "created"
	case SessionReading:
		return "reading"
	case SessionFinished:
		return "finished"
	case SessionAborted:
		return "aborted"
	case SessionErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ParserMetrics is a snapshot of counters kept by a facade.Parser.
type ParserMetrics struct {
	ActiveSessions  int
	CreatedSessions uint64
	Rows            uint64
	BytesRead       uint64
	Errored         uint64
	Aborted         uint64
	StartedAt       time.Time
}
