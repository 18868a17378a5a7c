// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for concurrency module.

package concurrency

import "errors"

var (
	// ErrLoopStopped indicates the event loop no longer accepts events
	ErrLoopStopped = errors.New("event loop is stopped")

	// ErrLoopFull indicates a non-blocking post found the inbox full
	ErrLoopFull = errors.New("event loop inbox is full")
)
