// File: engine/status.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package engine

import "github.com/momentics/hioload-csv/api"

// Error statuses returned by handles of this engine.
const (
	StatusRowOverflow api.Status = 16 + iota
	StatusColumnOverflow
	StatusBareQuote
	StatusUnterminatedQuote
	StatusClosed
	StatusNoReader
)

func init() {
	api.RegisterStatus(StatusRowOverflow, "row exceeds maximum size")
	api.RegisterStatus(StatusColumnOverflow, "row exceeds maximum column count")
	api.RegisterStatus(StatusBareQuote, "bare quote in non-quoted field")
	api.RegisterStatus(StatusUnterminatedQuote, "unterminated quoted field")
	api.RegisterStatus(StatusClosed, "handle is finished or destroyed")
	api.RegisterStatus(StatusNoReader, "no read callback configured")
}
