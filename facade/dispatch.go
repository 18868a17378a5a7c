// File: facade/dispatch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Trampolines handed to the engine. The engine passes nothing but a slot, so
// each trampoline resolves the session through the registry before doing any
// work. A slot that does not resolve means the engine called back after its
// session was released; that is a broken invariant and panics.

package facade

import (
	"unsafe"

	"github.com/momentics/hioload-csv/api"
)

func (p *Parser) resolve(slot api.Slot) *Session {
	s, ok := p.registry.Resolve(slot)
	if !ok {
		panic(api.NewError(api.ErrCodeInternal, "engine callback for inactive slot").
			WithContext("slot", slot).
			WithContext("active", p.registry.Active()))
	}
	return s
}

// rowNoData leaves cell extraction to the handler.
func (p *Parser) rowNoData(slot api.Slot) {
	s := p.resolve(slot)
	if s.halted {
		return
	}
	s.onRow(s, s.ctx)
	s.rowDone()
}

// rowWithData extracts every cell before calling the handler.
func (p *Parser) rowWithData(slot api.Slot) {
	s := p.resolve(slot)
	if s.halted {
		return
	}
	row, ok := s.fetchRow()
	if !ok {
		return
	}
	s.onData(row, s.ctx)
	s.rowDone()
}

// read serves ParseMore for pull sources.
func (p *Parser) read(slot api.Slot, buf []byte) int {
	return p.resolve(slot).pull(buf)
}

func (s *Session) rowDone() {
	n := s.rows.Add(1)
	if s.progress == nil || s.halted || n%s.progressEvery != 0 {
		return
	}
	if !s.progress(n) {
		log.Infof("session %d stopped by progress callback at row %d", s.slot, n)
		s.Abort()
	}
}

// fetchRow materialises the current row. With a cell scratch buffer the
// cells are copied into one contiguous region and sliced out of a single
// string; otherwise each cell is converted on its own.
func (s *Session) fetchRow() ([]string, bool) {
	n := s.handle.CellCount()
	var row []string
	if s.zeroCopy && cap(s.row) >= n {
		row = s.row[:n]
	} else {
		row = make([]string, n)
		if s.zeroCopy {
			s.row = row
		}
	}

	if s.cells == nil {
		for i := range row {
			b := s.handle.Cell(i).Bytes
			if s.zeroCopy {
				row[i] = bytesToString(b)
			} else {
				row[i] = string(b)
			}
		}
		return row, true
	}

	total := 0
	s.bounds = s.bounds[:0]
	for i := 0; i < n; i++ {
		l := s.handle.CellLen(i)
		s.bounds = append(s.bounds, total, total+l)
		total += l
	}
	if _, err := s.cells.EnsureCapacity(total); err != nil {
		s.fail(err)
		return nil, false
	}
	buf := s.cells.Bytes()[:total]
	for i := 0; i < n; i++ {
		s.handle.CopyCell(i, buf[s.bounds[2*i]:s.bounds[2*i+1]])
	}
	var rec string
	if s.zeroCopy {
		rec = bytesToString(buf)
	} else {
		rec = string(buf)
	}
	for i := range row {
		row[i] = rec[s.bounds[2*i]:s.bounds[2*i+1]]
	}
	return row, true
}

// CellCount returns the number of cells in the current row.
func (s *Session) CellCount() int {
	return s.handle.CellCount()
}

// CellBytes returns cell i of the current row. The slice is valid until the
// handler returns, and with CopyCells only until the next cell access.
func (s *Session) CellBytes(i int) []byte {
	if s.cells == nil {
		return s.handle.Cell(i).Bytes
	}
	n := s.handle.CellLen(i)
	if _, err := s.cells.EnsureCapacity(n); err != nil {
		s.fail(err)
		return nil
	}
	k := s.handle.CopyCell(i, s.cells.Bytes()[:n])
	return s.cells.Bytes()[:k]
}

// Cell returns a copy of cell i of the current row.
func (s *Session) Cell(i int) string {
	return string(s.CellBytes(i))
}

// CellQuoted returns the quote flags of cell i (api.QuoteClosed and friends).
func (s *Session) CellQuoted(i int) byte {
	return s.handle.Cell(i).Quoted
}

// RowIsBlank reports whether every cell of the current row is empty.
func (s *Session) RowIsBlank() bool {
	n := s.handle.CellCount()
	for i := 0; i < n; i++ {
		if s.handle.CellLen(i) > 0 {
			return false
		}
	}
	return true
}

func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}
