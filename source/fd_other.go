//go:build !linux
// +build !linux

// File: source/fd_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package source

import "os"

// FD is a pull source over an open file.
type FD struct {
	f *os.File
}

// OpenFD opens path read-only.
func OpenFD(path string) (*FD, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &FD{f: f}, nil
}

func (f *FD) Read(p []byte) (int, error) { return f.f.Read(p) }

func (f *FD) Close() error { return f.f.Close() }
