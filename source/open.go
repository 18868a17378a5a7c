// File: source/open.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package source

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/tliron/commonlog"
	"github.com/ulikunitz/xz"
)

var log = commonlog.GetLogger("hioload-csv.source")

// Compression identifies the container format of an input file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

// DetectCompression maps a file extension to a Compression.
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".bz2":
		return CompressionBzip2
	case ".xz":
		return CompressionXZ
	case ".zst", ".zstd":
		return CompressionZstd
	}
	return CompressionNone
}

// Open returns a pull source for path. "-" reads standard input, which is
// left open by Close. Compressed files are decoded by extension.
func Open(path string) (*Reader, error) {
	if path == "-" || path == "" {
		return NewReader(io.NopCloser(os.Stdin)), nil
	}
	f, err := OpenFD(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	comp := DetectCompression(path)
	rd, err := Decompress(f, comp)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	rd.closers = append([]func() error{f.Close}, rd.closers...)
	log.Debugf("opened %s (%s)", path, comp)
	return rd, nil
}

// Decompress wraps r in a decoder for c. The returned Reader closes the
// decoder, not r.
func Decompress(r io.Reader, c Compression) (*Reader, error) {
	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &Reader{r: zr, closers: []func() error{zr.Close}}, nil
	case CompressionBzip2:
		return &Reader{r: bzip2.NewReader(r)}, nil
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return &Reader{r: xr}, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return &Reader{r: dec, closers: []func() error{func() error { dec.Close(); return nil }}}, nil
	}
	return &Reader{r: r}, nil
}
