// File: cmd/zsvcount/count.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/momentics/hioload-csv/api"
	"github.com/momentics/hioload-csv/engine"
	"github.com/momentics/hioload-csv/facade"
	"github.com/momentics/hioload-csv/pool"
	"github.com/momentics/hioload-csv/source"
)

type countOptions struct {
	delimiter  string
	quote      string
	noQuote    bool
	strict     bool
	bufferSize int
	maxRowSize int
	push       bool
	verbose    int
}

func newRootCmd() *cobra.Command {
	var opts countOptions

	cmd := &cobra.Command{
		Use:   "zsvcount [file|-]",
		Short: "Count the rows of a delimited file",
		Long: `Count the rows of a delimited file and report the bytes read.

Reads standard input when no file or "-" is given. Files ending in .gz,
.bz2, .xz or .zst are decompressed on the fly.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			commonlog.Configure(opts.verbose, nil)
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			rows, n, err := count(ctx, path, opts)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", cmd.Name(), err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows, %d bytes\n", rows, n)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.delimiter, "delimiter", "d", ",", `cell delimiter, one byte or "tab"`)
	flags.StringVarP(&opts.quote, "quote", "q", `"`, "quote character")
	flags.BoolVar(&opts.noQuote, "no-quote", false, "treat quote characters as data")
	flags.BoolVar(&opts.strict, "strict", false, "fail on malformed quoting")
	flags.IntVar(&opts.bufferSize, "buffer-size", pool.DefaultChunkSize, "read buffer size in bytes")
	flags.IntVar(&opts.maxRowSize, "max-row-size", 0, "largest row in bytes, 0 for no limit")
	flags.BoolVar(&opts.push, "push", false, "read on a separate goroutine and feed through the event loop")
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity")
	return cmd
}

func singleByte(name, v string) (byte, error) {
	switch v {
	case "tab", `\t`:
		return '\t', nil
	}
	if len(v) != 1 {
		return 0, fmt.Errorf("--%s must be a single byte, got %q", name, v)
	}
	return v[0], nil
}

func (o countOptions) engineOptions() (api.EngineOptions, error) {
	delim, err := singleByte("delimiter", o.delimiter)
	if err != nil {
		return api.EngineOptions{}, err
	}
	quote, err := singleByte("quote", o.quote)
	if err != nil {
		return api.EngineOptions{}, err
	}
	return api.EngineOptions{
		Delimiter:  delim,
		Quote:      quote,
		NoQuotes:   o.noQuote,
		MaxRowSize: o.maxRowSize,
		Strict:     o.strict,
	}, nil
}

// count parses path with a no-data session and returns rows and bytes read.
func count(ctx context.Context, path string, o countOptions) (uint64, uint64, error) {
	eo, err := o.engineOptions()
	if err != nil {
		return 0, 0, err
	}
	cfg := facade.DefaultConfig()
	cfg.Engine = eo
	if o.bufferSize > 0 {
		cfg.BufferSize = o.bufferSize
		if cfg.BufferSize > cfg.MaxBufferSize {
			cfg.MaxBufferSize = cfg.BufferSize
		}
	}
	p, err := facade.New(engine.New(), cfg)
	if err != nil {
		return 0, 0, err
	}
	if err := p.Start(ctx); err != nil {
		return 0, 0, err
	}
	defer p.Shutdown()

	rd, err := source.Open(path)
	if err != nil {
		return 0, 0, err
	}
	var src api.ByteSource = rd
	if o.push {
		src = source.NewStream(rd, pool.NewBytePool(cfg.BufferSize))
	}

	s, err := p.NewSession(func(*facade.Session, any) {}, nil, nil)
	if err != nil {
		rd.Close()
		return 0, 0, err
	}
	if err := s.Consume(ctx, src); err != nil {
		return s.Rows(), s.BytesRead(), err
	}
	return s.Rows(), s.BytesRead(), nil
}
