package engine_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/momentics/hioload-csv/api"
	"github.com/momentics/hioload-csv/engine"
)

// harness drives one handle the way the session layer does.
type harness struct {
	h    api.Handle
	rows [][]string
}

func newHarness(t *testing.T, opts api.EngineOptions) *harness {
	t.Helper()
	e := engine.New()
	if err := e.Init(); err != nil {
		t.Fatal(err)
	}
	h, err := e.Create(opts)
	if err != nil {
		t.Fatal(err)
	}
	hs := &harness{h: h}
	h.SetContext(3)
	h.SetRowHandler(func(slot api.Slot) {
		if slot != 3 {
			t.Fatalf("row callback for slot %d", slot)
		}
		row := make([]string, h.CellCount())
		for i := range row {
			row[i] = string(h.Cell(i).Bytes)
		}
		hs.rows = append(hs.rows, row)
	})
	return hs
}

func (hs *harness) feed(chunks ...string) api.Status {
	for _, c := range chunks {
		hs.h.SetInputBuffer([]byte(c))
		if st := hs.h.Feed(len(c)); st != api.StatusOK {
			return st
		}
	}
	return hs.h.Finish()
}

func TestEngineRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{"simple", "a,b\nc,d\n", [][]string{{"a", "b"}, {"c", "d"}}},
		{"no trailing newline", "a,b\nc,d", [][]string{{"a", "b"}, {"c", "d"}}},
		{"empty", "", nil},
		{"blank lines skipped", "\n\na\n\r\n", [][]string{{"a"}}},
		{"crlf", "a,b\r\nc\r\n", [][]string{{"a", "b"}, {"c"}}},
		{"lone cr", "a\rb\r", [][]string{{"a"}, {"b"}}},
		{"empty fields", ",\na,,\n", [][]string{{"", ""}, {"a", "", ""}}},
		{"quoted", `"a,b","c""d"` + "\n", [][]string{{"a,b", `c"d`}}},
		{"quoted newline", "\"x\ny\",z\n", [][]string{{"x\ny", "z"}}},
		{"empty quoted", `"",""`, [][]string{{"", ""}}},
		{"lenient bare quote", `ab"c,d`, [][]string{{`ab"c`, "d"}}},
		{"text after closing quote", `"ab"c,d`, [][]string{{"abc", "d"}}},
		{"unterminated lenient", `"abc`, [][]string{{"abc"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := newHarness(t, api.EngineOptions{})
			if st := hs.feed(tt.input); st != api.StatusNoMoreInput {
				t.Fatalf("status %s", st)
			}
			if !reflect.DeepEqual(hs.rows, tt.want) {
				t.Errorf("rows %q, want %q", hs.rows, tt.want)
			}
			if hs.h.Scanned() != uint64(len(tt.input)) {
				t.Errorf("scanned %d of %d bytes", hs.h.Scanned(), len(tt.input))
			}
		})
	}
}

func TestEngineChunkingInvariance(t *testing.T) {
	input := "id,name,note\r\n1,\"Smith, J\",\"said \"\"hi\"\"\"\r\n2,Doe,\"multi\nline\"\n3,,\n"
	whole := newHarness(t, api.EngineOptions{})
	if st := whole.feed(input); st != api.StatusNoMoreInput {
		t.Fatalf("status %s", st)
	}
	if len(whole.rows) != 4 {
		t.Fatalf("expected 4 rows, got %q", whole.rows)
	}
	for size := 1; size <= len(input); size++ {
		var chunks []string
		for off := 0; off < len(input); off += size {
			end := off + size
			if end > len(input) {
				end = len(input)
			}
			chunks = append(chunks, input[off:end])
		}
		split := newHarness(t, api.EngineOptions{})
		if st := split.feed(chunks...); st != api.StatusNoMoreInput {
			t.Fatalf("chunk size %d: status %s", size, st)
		}
		if !reflect.DeepEqual(split.rows, whole.rows) {
			t.Fatalf("chunk size %d: rows %q, want %q", size, split.rows, whole.rows)
		}
	}
}

func TestEngineOptions(t *testing.T) {
	hs := newHarness(t, api.EngineOptions{Delimiter: '\t', NoQuotes: true})
	hs.feed("\"a\tb\n")
	if !reflect.DeepEqual(hs.rows, [][]string{{`"a`, "b"}}) {
		t.Errorf("rows %q", hs.rows)
	}

	hs = newHarness(t, api.EngineOptions{Delimiter: ';', Quote: '\''})
	hs.feed("'x;y';z\n")
	if !reflect.DeepEqual(hs.rows, [][]string{{"x;y", "z"}}) {
		t.Errorf("rows %q", hs.rows)
	}
}

func TestEngineQuoteFlags(t *testing.T) {
	e := engine.New()
	e.Init()
	h, _ := e.Create(api.EngineOptions{})
	var flags []byte
	h.SetRowHandler(func(api.Slot) {
		for i := 0; i < h.CellCount(); i++ {
			flags = append(flags, h.Cell(i).Quoted)
		}
	})
	in := []byte(`plain,"q","a,b","x""y"` + "\n")
	h.SetInputBuffer(in)
	h.Feed(len(in))
	want := []byte{0, api.QuoteClosed, api.QuoteClosed | api.QuoteNeeded,
		api.QuoteClosed | api.QuoteNeeded | api.QuoteEmbedded}
	if !reflect.DeepEqual(flags, want) {
		t.Errorf("flags %v, want %v", flags, want)
	}
}

func TestEngineErrors(t *testing.T) {
	tests := []struct {
		name  string
		opts  api.EngineOptions
		input string
		want  api.Status
	}{
		{"strict bare quote", api.EngineOptions{Strict: true}, "a\"b\n", engine.StatusBareQuote},
		{"strict unterminated", api.EngineOptions{Strict: true}, "\"abc", engine.StatusUnterminatedQuote},
		{"row overflow", api.EngineOptions{MaxRowSize: 4}, "abcdef\n", engine.StatusRowOverflow},
		{"column overflow", api.EngineOptions{MaxColumns: 2}, "a,b,c\n", engine.StatusColumnOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := newHarness(t, tt.opts)
			st := hs.feed(tt.input)
			if st != tt.want {
				t.Fatalf("status %s, want %s", st, tt.want)
			}
			if !st.Failed() {
				t.Error("error status not reported as failed")
			}
			hs.h.SetInputBuffer([]byte("x\n"))
			if again := hs.h.Feed(2); again != tt.want {
				t.Errorf("feed after failure returned %s", again)
			}
			if !strings.Contains(st.String(), " ") {
				t.Errorf("status %d has no description", int(st))
			}
		})
	}
}

func TestEngineAbortInsideCallback(t *testing.T) {
	hs := newHarness(t, api.EngineOptions{})
	h := hs.h
	count := 0
	h.SetRowHandler(func(api.Slot) {
		count++
		if count == 2 {
			h.Abort()
		}
	})
	in := []byte("1\n2\n3\n4\n")
	h.SetInputBuffer(in)
	if st := h.Feed(len(in)); st != api.StatusCancelled {
		t.Fatalf("status %s", st)
	}
	if st := h.Feed(len(in)); st != api.StatusCancelled {
		t.Fatalf("feed after abort: %s", st)
	}
	if st := h.Finish(); st != api.StatusCancelled {
		t.Fatalf("finish after abort: %s", st)
	}
	if count != 2 {
		t.Errorf("%d rows delivered after abort", count-2)
	}
}

func TestEnginePull(t *testing.T) {
	e := engine.New()
	e.Init()
	h, _ := e.Create(api.EngineOptions{})
	src := strings.NewReader("a,b\nc,d\n")
	rows := 0
	h.SetRowHandler(func(api.Slot) { rows++ })
	h.SetInputBuffer(make([]byte, 3))
	h.SetReadCallback(func(_ api.Slot, p []byte) int {
		n, _ := src.Read(p)
		return n
	})
	st := api.StatusOK
	for st == api.StatusOK {
		st = h.ParseMore()
	}
	if st != api.StatusNoMoreInput {
		t.Fatalf("status %s", st)
	}
	h.Finish()
	if rows != 2 {
		t.Errorf("rows %d", rows)
	}
}

func TestEngineLifecycle(t *testing.T) {
	e := engine.New()
	if _, err := e.Create(api.EngineOptions{}); !errors.Is(err, api.ErrNotReady) {
		t.Fatalf("Create before Init: %v", err)
	}
	e.Init()
	if _, err := e.Create(api.EngineOptions{Delimiter: '\n'}); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("newline delimiter accepted: %v", err)
	}
	h, _ := e.Create(api.EngineOptions{})
	if e.Live() != 1 {
		t.Fatalf("live %d", e.Live())
	}
	if st := h.ParseMore(); st != engine.StatusNoReader {
		t.Errorf("ParseMore without reader: %s", st)
	}
	h.Destroy()
	if e.Live() != 0 {
		t.Errorf("live %d after destroy", e.Live())
	}
	defer func() {
		if recover() == nil {
			t.Error("second Destroy did not panic")
		}
	}()
	h.Destroy()
}
