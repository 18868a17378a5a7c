package session_test

import (
	"errors"
	"testing"

	"github.com/momentics/hioload-csv/api"
	"github.com/momentics/hioload-csv/internal/session"
)

type record struct{ name string }

func TestRegistryRegisterResolve(t *testing.T) {
	r := session.NewRegistry[record]()
	a, b := &record{"a"}, &record{"b"}
	sa, err := r.Register(a)
	if err != nil {
		t.Fatal(err)
	}
	sb, _ := r.Register(b)
	if sa != 0 || sb != 1 {
		t.Fatalf("expected slots 0 and 1, got %d and %d", sa, sb)
	}
	if got, ok := r.Resolve(sb); !ok || got != b {
		t.Fatal("Resolve did not return the registered value")
	}
	if _, ok := r.Resolve(7); ok {
		t.Error("Resolve found an unknown slot")
	}
	if _, err := r.Register(nil); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRegistryNoReuseWhileActive(t *testing.T) {
	r := session.NewRegistry[record]()
	s0, _ := r.Register(&record{})
	s1, _ := r.Register(&record{})
	if err := r.Unregister(s0); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Resolve(s0); ok {
		t.Error("unregistered slot still resolvable")
	}
	s2, _ := r.Register(&record{})
	if s2 != 2 {
		t.Errorf("expected append at slot 2, got %d", s2)
	}
	if r.Active() != 2 || r.Len() != 3 {
		t.Errorf("active=%d len=%d", r.Active(), r.Len())
	}
	_ = r.Unregister(s1)
	_ = r.Unregister(s2)
	if r.Len() != 0 || r.Resets() != 1 {
		t.Fatalf("expected reset on empty, len=%d resets=%d", r.Len(), r.Resets())
	}
	s3, _ := r.Register(&record{})
	if s3 != 0 {
		t.Errorf("expected slot 0 after reset, got %d", s3)
	}
}

func TestRegistryUnregisterUnknown(t *testing.T) {
	r := session.NewRegistry[record]()
	if err := r.Unregister(0); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	s, _ := r.Register(&record{})
	_ = r.Unregister(s)
	if err := r.Unregister(s); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("double unregister: expected ErrNotFound, got %v", err)
	}
}

func TestRegistryRange(t *testing.T) {
	r := session.NewRegistry[record]()
	for _, n := range []string{"x", "y", "z"} {
		r.Register(&record{n})
	}
	_ = r.Unregister(1)
	var names []string
	r.Range(func(_ api.Slot, v *record) { names = append(names, v.name) })
	if len(names) != 2 || names[0] != "x" || names[1] != "z" {
		t.Errorf("Range visited %v", names)
	}
}
