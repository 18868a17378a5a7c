package control_test

import (
	"testing"

	"github.com/momentics/hioload-csv/control"
)

func TestMetricsRegistry_Basic(t *testing.T) {
	reg := control.NewMetricsRegistry()
	reg.Set("bar.status", "ok")
	reg.Add("rows", 40)
	if got := reg.Add("rows", 2); got != 42 {
		t.Errorf("Add returned %d", got)
	}

	metrics := reg.GetSnapshot()
	if metrics["rows"] != int64(42) {
		t.Error("MetricsRegistry: counter mismatch")
	}
	if metrics["bar.status"] != "ok" {
		t.Error("MetricsRegistry: string value mismatch")
	}
	if reg.Updated().IsZero() {
		t.Error("update time not recorded")
	}
}

func TestConfigStore_Reload(t *testing.T) {
	cs := control.NewConfigStore()
	calls := 0
	cs.OnReload(func() {
		calls++
		if v, ok := cs.Get("buffer_size"); !ok || v != 4096 {
			t.Errorf("listener saw %v", v)
		}
	})
	cs.SetConfig(map[string]any{"buffer_size": 4096})
	if calls != 1 {
		t.Fatalf("listener called %d times", calls)
	}
	snap := cs.GetSnapshot()
	snap["buffer_size"] = 1
	if v, _ := cs.Get("buffer_size"); v != 4096 {
		t.Error("snapshot aliases the store")
	}
}

func TestDebugProbes(t *testing.T) {
	dp := control.NewDebugProbes()
	control.RegisterPlatformProbes(dp)
	dp.RegisterProbe("x", func() any { return 1 })
	state := dp.DumpState()
	if state["x"] != 1 {
		t.Error("probe x missing")
	}
	if n, ok := state["platform.cpus"].(int); !ok || n < 1 {
		t.Errorf("platform.cpus = %v", state["platform.cpus"])
	}
}
