package adapters_test

import (
	"testing"

	"github.com/momentics/hioload-csv/adapters"
)

func TestControlAdapterBasic(t *testing.T) {
	ctrl := adapters.NewControlAdapter()
	cfg := ctrl.GetConfig()
	if len(cfg) != 0 {
		t.Error("Expected empty config on init")
	}
	if err := ctrl.SetConfig(map[string]any{"k": 1}); err != nil {
		t.Fatal(err)
	}
	if ctrl.GetConfig()["k"] != 1 {
		t.Error("SetConfig did not apply")
	}
	if err := ctrl.SetConfig(nil); err == nil {
		t.Error("nil config accepted")
	}

	called := false
	ctrl.OnReload(func() { called = true })
	ctrl.SetConfig(map[string]any{"x": 2})
	if !called {
		t.Error("Reload hook not called")
	}
}

func TestControlAdapterStats(t *testing.T) {
	ctrl := adapters.NewControlAdapter()
	ctrl.AddMetric("rows.delivered", 3)
	ctrl.AddMetric("rows.delivered", 4)
	ctrl.SetMetric("state", "ok")
	ctrl.RegisterDebugProbe("registry.active", func() any { return 2 })

	stats := ctrl.Stats()
	if stats["rows.delivered"] != int64(7) {
		t.Errorf("rows.delivered = %v", stats["rows.delivered"])
	}
	if stats["state"] != "ok" {
		t.Error("SetMetric lost")
	}
	if stats["debug.registry.active"] != 2 {
		t.Error("probe not exported")
	}
	if _, ok := stats["debug.platform.cpus"]; !ok {
		t.Error("platform probe missing")
	}
}
