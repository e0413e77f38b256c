package model

import "testing"

func TestDefaultAppConfig(t *testing.T) {
	cfg := DefaultAppConfig()
	if cfg.DefaultFabricWidthMM != DefaultFabricWidthMM {
		t.Errorf("expected default width %v, got %v", DefaultFabricWidthMM, cfg.DefaultFabricWidthMM)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %s", cfg.LogLevel)
	}
	if cfg.RecentMolds == nil {
		t.Error("RecentMolds should not be nil")
	}
}

func TestAppConfigFabricWidthFallback(t *testing.T) {
	cfg := AppConfig{}
	if cfg.FabricWidth() != DefaultFabricWidthMM {
		t.Errorf("expected fallback %v, got %v", DefaultFabricWidthMM, cfg.FabricWidth())
	}
	cfg.DefaultFabricWidthMM = 1400
	if cfg.FabricWidth() != 1400 {
		t.Errorf("expected 1400, got %v", cfg.FabricWidth())
	}
}

func TestAddRecentMold(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentMold("a.mld", 3)
	cfg.AddRecentMold("b.mld", 3)
	cfg.AddRecentMold("c.mld", 3)
	cfg.AddRecentMold("a.mld", 3)
	cfg.AddRecentMold("d.mld", 3)

	want := []string{"d.mld", "a.mld", "c.mld"}
	if len(cfg.RecentMolds) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.RecentMolds)
	}
	for i := range want {
		if cfg.RecentMolds[i] != want[i] {
			t.Errorf("index %d: expected %s, got %s", i, want[i], cfg.RecentMolds[i])
		}
	}
}
