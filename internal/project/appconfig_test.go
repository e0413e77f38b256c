package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/MoldCut/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultFabricWidthMM = 1600
	cfg.DatabasePath = filepath.Join(dir, "catalog.db")
	cfg.LogLevel = "debug"
	cfg.RecentMolds = []string{"/tmp/jacket.mld", "/tmp/tote.mld"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultFabricWidthMM != 1600 {
		t.Errorf("expected DefaultFabricWidthMM=1600, got %f", loaded.DefaultFabricWidthMM)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", loaded.LogLevel)
	}
	if loaded.DatabasePath != cfg.DatabasePath {
		t.Errorf("expected DatabasePath=%s, got %s", cfg.DatabasePath, loaded.DatabasePath)
	}
	if len(loaded.RecentMolds) != 2 {
		t.Errorf("expected 2 recent molds, got %d", len(loaded.RecentMolds))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.DefaultFabricWidthMM != model.DefaultFabricWidthMM {
		t.Errorf("expected default width %f, got %f", model.DefaultFabricWidthMM, cfg.DefaultFabricWidthMM)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"log_level":"warn"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.LogLevel)
	}
	if cfg.FabricWidth() != model.DefaultFabricWidthMM {
		t.Errorf("expected default fabric width, got %f", cfg.FabricWidth())
	}
	if cfg.RecentMolds == nil {
		t.Error("RecentMolds should not be nil")
	}
	if cfg.DatabasePath != DefaultDatabasePath() {
		t.Errorf("expected default database path, got %s", cfg.DatabasePath)
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAppConfig(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if filepath.Base(path) != "config.json" {
		t.Errorf("expected config.json, got %s", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != ".moldcut" {
		t.Errorf("expected parent dir .moldcut, got %s", filepath.Dir(path))
	}
}
