package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/MoldCut/internal/model"
)

func TestExportAndImportAllData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backups", "backup.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultFabricWidthMM = 1400
	cfg.LogLevel = "debug"

	inv := model.Inventory{Stock: []model.StockEntry{{MaterialID: "denim", Quantity: 3000}}}

	cat := model.NewCatalog()
	denim := model.NewFabric("Denim", 1400)
	cat.AddMaterial(denim)

	if err := ExportAllData(path, cfg, inv, cat); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}

	if backup.Version != BackupVersion {
		t.Errorf("expected version %s, got %s", BackupVersion, backup.Version)
	}
	if backup.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if backup.Config.DefaultFabricWidthMM != 1400 {
		t.Errorf("expected DefaultFabricWidthMM=1400, got %f", backup.Config.DefaultFabricWidthMM)
	}
	if backup.Inventory.Available(model.RequirementKey{MaterialID: "denim"}) != 3000 {
		t.Errorf("expected 3000 denim in stock, got %+v", backup.Inventory)
	}
	m, ok := backup.Catalog.Material(denim.ID)
	if !ok {
		t.Fatal("expected catalog material in backup")
	}
	if m.WidthMM != 1400 || !m.IsFabric {
		t.Errorf("material not restored: %+v", m)
	}
}

func TestImportAllDataMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := os.WriteFile(path, []byte(`{"config":{}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Error("expected error for backup without version")
	}
}

func TestImportAllDataFillsEmptySections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := os.WriteFile(path, []byte(`{"version":"1.0.0","config":{}}`), 0644); err != nil {
		t.Fatal(err)
	}
	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Catalog == nil || backup.Catalog.Materials == nil {
		t.Error("expected empty catalog, got nil")
	}
	if backup.Inventory.Stock == nil {
		t.Error("expected empty stock, got nil")
	}
	if backup.Config.RecentMolds == nil {
		t.Error("expected empty recent molds, got nil")
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	if _, err := ImportAllData(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
