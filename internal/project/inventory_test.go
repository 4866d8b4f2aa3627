package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/CratePack/internal/model"
)

func TestSaveAndLoadInventory(t *testing.T) {
	path := InventoryPath(t.TempDir())

	inv := model.Inventory{
		Containers: []model.ContainerPreset{model.NewContainerPreset("Crate", 100, 60, 80, 250)},
		Profiles:   []model.OptimizerProfile{model.NewOptimizerProfile("Fast", model.StrategyFirstFit, 10, 2, 5)},
	}

	if err := SaveInventory(path, inv); err != nil {
		t.Fatalf("SaveInventory failed: %v", err)
	}

	loaded, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}

	if len(loaded.Containers) != 1 || loaded.Containers[0].MaxWeight != 250 {
		t.Errorf("unexpected containers %+v", loaded.Containers)
	}
	if len(loaded.Profiles) != 1 || loaded.Profiles[0].Strategy != model.StrategyFirstFit {
		t.Errorf("unexpected profiles %+v", loaded.Profiles)
	}
}

func TestLoadInventoryCreatesDefault(t *testing.T) {
	path := InventoryPath(filepath.Join(t.TempDir(), "fresh"))

	inv, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}
	if len(inv.Containers) != len(model.DefaultInventory().Containers) {
		t.Errorf("expected default containers, got %d", len(inv.Containers))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected default inventory to be saved: %v", err)
	}
}

func TestLoadInventoryInvalidJSON(t *testing.T) {
	path := InventoryPath(t.TempDir())
	if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadInventory(path); err == nil {
		t.Fatal("expected error for invalid inventory")
	}
}

func TestImportInventory(t *testing.T) {
	dir := t.TempDir()
	existing := model.DefaultInventory()

	shared := existing.Containers[0]
	imported := model.Inventory{
		Containers: []model.ContainerPreset{shared, model.NewContainerPreset("Van", 300, 180, 170, 1200)},
		Profiles:   []model.OptimizerProfile{model.NewOptimizerProfile("Overnight", model.StrategyBestFitEMS, 200, 30, 2000)},
	}
	path := filepath.Join(dir, "import.json")
	if err := SaveInventory(path, imported); err != nil {
		t.Fatal(err)
	}

	merged, err := ImportInventory(path, existing)
	if err != nil {
		t.Fatalf("ImportInventory failed: %v", err)
	}
	if len(merged.Containers) != len(existing.Containers)+1 {
		t.Errorf("expected duplicate to be skipped, got %d containers", len(merged.Containers))
	}
	if merged.FindProfileByName("Overnight") == nil {
		t.Error("expected imported profile")
	}

	if _, err := ImportInventory(filepath.Join(dir, "missing.json"), existing); err == nil {
		t.Error("expected error for missing file")
	}
}
