package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/CratePack/internal/model"
)

// InventoryPath returns the path of the inventory file inside dir.
func InventoryPath(dir string) string {
	return filepath.Join(dir, "inventory.json")
}

// SaveInventory writes the inventory to the specified JSON file.
func SaveInventory(path string, inv model.Inventory) error {
	return saveJSON(path, inv)
}

// LoadInventory reads the inventory from the specified JSON file.
// If the file does not exist, it returns the default inventory and saves it.
func LoadInventory(path string) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			inv := model.DefaultInventory()
			if saveErr := SaveInventory(path, inv); saveErr != nil {
				return inv, saveErr
			}
			return inv, nil
		}
		return model.Inventory{}, err
	}
	var inv model.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}

// ImportInventory reads an inventory from path and merges it into existing.
// Entries whose ID is already present are skipped.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Inventory
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}
	return MergeInventory(existing, imported), nil
}

// MergeInventory appends the containers and profiles of imported that are
// not yet in existing, matching by ID.
func MergeInventory(existing, imported model.Inventory) model.Inventory {
	containerIDs := make(map[string]bool, len(existing.Containers))
	for _, c := range existing.Containers {
		containerIDs[c.ID] = true
	}
	profileIDs := make(map[string]bool, len(existing.Profiles))
	for _, p := range existing.Profiles {
		profileIDs[p.ID] = true
	}

	for _, c := range imported.Containers {
		if !containerIDs[c.ID] {
			existing.Containers = append(existing.Containers, c)
			containerIDs[c.ID] = true
		}
	}
	for _, p := range imported.Profiles {
		if !profileIDs[p.ID] {
			existing.Profiles = append(existing.Profiles, p)
			profileIDs[p.ID] = true
		}
	}
	return existing
}
