package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/CratePack/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string              `json:"version"`
	CreatedAt string              `json:"created_at"`
	Config    model.AppConfig     `json:"config"`
	Inventory model.Inventory     `json:"inventory"`
	Templates model.TemplateStore `json:"templates"`
}

// ExportAllData writes config, inventory and templates to a single JSON file.
func ExportAllData(exportPath string, config model.AppConfig, inv model.Inventory, templates model.TemplateStore) error {
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Inventory: inv,
		Templates: templates,
	}
	if err := saveJSON(exportPath, backup); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying it.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentProjects == nil {
		backup.Config.RecentProjects = []string{}
	}
	if backup.Templates.Templates == nil {
		backup.Templates.Templates = []model.ProjectTemplate{}
	}
	return backup, nil
}

// RestoreAllData writes the contents of a backup into dir, merging the
// inventory with what is already there and replacing config and templates.
func RestoreAllData(dir string, backup BackupData) error {
	if err := SaveAppConfig(ConfigPath(dir), backup.Config); err != nil {
		return fmt.Errorf("restore config: %w", err)
	}

	inv, err := LoadInventory(InventoryPath(dir))
	if err != nil {
		return fmt.Errorf("restore inventory: %w", err)
	}
	if err := SaveInventory(InventoryPath(dir), MergeInventory(inv, backup.Inventory)); err != nil {
		return fmt.Errorf("restore inventory: %w", err)
	}

	if err := SaveTemplates(TemplatesPath(dir), backup.Templates); err != nil {
		return fmt.Errorf("restore templates: %w", err)
	}
	return nil
}
