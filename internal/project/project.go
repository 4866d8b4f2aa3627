package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/CratePack/internal/model"
)

// FileExt is the extension of saved project files.
const FileExt = ".cratepack"

// SaveProject writes p to path, adding FileExt when path has no extension.
// It returns the path actually written.
func SaveProject(path string, p model.Project) (string, error) {
	if filepath.Ext(path) == "" {
		path += FileExt
	}
	if err := saveJSON(path, p); err != nil {
		return "", fmt.Errorf("save project: %w", err)
	}
	return path, nil
}

// LoadProject reads a project file. Missing settings fall back to
// model.DefaultSettings.
func LoadProject(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("load project: %w", err)
	}
	p := model.Project{Settings: model.DefaultSettings()}
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("parse project %s: %w", filepath.Base(path), err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if p.Items == nil {
		p.Items = []model.Item{}
	}
	return p, nil
}
