package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/piwi3910/CratePack/internal/model"
)

// ExportProfile writes a single optimizer profile to a JSON file for sharing.
func ExportProfile(path string, profile model.OptimizerProfile) error {
	return saveJSON(path, profile)
}

// ImportProfile reads a single optimizer profile from a JSON file.
// The profile must have a name, a known strategy and usable GA parameters.
func ImportProfile(path string) (model.OptimizerProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.OptimizerProfile{}, err
	}

	var profile model.OptimizerProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.OptimizerProfile{}, err
	}

	if profile.Name == "" {
		return model.OptimizerProfile{}, errors.New("imported profile has no name")
	}
	if !profile.Strategy.Valid() {
		return model.OptimizerProfile{}, fmt.Errorf("imported profile %q has unknown strategy %q", profile.Name, profile.Strategy)
	}
	if profile.PopulationSize <= 0 || profile.EliteCount <= 0 || profile.EliteCount > profile.PopulationSize || profile.Generations <= 0 {
		return model.OptimizerProfile{}, fmt.Errorf("imported profile %q has invalid GA parameters", profile.Name)
	}
	return profile, nil
}

// AddProfile appends profile to the inventory, replacing a profile with the
// same name.
func AddProfile(inv *model.Inventory, profile model.OptimizerProfile) {
	if existing := inv.FindProfileByName(profile.Name); existing != nil {
		*existing = profile
		return
	}
	inv.Profiles = append(inv.Profiles, profile)
}
