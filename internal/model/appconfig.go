package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new projects
	DefaultStrategy       Strategy     `json:"default_strategy"`
	DefaultRotations      RotationMask `json:"default_rotations"`
	DefaultPopulationSize int          `json:"default_population_size"`
	DefaultEliteCount     int          `json:"default_elite_count"`
	DefaultGenerations    int          `json:"default_generations"`
	DefaultContainer      string       `json:"default_container"` // Inventory preset name

	// Application preferences
	RecentProjects []string `json:"recent_projects"`
	Units          string   `json:"units"` // "cm", "mm", "in"
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultStrategy:       defaults.Strategy,
		DefaultRotations:      defaults.Rotations,
		DefaultPopulationSize: defaults.PopulationSize,
		DefaultEliteCount:     defaults.EliteCount,
		DefaultGenerations:    defaults.Generations,
		DefaultContainer:      "EUR pallet 120x80 (h 180)",
		RecentProjects:        []string{},
		Units:                 "cm",
	}
}

// ApplyToSettings copies the default values from AppConfig into a Settings struct.
// This is used when creating a new project so it inherits the user's saved defaults.
func (c AppConfig) ApplyToSettings(s *Settings) {
	s.Strategy = c.DefaultStrategy
	s.Rotations = c.DefaultRotations
	s.PopulationSize = c.DefaultPopulationSize
	s.EliteCount = c.DefaultEliteCount
	s.Generations = c.DefaultGenerations
}

// AddRecentProject moves path to the front of the recent list, keeping at
// most limit entries.
func (c *AppConfig) AddRecentProject(path string, limit int) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > limit {
		recent = recent[:limit]
	}
	c.RecentProjects = recent
}
