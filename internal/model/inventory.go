package model

import "github.com/google/uuid"

// ContainerPreset is a saved container definition, e.g. a pallet or a
// shipping container.
type ContainerPreset struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Depth     float64 `json:"depth"`
	MaxWeight float64 `json:"max_weight"`
}

// NewContainerPreset creates a new ContainerPreset with a generated ID.
func NewContainerPreset(name string, w, h, d, maxWeight float64) ContainerPreset {
	return ContainerPreset{
		ID:        uuid.New().String()[:8],
		Name:      name,
		Width:     w,
		Height:    h,
		Depth:     d,
		MaxWeight: maxWeight,
	}
}

// ToContainer converts a preset into the bin template used by solvers.
func (cp ContainerPreset) ToContainer() Container {
	return Container{
		Label:     cp.Name,
		Width:     cp.Width,
		Height:    cp.Height,
		Depth:     cp.Depth,
		MaxWeight: cp.MaxWeight,
	}
}

// OptimizerProfile is a named set of genetic optimizer parameters.
type OptimizerProfile struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Strategy       Strategy `json:"strategy"`
	PopulationSize int      `json:"population_size"`
	EliteCount     int      `json:"elite_count"`
	Generations    int      `json:"generations"`
}

// NewOptimizerProfile creates a new OptimizerProfile with a generated ID.
func NewOptimizerProfile(name string, strategy Strategy, pop, elite, generations int) OptimizerProfile {
	return OptimizerProfile{
		ID:             uuid.New().String()[:8],
		Name:           name,
		Strategy:       strategy,
		PopulationSize: pop,
		EliteCount:     elite,
		Generations:    generations,
	}
}

// Apply copies the profile parameters into s.
func (op OptimizerProfile) Apply(s *Settings) {
	s.Strategy = op.Strategy
	s.PopulationSize = op.PopulationSize
	s.EliteCount = op.EliteCount
	s.Generations = op.Generations
}

// Inventory holds the user's saved containers and optimizer profiles.
type Inventory struct {
	Containers []ContainerPreset  `json:"containers"`
	Profiles   []OptimizerProfile `json:"profiles"`
}

// DefaultInventory returns an inventory populated with common defaults.
// Dimensions are in centimetres and weights in kilograms.
func DefaultInventory() Inventory {
	return Inventory{
		Containers: []ContainerPreset{
			NewContainerPreset("EUR pallet 120x80 (h 180)", 120, 180, 80, 1500),
			NewContainerPreset("US pallet 48x40in (h 180)", 122, 180, 102, 2000),
			NewContainerPreset("20ft container", 589, 239, 235, 28200),
			NewContainerPreset("40ft container", 1203, 239, 235, 26700),
			NewContainerPreset("40ft high cube", 1203, 269, 235, 26500),
			NewContainerPreset("Cardboard box 60x40x40", 60, 40, 40, 30),
		},
		Profiles: []OptimizerProfile{
			NewOptimizerProfile("Quick", StrategyBestFitEMS, 20, 4, 25),
			NewOptimizerProfile("Balanced", StrategyBestFitEMS, 50, 10, 100),
			NewOptimizerProfile("Thorough", StrategyBestFitEMS, 120, 20, 400),
			NewOptimizerProfile("Guillotine", StrategyBestFit, 50, 10, 100),
		},
	}
}

// FindContainerByName returns a pointer to the first preset with the given name, or nil.
func (inv *Inventory) FindContainerByName(name string) *ContainerPreset {
	for i := range inv.Containers {
		if inv.Containers[i].Name == name {
			return &inv.Containers[i]
		}
	}
	return nil
}

// FindProfileByName returns a pointer to the first profile with the given name, or nil.
func (inv *Inventory) FindProfileByName(name string) *OptimizerProfile {
	for i := range inv.Profiles {
		if inv.Profiles[i].Name == name {
			return &inv.Profiles[i]
		}
	}
	return nil
}

// ContainerNames returns the preset names in inventory order.
func (inv *Inventory) ContainerNames() []string {
	names := make([]string, len(inv.Containers))
	for i, c := range inv.Containers {
		names[i] = c.Name
	}
	return names
}
