package model

import (
	"fmt"
	"strings"
)

// Strategy selects the placement heuristic used to pack one ordering.
type Strategy string

const (
	StrategyFirstFit     Strategy = "firstfit"      // First fitting space, guillotine splits
	StrategyFirstFitFlat Strategy = "firstfit-flat" // First-fit without stacking (2-D)
	StrategyBestFit      Strategy = "bestfit"       // Least waste, guillotine splits
	StrategyBestFitEMS   Strategy = "bestfit-ems"   // Closest to origin, maximal spaces
)

// Strategies lists every known strategy in display order.
func Strategies() []Strategy {
	return []Strategy{StrategyFirstFit, StrategyFirstFitFlat, StrategyBestFit, StrategyBestFitEMS}
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	for _, known := range Strategies() {
		if s == known {
			return true
		}
	}
	return false
}

// RotationMask is a set of axis swaps a box may undergo. Each bit is a
// generator; combining two or more generators allows every orientation.
type RotationMask uint8

const (
	RotateX RotationMask = 1 << iota // Swap height and depth
	RotateZ                          // Swap width and height
	RotateY                          // Swap width and depth

	RotateNone RotationMask = 0
	RotateAll               = RotateX | RotateY | RotateZ
)

// Has reports whether every generator in g is present.
func (m RotationMask) Has(g RotationMask) bool {
	return m&g == g
}

// Count returns the number of generators in the mask.
func (m RotationMask) Count() int {
	n := 0
	for _, g := range []RotationMask{RotateX, RotateY, RotateZ} {
		if m.Has(g) {
			n++
		}
	}
	return n
}

func (m RotationMask) String() string {
	var sb strings.Builder
	if m.Has(RotateX) {
		sb.WriteByte('x')
	}
	if m.Has(RotateY) {
		sb.WriteByte('y')
	}
	if m.Has(RotateZ) {
		sb.WriteByte('z')
	}
	if sb.Len() == 0 {
		return "none"
	}
	return sb.String()
}

// ParseRotationMask reads masks such as "xyz", "xz", "none" or "all".
func ParseRotationMask(s string) (RotationMask, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "-":
		return RotateNone, nil
	case "all":
		return RotateAll, nil
	}
	var m RotationMask
	for _, r := range s {
		switch r {
		case 'x':
			m |= RotateX
		case 'y':
			m |= RotateY
		case 'z':
			m |= RotateZ
		case ',', ' ':
		default:
			return RotateNone, fmt.Errorf("invalid rotation axis %q in %q", r, s)
		}
	}
	return m, nil
}

// MarshalText encodes the mask as its axis letters.
func (m RotationMask) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mask written by MarshalText.
func (m *RotationMask) UnmarshalText(b []byte) error {
	parsed, err := ParseRotationMask(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Settings holds solver and optimizer configuration.
type Settings struct {
	// Solver settings
	Strategy      Strategy     `json:"strategy"`
	Rotations     RotationMask `json:"rotations"`
	Growing       bool         `json:"growing"`   // Single bin with one unbounded axis
	GrowAxis      Axis         `json:"grow_axis"` // Axis left unbounded while growing
	PruneInterval int          `json:"prune_interval"`

	// Genetic optimizer settings
	PopulationSize int   `json:"population_size"`
	EliteCount     int   `json:"elite_count"`
	Generations    int   `json:"generations"`
	Seed           int64 `json:"seed"`

	// Evaluation settings
	Threaded bool `json:"threaded"`
	Workers  int  `json:"workers"` // 0 = runtime.NumCPU()
}

func DefaultSettings() Settings {
	return Settings{
		Strategy:       StrategyBestFitEMS,
		Rotations:      RotateAll,
		Growing:        false,
		GrowAxis:       AxisY,
		PruneInterval:  10,
		PopulationSize: 50,
		EliteCount:     10,
		Generations:    100,
		Seed:           42,
		Threaded:       true,
		Workers:        0,
	}
}
