package engine

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarizes the fitness values of one generation. Failed
// evaluations are counted but left out of the moments.
type GenerationStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Size   int     `json:"size"`
	Failed int     `json:"failed"`
}

func computeStats(fitness []float64) GenerationStats {
	finite := make([]float64, 0, len(fitness))
	for _, f := range fitness {
		if !math.IsInf(f, 0) && !math.IsNaN(f) {
			finite = append(finite, f)
		}
	}
	st := GenerationStats{Size: len(fitness), Failed: len(fitness) - len(finite)}
	if len(finite) == 0 {
		return st
	}
	st.Mean, st.StdDev = stat.MeanStdDev(finite, nil)
	if len(finite) == 1 {
		st.StdDev = 0
	}
	st.Min = floats.Min(finite)
	st.Max = floats.Max(finite)
	return st
}
