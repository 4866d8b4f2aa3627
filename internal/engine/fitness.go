package engine

import (
	"math"

	"github.com/piwi3910/CratePack/internal/model"
)

// Objective decides how a packing is scored and which scores are better.
type Objective int

const (
	// ObjectiveDensity maximizes how full every bin but the last one is.
	ObjectiveDensity Objective = iota
	// ObjectiveExtent minimizes how far the packing reaches along any axis.
	ObjectiveExtent
)

// ObjectiveFor picks the objective for a packing mode.
func ObjectiveFor(growing bool) Objective {
	if growing {
		return ObjectiveExtent
	}
	return ObjectiveDensity
}

func (o Objective) String() string {
	if o == ObjectiveExtent {
		return "extent"
	}
	return "density"
}

// Better reports whether a is strictly better than b.
func (o Objective) Better(a, b float64) bool {
	if o == ObjectiveExtent {
		return a < b
	}
	return a > b
}

// Worst is the score given to orderings whose evaluation failed.
func (o Objective) Worst() float64 {
	if o == ObjectiveExtent {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

// Density is the used volume of every bin except the last, divided by the
// capacity of those bins. With fewer than two bins it is 1.
func Density(result model.PackResult, bin model.Vec3) float64 {
	n := len(result.Bins)
	if n < 2 {
		return 1.0
	}
	var used float64
	for _, b := range result.Bins[:n-1] {
		used += b.UsedVolume()
	}
	return used / (float64(n-1) * bin.Volume())
}

// Extent is the farthest coordinate any placed box reaches on any axis.
func Extent(result model.PackResult) float64 {
	var ext float64
	for _, b := range result.Bins {
		for _, p := range b.Placements {
			for _, a := range []model.Axis{model.AxisX, model.AxisY, model.AxisZ} {
				ext = math.Max(ext, p.Max(a))
			}
		}
	}
	return ext
}

// Fitness scores a packing under the objective. Unplaced boxes cost
// 1/total density each, or the template's longest edge of extent each.
func Fitness(obj Objective, result model.PackResult, bin model.Container, total int) float64 {
	unplaced := float64(len(result.Unplaced))
	if obj == ObjectiveExtent {
		return Extent(result) + unplaced*bin.Size().Longest()
	}
	f := Density(result, bin.Size())
	if total > 0 {
		f -= unplaced / float64(total)
	}
	return f
}
