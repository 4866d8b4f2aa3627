package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/CratePack/internal/model"
)

func binWith(vols ...float64) model.BinResult {
	b := model.BinResult{Size: model.Vec3{X: 10, Y: 10, Z: 10}}
	for _, v := range vols {
		b.Placements = append(b.Placements, model.Placement{Size: model.Vec3{X: v, Y: 1, Z: 1}})
	}
	return b
}

func TestDensity(t *testing.T) {
	size := model.Vec3{X: 10, Y: 10, Z: 10}

	if d := Density(model.PackResult{}, size); d != 1.0 {
		t.Errorf("expected 1.0 for no bins, got %f", d)
	}
	if d := Density(model.PackResult{Bins: []model.BinResult{binWith(3)}}, size); d != 1.0 {
		t.Errorf("expected 1.0 for a single bin, got %f", d)
	}

	// The last bin is ignored: (500 + 300) / (2 * 1000)
	r := model.PackResult{Bins: []model.BinResult{binWith(10, 490), binWith(300), binWith(1)}}
	assert.InDelta(t, 0.4, Density(r, size), 1e-9)
}

func TestExtent(t *testing.T) {
	r := model.PackResult{Bins: []model.BinResult{{Placements: []model.Placement{
		{Position: model.Vec3{X: 1}, Size: model.Vec3{X: 2, Y: 1, Z: 1}},
		{Position: model.Vec3{Z: 4}, Size: model.Vec3{X: 1, Y: 1, Z: 1.5}},
	}}}}
	assert.Equal(t, 5.5, Extent(r))
	assert.Equal(t, 0.0, Extent(model.PackResult{}))
}

func TestFitness_UnplacedPenalty(t *testing.T) {
	bin := model.NewContainer("Test", 10, 10, 10)
	r := model.PackResult{
		Bins:     []model.BinResult{binWith(5)},
		Unplaced: []model.Box{model.NewBox(9, "", 20, 1, 1, 0)},
	}

	assert.InDelta(t, 0.75, Fitness(ObjectiveDensity, r, bin, 4), 1e-9)
	assert.InDelta(t, 15.0, Fitness(ObjectiveExtent, r, bin, 4), 1e-9)
}

func TestObjective(t *testing.T) {
	assert.Equal(t, ObjectiveExtent, ObjectiveFor(true))
	assert.Equal(t, ObjectiveDensity, ObjectiveFor(false))

	assert.True(t, ObjectiveDensity.Better(0.9, 0.8))
	assert.True(t, ObjectiveExtent.Better(4, 5))
	assert.True(t, ObjectiveDensity.Better(0, ObjectiveDensity.Worst()))
	assert.True(t, ObjectiveExtent.Better(1e12, ObjectiveExtent.Worst()))
}

func TestComputeStats(t *testing.T) {
	st := computeStats([]float64{1, 2, 3, math.Inf(-1)})
	assert.Equal(t, 4, st.Size)
	assert.Equal(t, 1, st.Failed)
	assert.InDelta(t, 2.0, st.Mean, 1e-9)
	assert.InDelta(t, 1.0, st.StdDev, 1e-9)
	assert.Equal(t, 1.0, st.Min)
	assert.Equal(t, 3.0, st.Max)

	single := computeStats([]float64{0.5})
	assert.Equal(t, 0.0, single.StdDev)

	empty := computeStats([]float64{math.Inf(1)})
	assert.Equal(t, 0.0, empty.Mean)
}
