package engine

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/piwi3910/CratePack/internal/model"
)

// GeneratorConfig describes a batch of random boxes.
type GeneratorConfig struct {
	Count     int
	MinSize   float64
	MaxSize   float64
	MaxWeight float64 // 0 leaves boxes weightless
}

// GenerateBoxes returns Count boxes with whole-unit extents drawn uniformly
// from [MinSize, MaxSize]. Ids start at 1.
func GenerateBoxes(rng *rand.Rand, cfg GeneratorConfig) ([]model.Box, error) {
	if cfg.Count < 0 {
		return nil, fmt.Errorf("%w: count must not be negative", ErrInvalidConfig)
	}
	lo, hi := math.Ceil(cfg.MinSize), math.Floor(cfg.MaxSize)
	if lo < 1 || hi < lo {
		return nil, fmt.Errorf("%w: size range [%g, %g] holds no whole unit", ErrInvalidConfig, cfg.MinSize, cfg.MaxSize)
	}
	span := int(hi-lo) + 1
	dim := func() float64 { return lo + float64(rng.Intn(span)) }

	boxes := make([]model.Box, cfg.Count)
	for i := range boxes {
		var weight float64
		if cfg.MaxWeight > 0 {
			weight = math.Round(rng.Float64()*cfg.MaxWeight*10) / 10
		}
		boxes[i] = model.NewBox(i+1, fmt.Sprintf("Box %d", i+1), dim(), dim(), dim(), weight)
	}
	return boxes, nil
}
