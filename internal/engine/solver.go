package engine

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/model"
)

var (
	// ErrNoBoxes is returned when an optimization is started without boxes.
	ErrNoBoxes = errors.New("no boxes to pack")
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNotInitialized is returned when an optimizer is stepped before Init.
	ErrNotInitialized = errors.New("optimizer not initialized")
)

// unbounded stands in for the open grow axis while packing in growing mode.
const unbounded = float64(math.MaxInt32)

// SolverConfig describes the bin template and the placement rules for one
// run of a Solver.
type SolverConfig struct {
	Bin           model.Container
	Growing       bool
	GrowAxis      model.Axis
	Rotations     model.RotationMask
	PruneInterval int
}

// NewSolverConfig builds a solver config from a container and user settings.
func NewSolverConfig(bin model.Container, s model.Settings) SolverConfig {
	return SolverConfig{
		Bin:           bin,
		Growing:       s.Growing,
		GrowAxis:      s.GrowAxis,
		Rotations:     s.Rotations,
		PruneInterval: s.PruneInterval,
	}
}

// Validate checks the bin template. Growing mode ignores the extent of the
// grow axis; an invalid grow axis counts as y, as in Init.
func (c SolverConfig) Validate() error {
	size := c.Bin.Size()
	grow := c.GrowAxis
	if _, ok := model.ParseAxis(string(grow)); !ok {
		grow = model.AxisY
	}
	for _, a := range []model.Axis{model.AxisX, model.AxisY, model.AxisZ} {
		if c.Growing && a == grow {
			continue
		}
		if size.Get(a) <= 0 {
			return fmt.Errorf("%w: bin %s extent must be positive, got %g", ErrInvalidConfig, a, size.Get(a))
		}
	}
	if c.Bin.MaxWeight < 0 {
		return fmt.Errorf("%w: max weight must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Solver packs one ordering of boxes. A Solver is not safe for concurrent
// use; parallel evaluation gives each goroutine its own instance.
type Solver interface {
	Init(cfg SolverConfig)
	Solve(boxes []model.Box) model.PackResult
	Release()
}

// SolverFactory produces fresh, independent solver instances.
type SolverFactory func() Solver

// NewSolverFactory returns a factory for the named strategy.
func NewSolverFactory(strategy model.Strategy, logger *zap.Logger) (SolverFactory, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strategy {
	case model.StrategyFirstFit:
		return func() Solver { return NewFirstFit(logger) }, nil
	case model.StrategyFirstFitFlat:
		return func() Solver { return NewFirstFitFlat(logger) }, nil
	case model.StrategyBestFit:
		return func() Solver { return NewBestFit(logger) }, nil
	case model.StrategyBestFitEMS:
		return func() Solver { return NewBestFitEMS(logger) }, nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, strategy)
	}
}

// binState is the working state of one bin during a solve.
type binState struct {
	index      int
	size       model.Vec3
	weight     float64
	spaces     SpaceManager
	placements []model.Placement
}

// candidate is a feasible placement found during the search.
type candidate struct {
	bin   int
	space int
	size  model.Vec3
	score float64
}

// Packer is the placement engine shared by every strategy. The strategy
// decides how free spaces are tracked and how candidates are scored.
type Packer struct {
	name      model.Strategy
	logger    *zap.Logger
	newSpaces func(bounds model.Space, pruneInterval int) SpaceManager
	// score is nil for first-fit strategies, which take the first feasible
	// candidate.
	score func(s model.Space, size model.Vec3) float64

	cfg  SolverConfig
	bins []binState
}

// NewFirstFit places each box in the first space and orientation that fits.
func NewFirstFit(logger *zap.Logger) *Packer {
	return &Packer{
		name:   model.StrategyFirstFit,
		logger: logger,
		newSpaces: func(b model.Space, _ int) SpaceManager {
			return NewBSPSpaces(b, false)
		},
	}
}

// NewFirstFitFlat is first-fit without stacking in depth.
func NewFirstFitFlat(logger *zap.Logger) *Packer {
	return &Packer{
		name:   model.StrategyFirstFitFlat,
		logger: logger,
		newSpaces: func(b model.Space, _ int) SpaceManager {
			return NewBSPSpaces(b, true)
		},
	}
}

// NewBestFit minimizes leftover space volume plus distance from the origin.
func NewBestFit(logger *zap.Logger) *Packer {
	return &Packer{
		name:   model.StrategyBestFit,
		logger: logger,
		newSpaces: func(b model.Space, _ int) SpaceManager {
			return NewBSPSpaces(b, false)
		},
		score: func(s model.Space, size model.Vec3) float64 {
			return (s.Volume() - size.Volume()) + (s.X + s.Y + s.Z)
		},
	}
}

// NewBestFitEMS places boxes as close to the bin origin as possible using
// empty maximal spaces.
func NewBestFitEMS(logger *zap.Logger) *Packer {
	return &Packer{
		name:   model.StrategyBestFitEMS,
		logger: logger,
		newSpaces: func(b model.Space, prune int) SpaceManager {
			return NewEMSSpaces(b, prune)
		},
		score: func(s model.Space, _ model.Vec3) float64 {
			return s.X + s.Y + s.Z
		},
	}
}

// Strategy returns the strategy the packer implements.
func (p *Packer) Strategy() model.Strategy {
	return p.name
}

// Init stores the config. An invalid grow axis falls back to y.
func (p *Packer) Init(cfg SolverConfig) {
	if cfg.Growing {
		if _, ok := model.ParseAxis(string(cfg.GrowAxis)); !ok {
			p.logger.Warn("invalid grow axis, using y",
				zap.String("axis", string(cfg.GrowAxis)))
			cfg.GrowAxis = model.AxisY
		}
	}
	p.cfg = cfg
	p.bins = nil
}

// Release drops per-solve state.
func (p *Packer) Release() {
	p.bins = nil
}

// Solve packs boxes in the given order.
func (p *Packer) Solve(boxes []model.Box) model.PackResult {
	p.bins = p.bins[:0]
	p.openBin()

	var unplaced []model.Box
	for _, box := range boxes {
		if p.tryPlace(box, -1) {
			continue
		}
		if p.cfg.Growing || p.overweight(box) {
			unplaced = append(unplaced, box)
			continue
		}

		p.openBin()
		if !p.tryPlace(box, len(p.bins)-1) {
			p.bins = p.bins[:len(p.bins)-1]
			p.logger.Debug("box does not fit an empty bin",
				zap.Int("box", box.ID),
				zap.String("strategy", string(p.name)))
			unplaced = append(unplaced, box)
		}
	}

	if len(unplaced) > 0 {
		p.logger.Debug("boxes left unplaced",
			zap.Int("count", len(unplaced)),
			zap.String("strategy", string(p.name)))
	}
	return p.result(unplaced)
}

func (p *Packer) overweight(box model.Box) bool {
	return p.cfg.Bin.MaxWeight > 0 && box.Weight > p.cfg.Bin.MaxWeight
}

func (p *Packer) openBin() {
	size := p.cfg.Bin.Size()
	if p.cfg.Growing {
		size = size.With(p.cfg.GrowAxis, unbounded)
	}
	bounds := model.Space{W: size.X, H: size.Y, D: size.Z}
	p.bins = append(p.bins, binState{
		index:  len(p.bins),
		size:   size,
		spaces: p.newSpaces(bounds, p.cfg.PruneInterval),
	})
}

// tryPlace searches every bin, or only bin only when it is not negative,
// and commits the chosen candidate.
func (p *Packer) tryPlace(box model.Box, only int) bool {
	c, ok := p.search(box, only)
	if !ok {
		return false
	}
	b := &p.bins[c.bin]
	pos := b.spaces.Place(c.space, c.size)
	b.placements = append(b.placements, model.Placement{
		BoxID:    box.ID,
		Label:    box.Label,
		Position: pos,
		Size:     c.size,
		Weight:   box.Weight,
	})
	b.weight += box.Weight
	return true
}

func (p *Packer) search(box model.Box, only int) (candidate, bool) {
	best := candidate{score: math.Inf(1)}
	found := false
	maxWeight := p.cfg.Bin.MaxWeight

	for bi := range p.bins {
		if only >= 0 && bi != only {
			continue
		}
		b := &p.bins[bi]
		if maxWeight > 0 && b.weight+box.Weight > maxWeight {
			continue
		}
		for si, s := range b.spaces.Spaces() {
			if p.score == nil {
				if size, ok := FirstFit(box.Size, s, p.cfg.Rotations); ok {
					return candidate{bin: bi, space: si, size: size}, true
				}
				continue
			}
			for _, size := range Fits(box.Size, s, p.cfg.Rotations) {
				// Strict comparison keeps the earliest candidate on ties
				if sc := p.score(s, size); sc < best.score {
					best = candidate{bin: bi, space: si, size: size, score: sc}
					found = true
				}
			}
		}
	}
	return best, found
}

func (p *Packer) result(unplaced []model.Box) model.PackResult {
	out := model.PackResult{
		Bins:     make([]model.BinResult, 0, len(p.bins)),
		Unplaced: unplaced,
	}
	for _, b := range p.bins {
		size := b.size
		free := append([]model.Space(nil), b.spaces.Spaces()...)
		if p.cfg.Growing {
			size, free = shrink(b, p.cfg.GrowAxis)
		}
		out.Bins = append(out.Bins, model.BinResult{
			Index:      b.index,
			Size:       size,
			MaxWeight:  p.cfg.Bin.MaxWeight,
			Weight:     b.weight,
			Placements: append([]model.Placement(nil), b.placements...),
			FreeSpaces: free,
		})
	}
	return out
}

// shrink cuts the grow axis down to the far edge of the placed boxes and
// clips the free spaces to the new bounds.
func shrink(b binState, axis model.Axis) (model.Vec3, []model.Space) {
	var extent float64
	for _, pl := range b.placements {
		extent = math.Max(extent, pl.Max(axis))
	}
	size := b.size.With(axis, extent)

	var free []model.Space
	for _, s := range b.spaces.Spaces() {
		origin := s.Origin().Get(axis)
		if origin >= extent {
			continue
		}
		ext := s.Extents()
		ext = ext.With(axis, math.Min(ext.Get(axis), extent-origin))
		s.W, s.H, s.D = ext.X, ext.Y, ext.Z
		if usable(s) {
			free = append(free, s)
		}
	}
	return size, free
}

// ApplyOrder returns boxes permuted by order.
func ApplyOrder(boxes []model.Box, order []int) []model.Box {
	out := make([]model.Box, len(order))
	for i, idx := range order {
		out[i] = boxes[idx]
	}
	return out
}

// Pack solves a single ordering with a fresh solver for the strategy.
func Pack(strategy model.Strategy, cfg SolverConfig, boxes []model.Box, logger *zap.Logger) (model.PackResult, error) {
	if len(boxes) == 0 {
		return model.PackResult{}, ErrNoBoxes
	}
	if err := cfg.Validate(); err != nil {
		return model.PackResult{}, err
	}
	factory, err := NewSolverFactory(strategy, logger)
	if err != nil {
		return model.PackResult{}, err
	}
	solver := factory()
	solver.Init(cfg)
	defer solver.Release()

	result := solver.Solve(boxes)
	solvesTotal.WithLabelValues(string(strategy)).Inc()
	unplacedTotal.WithLabelValues(string(strategy)).Add(float64(len(result.Unplaced)))
	return result, nil
}
