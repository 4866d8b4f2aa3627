package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/model"
)

// ErrScorerUnavailable is returned by scorers that cannot run on this host.
var ErrScorerUnavailable = errors.New("batch scorer unavailable")

// BatchScorer scores many orderings of one box set in a single call. It
// returns a fitness per ordering and no geometry; the optimizer rebuilds
// the winner's layout with a reference solver.
type BatchScorer interface {
	Available() bool
	ScoreBatch(ctx context.Context, boxes []model.Box, orders [][]int) ([]float64, error)
}

// CPUBatchScorer scores orderings with the parallel solver pool.
type CPUBatchScorer struct {
	factory SolverFactory
	cfg     SolverConfig
	workers int
	timeout time.Duration
	logger  *zap.Logger
}

// NewCPUBatchScorer returns a scorer that evaluates orderings on workers
// goroutines.
func NewCPUBatchScorer(factory SolverFactory, cfg SolverConfig, workers int, logger *zap.Logger) *CPUBatchScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CPUBatchScorer{
		factory: factory,
		cfg:     cfg,
		workers: workers,
		timeout: DefaultShutdownTimeout,
		logger:  logger,
	}
}

func (s *CPUBatchScorer) Available() bool {
	return s.factory != nil
}

func (s *CPUBatchScorer) ScoreBatch(ctx context.Context, boxes []model.Box, orders [][]int) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ev := newEvaluator(s.factory, s.cfg, boxes, s.workers > 1, s.workers, s.timeout, s.logger)
	results := ev.evaluate(ctx, orders)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.fitness
	}
	return scores, nil
}

// NoopScorer is never available. It stands in for an accelerator that is
// not present.
type NoopScorer struct{}

func (NoopScorer) Available() bool {
	return false
}

func (NoopScorer) ScoreBatch(context.Context, []model.Box, [][]int) ([]float64, error) {
	return nil, ErrScorerUnavailable
}

// referenceSolve packs a single ordering with a fresh solver to recover the
// geometry a batch scorer does not return.
func referenceSolve(factory SolverFactory, cfg SolverConfig, boxes []model.Box, order []int) (result model.PackResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reference solve panic: %v", r)
		}
	}()
	solver := factory()
	solver.Init(cfg)
	defer solver.Release()
	return solver.Solve(ApplyOrder(boxes, order)), nil
}
