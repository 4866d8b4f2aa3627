package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/model"
)

// DefaultShutdownTimeout bounds how long a generation waits for its workers.
const DefaultShutdownTimeout = 3 * time.Minute

var errEvaluationDropped = errors.New("evaluation did not finish before the shutdown timeout")

// evaluation is the outcome of packing one ordering.
type evaluation struct {
	fitness float64
	result  model.PackResult
	err     error
}

// evaluator packs whole generations of orderings. In parallel mode each
// contiguous chunk of orderings gets its own solver instance, so no solver
// state is shared between goroutines.
type evaluator struct {
	factory   SolverFactory
	cfg       SolverConfig
	boxes     []model.Box
	objective Objective
	threaded  bool
	workers   int
	timeout   time.Duration
	logger    *zap.Logger

	shared Solver
}

func newEvaluator(factory SolverFactory, cfg SolverConfig, boxes []model.Box, threaded bool, workers int, timeout time.Duration, logger *zap.Logger) *evaluator {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	return &evaluator{
		factory:   factory,
		cfg:       cfg,
		boxes:     boxes,
		objective: ObjectiveFor(cfg.Growing),
		threaded:  threaded,
		workers:   workers,
		timeout:   timeout,
		logger:    logger,
	}
}

// evaluate scores every ordering. The returned slice is index-aligned with
// orders. Orderings that failed carry the objective's worst fitness.
func (e *evaluator) evaluate(ctx context.Context, orders [][]int) []evaluation {
	start := time.Now()
	mode := "sequential"
	var out []evaluation
	if e.threaded && e.workers > 1 && len(orders) > 1 {
		mode = "parallel"
		out = e.parallel(ctx, orders)
	} else {
		out = e.sequential(orders)
	}
	evaluationSeconds.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	return out
}

func (e *evaluator) sequential(orders [][]int) []evaluation {
	if e.shared == nil {
		e.shared = e.factory()
		e.shared.Init(e.cfg)
	}
	out := make([]evaluation, len(orders))
	for i, order := range orders {
		out[i] = e.evaluateOne(e.shared, order)
	}
	return out
}

func (e *evaluator) parallel(ctx context.Context, orders [][]int) []evaluation {
	out := make([]evaluation, len(orders))
	committed := make([]bool, len(orders))
	var mu sync.Mutex
	closed := false

	chunks := chunkRanges(len(orders), e.workers)
	g, _ := newSafeGroup(ctx, e.logger)
	g.SetLimit(len(chunks))
	for _, ch := range chunks {
		g.Go(func() error {
			solver := e.factory()
			solver.Init(e.cfg)
			defer solver.Release()

			local := make([]evaluation, ch.end-ch.start)
			for i := range local {
				local[i] = e.evaluateOne(solver, orders[ch.start+i])
			}

			mu.Lock()
			defer mu.Unlock()
			if closed {
				return nil
			}
			copy(out[ch.start:ch.end], local)
			for i := ch.start; i < ch.end; i++ {
				committed[i] = true
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			e.logger.Warn("evaluation worker failed", zap.Error(err))
		}
	case <-timer.C:
		e.logger.Warn("evaluation timed out, dropping unfinished chunks",
			zap.Duration("timeout", e.timeout))
	case <-ctx.Done():
	}

	mu.Lock()
	defer mu.Unlock()
	closed = true
	for i := range out {
		if !committed[i] {
			out[i] = e.failed(errEvaluationDropped)
		}
	}
	return out
}

func (e *evaluator) evaluateOne(solver Solver, order []int) (ev evaluation) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("ordering evaluation panicked", zap.Any("panic", r))
			ev = e.failed(fmt.Errorf("evaluation panic: %v", r))
		}
	}()
	result := solver.Solve(ApplyOrder(e.boxes, order))
	return evaluation{
		fitness: Fitness(e.objective, result, e.cfg.Bin, len(e.boxes)),
		result:  result,
	}
}

func (e *evaluator) failed(err error) evaluation {
	evaluationFailures.Inc()
	return evaluation{fitness: e.objective.Worst(), err: err}
}

type chunk struct {
	start, end int
}

// chunkRanges splits n items into at most workers contiguous ranges of
// near-equal size.
func chunkRanges(n, workers int) []chunk {
	if n == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	size := (n + workers - 1) / workers
	var out []chunk
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, chunk{start: start, end: end})
	}
	return out
}
