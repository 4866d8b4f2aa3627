package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/model"
)

// panicSolver panics whenever the first box of the ordering has a given id.
type panicSolver struct {
	*Packer
	trigger int
}

func (s *panicSolver) Solve(boxes []model.Box) model.PackResult {
	if len(boxes) > 0 && boxes[0].ID == s.trigger {
		panic("boom")
	}
	return s.Packer.Solve(boxes)
}

// blockingSolver never returns until release is closed.
type blockingSolver struct {
	release chan struct{}
}

func (s *blockingSolver) Init(SolverConfig) {}
func (s *blockingSolver) Release()          {}
func (s *blockingSolver) Solve([]model.Box) model.PackResult {
	<-s.release
	return model.PackResult{}
}

func TestChunkRanges(t *testing.T) {
	tests := []struct {
		n, workers int
		want       []chunk
	}{
		{0, 4, nil},
		{5, 1, []chunk{{0, 5}}},
		{10, 4, []chunk{{0, 3}, {3, 6}, {6, 9}, {9, 10}}},
		{3, 8, []chunk{{0, 1}, {1, 2}, {2, 3}}},
		{4, 0, []chunk{{0, 4}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, chunkRanges(tt.n, tt.workers), "n=%d workers=%d", tt.n, tt.workers)
	}
}

func TestEvaluator_ContainsPanics(t *testing.T) {
	boxes := randomBoxes(1, 6, 4)
	factory := func() Solver { return &panicSolver{Packer: NewBestFit(zap.NewNop()), trigger: boxes[2].ID} }
	orders := [][]int{
		{0, 1, 2, 3, 4, 5},
		{2, 1, 0, 3, 4, 5},
		{5, 4, 3, 2, 1, 0},
		{2, 0, 1, 3, 4, 5},
	}

	for _, threaded := range []bool{false, true} {
		ev := newEvaluator(factory, makeTestConfig(makeTestBin(), model.RotateAll), boxes, threaded, 2, time.Minute, zap.NewNop())
		out := ev.evaluate(context.Background(), orders)
		require.Len(t, out, 4)

		assert.NoError(t, out[0].err)
		assert.Error(t, out[1].err)
		assert.NoError(t, out[2].err)
		assert.Error(t, out[3].err)
		assert.True(t, math.IsInf(out[1].fitness, -1), "failed slots get the worst score")
		assert.Equal(t, 1.0, out[0].fitness)
		assert.Equal(t, 6, out[2].result.PlacedCount())
	}
}

func TestEvaluator_ShutdownTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	factory := func() Solver { return &blockingSolver{release: release} }
	boxes := randomBoxes(1, 3, 3)
	ev := newEvaluator(factory, makeTestConfig(makeTestBin(), model.RotateAll), boxes, true, 2, 50*time.Millisecond, zap.NewNop())

	start := time.Now()
	out := ev.evaluate(context.Background(), [][]int{{0, 1, 2}, {2, 1, 0}})
	assert.Less(t, time.Since(start), 5*time.Second)

	for _, e := range out {
		assert.ErrorIs(t, e.err, errEvaluationDropped)
		assert.True(t, math.IsInf(e.fitness, -1))
	}
}

func TestEvaluator_MatchesDirectSolve(t *testing.T) {
	boxes := randomBoxes(2, 15, 5)
	cfg := makeTestConfig(makeTestBin(), model.RotateAll)
	factory, err := NewSolverFactory(model.StrategyBestFitEMS, nil)
	require.NoError(t, err)

	order := []int{14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	ev := newEvaluator(factory, cfg, boxes, false, 1, 0, zap.NewNop())
	out := ev.evaluate(context.Background(), [][]int{order})

	direct := solve(t, NewBestFitEMS(zap.NewNop()), cfg, ApplyOrder(boxes, order))
	assert.Equal(t, direct, out[0].result)
	assert.Equal(t, Fitness(ObjectiveDensity, direct, cfg.Bin, len(boxes)), out[0].fitness)
}
