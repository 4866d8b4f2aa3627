package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/piwi3910/CratePack/internal/model"
)

// fakeScorer scores an ordering by its first index.
type fakeScorer struct {
	err   error
	calls int
}

func (s *fakeScorer) Available() bool { return true }

func (s *fakeScorer) ScoreBatch(_ context.Context, _ []model.Box, orders [][]int) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	scores := make([]float64, len(orders))
	for i, o := range orders {
		scores[i] = float64(o[0])
	}
	return scores, nil
}

func TestNoopScorer(t *testing.T) {
	var s NoopScorer
	assert.False(t, s.Available())
	_, err := s.ScoreBatch(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrScorerUnavailable)
}

func TestCPUBatchScorer(t *testing.T) {
	boxes := randomBoxes(3, 12, 5)
	cfg := makeTestConfig(makeTestBin(), model.RotateAll)
	factory, err := NewSolverFactory(model.StrategyBestFit, nil)
	require.NoError(t, err)

	s := NewCPUBatchScorer(factory, cfg, 3, nil)
	require.True(t, s.Available())

	orders := [][]int{
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
		{11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
	}
	scores, err := s.ScoreBatch(context.Background(), boxes, orders)
	require.NoError(t, err)
	require.Len(t, scores, 2)

	for i, order := range orders {
		direct := solve(t, NewBestFit(zap.NewNop()), cfg, ApplyOrder(boxes, order))
		assert.Equal(t, Fitness(ObjectiveDensity, direct, cfg.Bin, len(boxes)), scores[i])
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.ScoreBatch(ctx, boxes, orders)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptimizer_BatchScorerMaterializesWinner(t *testing.T) {
	boxes := randomBoxes(5, 10, 5)
	scorer := &fakeScorer{}
	o := newTestOptimizer(t, makeTestGeneticConfig(), WithBatchScorer(scorer))
	require.NoError(t, o.Init(boxes))

	highest := 0
	for _, p := range o.Population() {
		if p[0] > highest {
			highest = p[0]
		}
	}

	sol, err := o.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, scorer.calls)
	assert.Equal(t, highest, sol.Order[0])
	assert.Equal(t, float64(highest), sol.Fitness)

	want := solve(t, NewBestFitEMS(zap.NewNop()), makeTestConfig(makeTestBin(), model.RotateAll), ApplyOrder(boxes, sol.Order))
	assert.Equal(t, want, sol.Result, "geometry comes from the reference solver")
}

func TestOptimizer_BatchScorerFallback(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	boxes := randomBoxes(5, 10, 5)

	scorer := &fakeScorer{err: errors.New("device lost")}
	o := newTestOptimizer(t, makeTestGeneticConfig(), WithBatchScorer(scorer), WithLogger(zap.New(core)))
	require.NoError(t, o.Init(boxes))

	sol, err := o.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, scorer.calls)
	assert.Equal(t, 10, sol.Result.PlacedCount()+len(sol.Result.Unplaced))
	assert.Equal(t, 1, logs.FilterMessage("batch scorer failed, using CPU evaluation").Len())

	// An unavailable scorer is skipped without a warning
	o = newTestOptimizer(t, makeTestGeneticConfig(), WithBatchScorer(NoopScorer{}), WithLogger(zap.New(core)))
	require.NoError(t, o.Init(boxes))
	_, err = o.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("batch scorer failed, using CPU evaluation").Len())
}
