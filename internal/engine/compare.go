package engine

import (
	"context"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/model"
)

// ComparisonResult holds the outcome and summary numbers for one strategy.
type ComparisonResult struct {
	Strategy      model.Strategy   `json:"strategy"`
	Result        model.PackResult `json:"result"`
	Fitness       float64          `json:"fitness"`
	BinsUsed      int              `json:"bins_used"`
	FillPercent   float64          `json:"fill_percent"`
	UnplacedCount int              `json:"unplaced_count"`
	Elapsed       time.Duration    `json:"elapsed"`
	Err           string           `json:"error,omitempty"`
}

// CompareStrategies runs the optimizer once per strategy, concurrently,
// with otherwise identical settings. Results keep the order of strategies.
// Each run evaluates its generations on a single goroutine.
func CompareStrategies(ctx context.Context, boxes []model.Box, bin model.Container, base model.Settings, strategies []model.Strategy, logger *zap.Logger) []ComparisonResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	type indexed struct {
		i int
		r ComparisonResult
	}

	p := pool.NewWithResults[indexed]().WithMaxGoroutines(len(strategies) + 1)
	for i, s := range strategies {
		p.Go(func() indexed {
			settings := base
			settings.Strategy = s
			settings.Threaded = false

			start := time.Now()
			sol, err := Optimize(ctx, boxes, bin, settings, WithLogger(logger.With(zap.String("strategy", string(s)))))
			r := ComparisonResult{Strategy: s, Elapsed: time.Since(start)}
			if err != nil {
				r.Err = err.Error()
				return indexed{i: i, r: r}
			}
			r.Result = sol.Result
			r.Fitness = sol.Fitness
			r.BinsUsed = len(sol.Result.Bins)
			r.FillPercent = sol.Result.TotalFill()
			r.UnplacedCount = len(sol.Result.Unplaced)
			return indexed{i: i, r: r}
		})
	}

	collected := p.Wait()
	sort.Slice(collected, func(a, b int) bool { return collected[a].i < collected[b].i })

	results := make([]ComparisonResult, len(collected))
	for i, c := range collected {
		results[i] = c.r
	}
	return results
}
