package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CratePack/internal/engine"
	"github.com/piwi3910/CratePack/internal/model"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		in         inputFlags
		ga         gaFlags
		strategies []string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run the optimizer once per strategy and compare the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := a.load(cmd, &in)
			if err != nil {
				return err
			}
			if err := ga.apply(a, cmd, &in, &job.settings); err != nil {
				return err
			}

			list := model.Strategies()
			if len(strategies) > 0 {
				list = list[:0:0]
				for _, s := range strategies {
					st := model.Strategy(s)
					if !st.Valid() {
						return fmt.Errorf("unknown strategy %q (want %s)", s, strategyNames())
					}
					list = append(list, st)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			results := engine.CompareStrategies(ctx, job.boxes, job.container, job.settings, list, a.logger)
			printComparison(cmd, job, results, engine.ObjectiveFor(job.settings.Growing))
			return nil
		},
	}

	in.register(cmd)
	ga.register(cmd)
	cmd.Flags().StringSliceVar(&strategies, "strategies", nil, "strategies to compare (default all)")
	return cmd
}

func printComparison(cmd *cobra.Command, job input, results []engine.ComparisonResult, obj engine.Objective) {
	w := cmd.OutOrStdout()
	best := -1
	for i, r := range results {
		if r.Err != "" {
			continue
		}
		if best < 0 || obj.Better(r.Fitness, results[best].Fitness) {
			best = i
		}
	}

	heading.Fprintf(w, "%d boxes into %s, %d generations of %d\n",
		len(job.boxes), job.container.Label, job.settings.Generations, job.settings.PopulationSize)
	heading.Fprintf(w, "%-14s %10s %6s %8s %9s %10s\n", "Strategy", obj, "Bins", "Fill %", "Unplaced", "Time")
	for i, r := range results {
		if r.Err != "" {
			bad.Fprintf(w, "%-14s %s\n", r.Strategy, r.Err)
			continue
		}
		line := fmt.Sprintf("%-14s %10.4f %6d %8.1f %9d %10s\n",
			r.Strategy, r.Fitness, r.BinsUsed, r.FillPercent, r.UnplacedCount, r.Elapsed.Round(time.Millisecond))
		if i == best {
			good.Fprint(w, line)
		} else {
			fmt.Fprint(w, line)
		}
	}
}
