package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/engine"
	"github.com/piwi3910/CratePack/internal/export"
	"github.com/piwi3910/CratePack/internal/model"
)

// gaFlags hold the genetic optimizer parameters.
type gaFlags struct {
	profile     string
	population  int
	elite       int
	generations int
	seed        int64
	threads     bool
	workers     int
}

func (g *gaFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&g.profile, "profile", "", "optimizer profile name from the inventory")
	fs.IntVar(&g.population, "pop", 0, "population size")
	fs.IntVar(&g.elite, "elite", 0, "orderings carried unchanged into the next generation")
	fs.IntVar(&g.generations, "generations", 0, "number of generations")
	fs.Int64Var(&g.seed, "seed", 0, "random seed")
	fs.BoolVar(&g.threads, "threads", true, "evaluate each generation in parallel")
	fs.IntVar(&g.workers, "workers", 0, "parallel evaluation workers, 0 for one per CPU")
}

// apply copies the profile and then the explicit flags into s. An explicit
// --strategy wins over the profile.
func (g *gaFlags) apply(a *app, cmd *cobra.Command, in *inputFlags, s *model.Settings) error {
	fs := cmd.Flags()
	if g.profile != "" {
		p := a.inventory.FindProfileByName(g.profile)
		if p == nil {
			return fmt.Errorf("optimizer profile %q not found", g.profile)
		}
		p.Apply(s)
		if fs.Changed("strategy") {
			s.Strategy = model.Strategy(in.strategy)
		}
	}
	if fs.Changed("pop") {
		s.PopulationSize = g.population
	}
	if fs.Changed("elite") {
		s.EliteCount = g.elite
	}
	if fs.Changed("generations") {
		s.Generations = g.generations
	}
	if fs.Changed("seed") {
		s.Seed = g.seed
	}
	if fs.Changed("threads") {
		s.Threaded = g.threads
	}
	if fs.Changed("workers") {
		s.Workers = g.workers
	}
	return nil
}

func newOptimizeCmd(a *app) *cobra.Command {
	var (
		in    inputFlags
		ga    gaFlags
		out   outputFlags
		chart string
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Search box orderings with the genetic optimizer",
		Long: `Optimize evolves a population of box orderings. Each ordering is packed
by the chosen strategy and scored by bin density, or by extent when the
bin grows. Interrupting the run keeps the best ordering found so far.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := a.load(cmd, &in)
			if err != nil {
				return err
			}
			if err := ga.apply(a, cmd, &in, &job.settings); err != nil {
				return err
			}
			if job.settings.Generations < 1 {
				return fmt.Errorf("%w: generations must be at least 1", engine.ErrInvalidConfig)
			}

			factory, err := engine.NewSolverFactory(job.settings.Strategy, a.logger)
			if err != nil {
				return err
			}
			solverCfg := engine.NewSolverConfig(job.container, job.settings)
			if err := solverCfg.Validate(); err != nil {
				return err
			}
			gcfg := engine.GeneticConfigFromSettings(job.settings)
			if a.cfg.Optimizer.EvalTimeout > 0 {
				gcfg.ShutdownTimeout = a.cfg.Optimizer.EvalTimeout
			}
			if err := gcfg.Validate(); err != nil {
				return err
			}

			opt := engine.NewOptimizer(factory, solverCfg, gcfg, engine.WithLogger(a.logger))
			if err := opt.Init(job.boxes); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			points := make([]export.FitnessPoint, 0, job.settings.Generations)
			start := time.Now()

			best, err := opt.Run(ctx, job.settings.Generations, func(sol engine.Solution) {
				points = append(points, export.FitnessPoint{
					Generation: sol.Generation,
					Best:       sol.Fitness,
					Mean:       sol.Stats.Mean,
				})
				if !quiet {
					fmt.Fprintf(w, "gen %4d/%d  best %.4f  mean %.4f  sd %.4f  bins %d\n",
						sol.Generation+1, job.settings.Generations, sol.Fitness,
						sol.Stats.Mean, sol.Stats.StdDev, len(sol.Result.Bins))
				}
			})
			switch {
			case errors.Is(err, context.Canceled) && len(points) > 0:
				warn.Fprintf(w, "Interrupted after %d generations, keeping the best ordering so far\n", len(points))
			case err != nil:
				return err
			}

			a.logger.Info("optimization finished",
				zap.Duration("elapsed", time.Since(start)),
				zap.Int("generations", opt.Generation()),
				zap.Float64("fitness", best.Fitness),
				zap.Float64("density", best.Density))

			printResult(w, job, best.Result, opt.Objective())

			if chart != "" {
				title := fmt.Sprintf("%s (%s)", job.name, job.settings.Strategy)
				if err := export.ExportFitnessChart(chart, title, opt.Objective().String(), points); err != nil {
					return err
				}
				fmt.Fprintf(w, "Wrote %s\n", chart)
			}
			return a.writeOutputs(w, &out, job, best.Result)
		},
	}

	in.register(cmd)
	ga.register(cmd)
	out.register(cmd)
	cmd.Flags().StringVar(&chart, "chart", "", "plot best and mean fitness per generation to this image (.png, .svg)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print per-generation progress")
	return cmd
}
