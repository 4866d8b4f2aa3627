package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/engine"
)

func newPackCmd(a *app) *cobra.Command {
	var (
		in  inputFlags
		out outputFlags
	)

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Pack boxes in list order with one solver run",
		Long: `Pack places the boxes in the order they are listed, without searching
for a better ordering. Use optimize for the genetic search.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := a.load(cmd, &in)
			if err != nil {
				return err
			}

			cfg := engine.NewSolverConfig(job.container, job.settings)
			result, err := engine.Pack(job.settings.Strategy, cfg, job.boxes, a.logger)
			if err != nil {
				return err
			}
			a.logger.Debug("packed",
				zap.Int("boxes", len(job.boxes)),
				zap.Int("bins", len(result.Bins)),
				zap.Int("unplaced", len(result.Unplaced)))

			w := cmd.OutOrStdout()
			printResult(w, job, result, engine.ObjectiveFor(job.settings.Growing))
			return a.writeOutputs(w, &out, job, result)
		},
	}

	in.register(cmd)
	out.register(cmd)
	return cmd
}
