package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CratePack/internal/engine"
	"github.com/piwi3910/CratePack/internal/export"
	"github.com/piwi3910/CratePack/internal/model"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		gen  engine.GeneratorConfig
		seed int64
		out  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random packing list as CSV",
		Long: `Generate draws boxes with whole-unit extents uniformly from
[--min, --max] and writes them in the import format read by --boxes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			boxes, err := engine.GenerateBoxes(rand.New(rand.NewSource(seed)), gen)
			if err != nil {
				return err
			}

			items := make([]model.Item, len(boxes))
			for i, b := range boxes {
				items[i] = model.Item{
					Label:    b.Label,
					Width:    b.Size.X,
					Height:   b.Size.Y,
					Depth:    b.Size.Z,
					Weight:   b.Weight,
					Quantity: 1,
				}
			}

			if out == "" || out == "-" {
				return export.WriteItemsCSV(cmd.OutOrStdout(), items)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.WriteItemsCSV(f, items); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.logger.Sugar().Debugf("wrote %d boxes to %s", len(items), out)
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d boxes to %s\n", len(items), out)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&gen.Count, "count", "n", 50, "number of boxes")
	fs.Float64Var(&gen.MinSize, "min", 10, "smallest extent")
	fs.Float64Var(&gen.MaxSize, "max", 60, "largest extent")
	fs.Float64Var(&gen.MaxWeight, "max-weight", 0, "largest box weight, 0 for weightless boxes")
	fs.Int64Var(&seed, "seed", 1, "random seed")
	fs.StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	return cmd
}
