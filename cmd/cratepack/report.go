package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/engine"
	"github.com/piwi3910/CratePack/internal/export"
	"github.com/piwi3910/CratePack/internal/model"
	"github.com/piwi3910/CratePack/internal/project"
)

// estimateSlack is the headroom, in percent, added to the bin estimate.
const estimateSlack = 15

var (
	heading = color.New(color.Bold)
	good    = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	bad     = color.New(color.FgRed)
)

// outputFlags select where a packing result is written.
type outputFlags struct {
	out    []string
	labels string
	save   string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVar(&o.out, "out", nil, "write the result to these files (.csv, .xlsx, .pdf, .dxf)")
	fs.StringVar(&o.labels, "labels", "", "write printable box labels with QR codes to this PDF")
	fs.StringVar(&o.save, "save", "", "save items, container, settings and result as a project file")
}

// printResult writes a human readable summary of result.
func printResult(w io.Writer, in input, result model.PackResult, obj engine.Objective) {
	heading.Fprintf(w, "%s: %d boxes into %s (%s)\n", in.name, len(in.boxes), in.container.Label, in.settings.Strategy)

	for _, b := range result.Bins {
		fill := b.Fill()
		c := good
		if fill < 50 {
			c = warn
		}
		fmt.Fprintf(w, "  Bin %-3d %gx%gx%g  %3d boxes  ", b.Index+1, b.Size.X, b.Size.Y, b.Size.Z, len(b.Placements))
		c.Fprintf(w, "%5.1f%% fill", fill)
		if b.MaxWeight > 0 {
			fmt.Fprintf(w, "  %.1f/%.1f kg", b.Weight, b.MaxWeight)
		} else if b.Weight > 0 {
			fmt.Fprintf(w, "  %.1f kg", b.Weight)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "  Placed %d of %d boxes in %d bins, %.1f%% overall fill, %s %.4f\n",
		result.PlacedCount(), len(in.boxes), len(result.Bins), result.TotalFill(), obj,
		engine.Fitness(obj, result, in.container, len(in.boxes)))

	if !in.settings.Growing {
		est := model.CalculateLoadEstimate(in.boxes, in.container, estimateSlack)
		fmt.Fprintf(w, "  Lower bound %d bins (volume %d, weight %d)\n", est.BinsMin, est.BinsByVolume, est.BinsByWeight)
	}

	if voids := model.DetectAllVoids(result); len(voids) > 0 {
		fmt.Fprintf(w, "  %d reusable voids, %.0f total volume\n", len(voids), model.TotalVoidVolume(voids))
	}

	if len(result.Unplaced) > 0 {
		bad.Fprintf(w, "  %d boxes could not be placed:\n", len(result.Unplaced))
		for _, b := range result.Unplaced {
			label := b.Label
			if label == "" {
				label = fmt.Sprintf("#%d", b.ID)
			}
			bad.Fprintf(w, "    %s %gx%gx%g %.1f kg\n", label, b.Size.X, b.Size.Y, b.Size.Z, b.Weight)
		}
	}
}

// writeOutputs exports result to every requested file and saves the
// project when asked to.
func (a *app) writeOutputs(w io.Writer, o *outputFlags, in input, result model.PackResult) error {
	for _, path := range o.out {
		if err := export.Write(path, result, in.container, in.settings); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %s\n", path)
	}

	if o.labels != "" {
		if err := export.ExportLabels(o.labels, result); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %s\n", o.labels)
	}

	if o.save != "" {
		p := model.NewProject()
		p.Name = in.name
		p.Items = in.items
		p.Container = in.container
		p.Settings = in.settings
		p.Result = &result

		path, err := project.SaveProject(o.save, p)
		if err != nil {
			return err
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		a.rememberProject(path)
		a.logger.Debug("project saved", zap.String("path", path))
		fmt.Fprintf(w, "Saved %s\n", path)
	}
	return nil
}
