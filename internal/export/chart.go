package export

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// FitnessPoint is the fitness summary of one optimizer generation.
type FitnessPoint struct {
	Generation int
	Best       float64
	Mean       float64
}

// ExportFitnessChart draws the best and mean fitness per generation and
// saves it as an image. The format follows the file extension (png, svg, pdf).
// Points with a non-finite value are skipped.
func ExportFitnessChart(path, title, objective string, points []FitnessPoint) error {
	if len(points) == 0 {
		return fmt.Errorf("no generations to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = objective

	var bestPts, meanPts plotter.XYs
	for _, pt := range points {
		x := float64(pt.Generation)
		if finite(pt.Best) {
			bestPts = append(bestPts, plotter.XY{X: x, Y: pt.Best})
		}
		if finite(pt.Mean) {
			meanPts = append(meanPts, plotter.XY{X: x, Y: pt.Mean})
		}
	}
	if len(bestPts) == 0 {
		return fmt.Errorf("no finite fitness values to plot")
	}

	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return err
	}
	bestLine.Width = vg.Points(1.5)
	p.Add(bestLine)
	p.Legend.Add("best", bestLine)

	if len(meanPts) > 0 {
		meanLine, err := plotter.NewLine(meanPts)
		if err != nil {
			return err
		}
		meanLine.Color = color.RGBA{R: 33, G: 150, B: 243, A: 255}
		meanLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(meanLine)
		p.Legend.Add("mean", meanLine)
	}

	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
