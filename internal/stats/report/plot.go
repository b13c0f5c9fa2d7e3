// Package report renders recorded runs as plots and plain files.
package report

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"fuzzevo/internal/stats"
)

var ErrNoSeries = errors.New("no fitness series to plot")

var trialPalette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
}

// WriteFitnessPlot renders best fitness per generation, one thin line per
// trial plus a thick mean curve. The image format follows the extension of
// path (png, svg, pdf...).
func WriteFitnessPlot(path, title string, histories [][]float64) error {
	if len(histories) == 0 {
		return ErrNoSeries
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Best fitness"

	for i, history := range histories {
		if len(history) == 0 {
			continue
		}
		line, err := plotter.NewLine(curveXYs(indexed(history)))
		if err != nil {
			return fmt.Errorf("trial %d line: %w", i, err)
		}
		line.Color = trialPalette[i%len(trialPalette)]
		line.Width = vg.Points(0.75)
		p.Add(line)
	}

	mean := stats.AverageCurve(histories)
	if len(mean) > 0 {
		meanLine, err := plotter.NewLine(curveXYs(mean))
		if err != nil {
			return fmt.Errorf("mean line: %w", err)
		}
		meanLine.Color = color.RGBA{A: 255}
		meanLine.Width = vg.Points(2)
		p.Add(meanLine)
		p.Legend.Add("mean", meanLine)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}

func indexed(values []float64) []stats.PlotPoint {
	points := make([]stats.PlotPoint, len(values))
	for i, v := range values {
		points[i] = stats.PlotPoint{Index: i, Value: v}
	}
	return points
}

func curveXYs(points []stats.PlotPoint) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Index)
		xys[i].Y = pt.Value
	}
	return xys
}
