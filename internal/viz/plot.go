// Package viz renders command results for the terminal.
package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

const (
	DefaultPlotWidth  = 80
	DefaultPlotHeight = 12
)

// Plot draws ys as a terminal line chart. Non-finite samples are dropped.
func Plot(ys []float64, caption string, height int) string {
	data := make([]float64, 0, len(ys))
	for _, y := range ys {
		if !math.IsNaN(y) && !math.IsInf(y, 0) {
			data = append(data, y)
		}
	}
	if len(data) == 0 {
		return ""
	}
	if height <= 0 {
		height = DefaultPlotHeight
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(DefaultPlotWidth),
		asciigraph.Caption(caption),
	)
}

// PlotMany draws several equally sampled series on shared axes.
func PlotMany(series [][]float64, caption string, height int) string {
	if len(series) == 0 {
		return ""
	}
	if height <= 0 {
		height = DefaultPlotHeight
	}

	colors := []asciigraph.AnsiColor{asciigraph.Green, asciigraph.Yellow, asciigraph.Cyan, asciigraph.Red}
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(DefaultPlotWidth),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors[:min(len(series), len(colors))]...),
	)
}
