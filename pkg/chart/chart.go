// Package chart draws monthly page-view series as line charts.
package chart

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/dtnitsch/pageview-charts/models"
)

const (
	// TickEvery labels every third month on the x axis.
	TickEvery = 3

	DefaultXLabel = "Date"
	DefaultSize   = 10 * vg.Inch
)

// Line is one labelled series on a chart.
type Line struct {
	Label  string
	Series models.Series
}

// Spec describes a chart independent of how it is drawn.
type Spec struct {
	Title  string
	XLabel string
	YLabel string
	Lines  []Line
}

// Renderer writes a chart to path.
type Renderer interface {
	Render(spec Spec, path string) error
}

// PlotRenderer renders with gonum/plot. The image format follows the file
// extension of the output path (png, svg, pdf, ...).
type PlotRenderer struct {
	Width  vg.Length
	Height vg.Length
}

func NewPlotRenderer() *PlotRenderer {
	return &PlotRenderer{Width: DefaultSize, Height: DefaultSize}
}

// Categories returns the sorted union of timestamps across all lines. Each
// timestamp's index is its x position.
func Categories(lines []Line) []string {
	seen := make(map[string]bool)
	var cats []string
	for _, l := range lines {
		for _, o := range l.Series {
			if !seen[o.Timestamp] {
				seen[o.Timestamp] = true
				cats = append(cats, o.Timestamp)
			}
		}
	}
	sort.Strings(cats)
	return cats
}

// Ticks labels every nth category and leaves the rest as unlabelled minor
// ticks.
func Ticks(cats []string, every int) []plot.Tick {
	if every < 1 {
		every = 1
	}
	ticks := make([]plot.Tick, len(cats))
	for i, c := range cats {
		ticks[i] = plot.Tick{Value: float64(i)}
		if i%every == 0 {
			ticks[i].Label = monthLabel(c)
		}
	}
	return ticks
}

// monthLabel shortens 2015070100 to 2015-07.
func monthLabel(ts string) string {
	if len(ts) >= 6 {
		return ts[:4] + "-" + ts[4:6]
	}
	return ts
}

func (r *PlotRenderer) Render(spec Spec, path string) error {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	if p.X.Label.Text == "" {
		p.X.Label.Text = DefaultXLabel
	}
	p.Y.Label.Text = spec.YLabel
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	cats := Categories(spec.Lines)
	index := make(map[string]int, len(cats))
	for i, c := range cats {
		index[c] = i
	}

	p.X.Tick.Marker = plot.ConstantTicks(Ticks(cats, TickEvery))
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	for i, line := range spec.Lines {
		xys := make(plotter.XYs, len(line.Series))
		for j, o := range line.Series {
			xys[j].X = float64(index[o.Timestamp])
			xys[j].Y = float64(o.Views)
		}

		l, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("line %q: %w", line.Label, err)
		}
		l.LineStyle.Width = vg.Points(1.5)
		l.LineStyle.Color = plotutil.Color(i)
		l.LineStyle.Dashes = plotutil.Dashes(i / len(plotutil.SoftColors))

		// Empty series still get a legend entry.
		if len(xys) > 0 {
			p.Add(l)
		}
		p.Legend.Add(line.Label, l)
	}

	if len(cats) == 0 {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
	} else {
		p.Y.Min = 0
	}

	width, height := r.Width, r.Height
	if width == 0 {
		width = DefaultSize
	}
	if height == 0 {
		height = DefaultSize
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}

// Describe returns a one-line text rendering of a spec, used in logs.
func Describe(spec Spec) string {
	labels := make([]string, len(spec.Lines))
	for i, l := range spec.Lines {
		labels[i] = fmt.Sprintf("%s(%d)", l.Label, len(l.Series))
	}
	return fmt.Sprintf("%q: %s", spec.Title, strings.Join(labels, ", "))
}
