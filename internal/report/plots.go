// Package report draws charts of a completed run: the path against the
// agent's captured positions in plan view, and the best tracking error per
// tessellated sample.
package report

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/pathtrack/internal/fsutil"
	"github.com/banshee-data/pathtrack/internal/metrics"
	"github.com/banshee-data/pathtrack/internal/monitoring"
)

// File names written by SavePlots.
const (
	PathPlotFile  = "path_xy.png"
	ErrorPlotFile = "error_profile.png"
)

var (
	pathColor   = color.RGBA{R: 38, G: 130, B: 142, A: 255}
	agentColor  = color.RGBA{R: 224, G: 90, B: 43, A: 255}
	targetColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// SavePlots writes PathPlotFile and ErrorPlotFile into dir and returns the
// paths written.
func SavePlots(fsys fsutil.FileSystem, dir string, samples []r3.Vec, series *metrics.Series, best []float64) ([]string, error) {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}

	pathPlot, err := pathPlot(samples, series)
	if err != nil {
		return nil, err
	}
	errPlot, err := errorPlot(best)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, p := range []struct {
		plot *plot.Plot
		name string
	}{
		{pathPlot, PathPlotFile},
		{errPlot, ErrorPlotFile},
	} {
		file := filepath.Join(dir, p.name)
		if err := savePNG(fsys, p.plot, file); err != nil {
			return written, err
		}
		written = append(written, file)
	}
	monitoring.Logf("Saved %d plots to %s", len(written), dir)
	return written, nil
}

func pathPlot(samples []r3.Vec, series *metrics.Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Path vs agent (plan view)"
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	if len(samples) > 0 {
		line, err := plotter.NewLine(planXYs(samples))
		if err != nil {
			return nil, fmt.Errorf("path line: %w", err)
		}
		line.Color = pathColor
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("path", line)
	}

	if series != nil && series.Len() > 0 {
		targets, err := plotter.NewScatter(planXYs(series.Target))
		if err != nil {
			return nil, fmt.Errorf("target scatter: %w", err)
		}
		targets.GlyphStyle.Color = targetColor
		targets.GlyphStyle.Radius = vg.Points(1.5)
		targets.GlyphStyle.Shape = draw.CrossGlyph{}
		p.Add(targets)
		p.Legend.Add("target", targets)

		agent, err := plotter.NewScatter(planXYs(series.Position))
		if err != nil {
			return nil, fmt.Errorf("agent scatter: %w", err)
		}
		agent.GlyphStyle.Color = agentColor
		agent.GlyphStyle.Radius = vg.Points(2)
		agent.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(agent)
		p.Legend.Add("agent", agent)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

func errorPlot(best []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Best tracking error per sample"
	p.X.Label.Text = "Sample"
	p.Y.Label.Text = "Distance (m)"

	if len(best) > 0 {
		pts := make(plotter.XYs, len(best))
		for i, d := range best {
			pts[i] = plotter.XY{X: float64(i), Y: d}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("error line: %w", err)
		}
		line.Color = agentColor
		line.Width = vg.Points(1)
		p.Add(line)
	}
	return p, nil
}

func planXYs(vs []r3.Vec) plotter.XYs {
	pts := make(plotter.XYs, len(vs))
	for i, v := range vs {
		pts[i] = plotter.XY{X: v.X, Y: v.Y}
	}
	return pts
}

func savePNG(fsys fsutil.FileSystem, p *plot.Plot, file string) error {
	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", file, err)
	}
	f, err := fsys.Create(file)
	if err != nil {
		return fmt.Errorf("create %s: %w", file, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", file, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", file, err)
	}
	return nil
}
