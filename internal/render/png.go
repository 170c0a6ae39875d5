package render

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/schema"
)

// Page geometry of one stage image.
const (
	plotDPI    = 96
	pageWidth  = 8 * vg.Inch
	pageHeight = 10 * vg.Inch
	lineWidth  = 1.5
)

var (
	axisColors = [3]color.RGBA{colornames.Crimson, colornames.Forestgreen, colornames.Steelblue}
	trackColor = colornames.Darkorchid
)

// PNGSink draws each stage into <dir>/<name>_<stage>.png, or
// <dir>/<prefix>_<name>_<stage>.png when a prefix is set.
// The image has one time plot per axis and the A/B track underneath.
type PNGSink struct {
	Dir    string
	Prefix string

	canvases *canvasTracker
}

var _ contract.RenderSink = &PNGSink{} // Compile-time check

// NewPNGSink creates a sink that writes plots under dir.
func NewPNGSink(dir, prefix string) *PNGSink {
	if dir == "" {
		dir = contract.DefaultSinkDir
	}
	return &PNGSink{Dir: dir, Prefix: prefix, canvases: &canvasTracker{}}
}

// Path returns the file a series is written to.
func (s *PNGSink) Path(series schema.LabeledSeries) string {
	base := fmt.Sprintf("%s_%s.png", series.Name, series.Stage)
	if s.Prefix != "" {
		base = s.Prefix + "_" + base
	}
	return filepath.Join(s.Dir, base)
}

// Render implements the RenderSink interface.
func (s *PNGSink) Render(ctx context.Context, series schema.LabeledSeries) error {
	c := s.canvases.acquire()
	defer s.canvases.release(c)

	if err := ctx.Err(); err != nil {
		return err
	}
	if series.Series.Empty() {
		return fmt.Errorf("render %s: %w", series.Stage, schema.ErrEmptySeries)
	}

	plots, err := stagePlots(series)
	if err != nil {
		return fmt.Errorf("render %s: %w", series.Stage, err)
	}
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadY:      vg.Points(12),
		PadTop:    vg.Points(8),
		PadBottom: vg.Points(8),
		PadLeft:   vg.Points(8),
		PadRight:  vg.Points(16),
	}
	cells := plot.Align(plots, tiles, draw.New(c))
	for i := range plots {
		plots[i][0].Draw(cells[i][0])
	}

	path := s.Path(series)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write plot %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	contract.LogDebug("Wrote plot", map[string]any{"path": path, "samples": series.Series.Len()})
	return nil
}

// Close implements the RenderSink interface.
func (s *PNGSink) Close() error { return nil }

// stagePlots builds one row per axis against time, then B against A.
func stagePlots(series schema.LabeledSeries) ([][]*plot.Plot, error) {
	times := series.Series.Times()
	rows := make([][]*plot.Plot, 0, 4)

	for i := range 3 {
		p := plot.New()
		if i == 0 {
			p.Title.Text = fmt.Sprintf("%s  %s", series.Name, series.Stage)
		}
		p.X.Label.Text = "time (s)"
		p.Y.Label.Text = series.Labels[i]
		if err := addLine(p, times, series.Series.Axis(i), axisColors[i]); err != nil {
			return nil, fmt.Errorf("%s: %w", series.Labels[i], err)
		}
		rows = append(rows, []*plot.Plot{p})
	}

	track := plot.New()
	track.X.Label.Text = series.Labels[0]
	track.Y.Label.Text = series.Labels[1]
	if err := addLine(track, series.Series.Axis(0), series.Series.Axis(1), trackColor); err != nil {
		return nil, fmt.Errorf("track: %w", err)
	}
	return append(rows, []*plot.Plot{track}), nil
}

// addLine adds a gridded polyline of xs against ys to p.
func addLine(p *plot.Plot, xs, ys []float64, c color.Color) error {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(lineWidth)
	p.Add(plotter.NewGrid(), line)
	return nil
}

// canvasTracker hands out page canvases. Every acquire must be paired with a release.
type canvasTracker struct {
	inUse atomic.Int64
}

func (t *canvasTracker) acquire() *vgimg.Canvas {
	t.inUse.Add(1)
	return vgimg.NewWith(vgimg.UseWH(pageWidth, pageHeight), vgimg.UseDPI(plotDPI))
}

func (t *canvasTracker) release(*vgimg.Canvas) {
	t.inUse.Add(-1)
}

// outstanding returns how many canvases are currently acquired.
func (t *canvasTracker) outstanding() int64 {
	return t.inUse.Load()
}
