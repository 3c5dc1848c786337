package speedup

import (
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultFilename is the name of the chart inside the
// results directory.
const DefaultFilename = "speedup.png"

// Render draws speedup against worker count and saves the
// chart to path.
// The image format is picked from the file extension.
func Render(points []*Point, path string) error {
	p := plot.New()
	p.Title.Text = "Speedup"
	p.X.Label.Text = "workers"
	p.Y.Label.Text = "speedup (baseline p=1)"
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Procs)
		xys[i].Y = pt.Speedup
	}
	line, scatter, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	p.Add(line, scatter)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
