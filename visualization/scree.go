// Package visualization renders diagnostic plots for fitted factor models.
package visualization

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/quantfactor/pkg/errors"
)

// SaveScreePlot renders the singular-value spectrum as a scree plot and
// writes it to path. The output format follows the file extension
// (.png, .svg, .pdf, ...).
func SaveScreePlot(singularValues []float64, path string) error {
	if len(singularValues) == 0 {
		return errors.NewValueError("SaveScreePlot", "empty singular values")
	}
	if err := errors.CheckValues("SaveScreePlot", singularValues); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Scree Plot"
	p.X.Label.Text = "Component"
	p.Y.Label.Text = "Singular Value"
	p.Y.Min = 0

	pts := make(plotter.XYs, len(singularValues))
	for i, s := range singularValues {
		pts[i].X = float64(i + 1)
		pts[i].Y = s
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return errors.Wrap(err, "SaveScreePlot: building line plot")
	}
	p.Add(line, points)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "SaveScreePlot: saving plot")
	}
	return nil
}
