// Package figures renders the analysis plots: response-rate histograms
// and coefficient bar charts, saved as PNG files.
package figures

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/peopleml/attrition/linear"
	"github.com/peopleml/attrition/pkg/errors"
)

// Histogram saves a histogram of the given values to filename.
func Histogram(values []float64, bins int, title, xlabel, filename string) error {
	if len(values) == 0 {
		return errors.NewValueError("figures.Histogram", "no values to plot")
	}
	if bins <= 0 {
		return errors.NewValidationError("bins", "must be positive", bins)
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NewValueError("figures.Histogram", "values contain NaN or Inf")
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return errors.Wrap(err, "building histogram")
	}
	h.FillColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	p.Add(h)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return errors.Wrapf(err, "saving %s", filename)
	}
	return nil
}

// CoefficientBars saves a bar chart of fitted model coefficients to
// filename. The intercept row is skipped; the bars show effect
// direction and size per predictor.
func CoefficientBars(coefs []linear.Coefficient, title, filename string) error {
	var names []string
	var vals plotter.Values
	for _, c := range coefs {
		if c.Name == "(Intercept)" {
			continue
		}
		names = append(names, c.Name)
		vals = append(vals, c.Estimate)
	}
	if len(vals) == 0 {
		return errors.NewValueError("figures.CoefficientBars", "no non-intercept coefficients")
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Estimate"

	bars, err := plotter.NewBarChart(vals, vg.Points(30))
	if err != nil {
		return errors.Wrap(err, "building bar chart")
	}
	bars.Color = color.RGBA{R: 178, G: 34, B: 34, A: 255}
	p.Add(bars)
	p.NominalX(names...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return errors.Wrapf(err, "saving %s", filename)
	}
	return nil
}
