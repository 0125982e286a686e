package report

import (
	"encoding/csv"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"mlexperiment/internal/errors"
	"mlexperiment/internal/evaluation"
)

// SweepTable renders one CSV row per fold count followed by the best, worst
// and average lines. Values carry two decimals.
func SweepTable(sweep *evaluation.SweepResult) string {
	var sb strings.Builder

	w := csv.NewWriter(&sb)
	_ = w.Write([]string{"k", "accuracy", "precision", "recall"})
	for _, row := range sweep.Rows {
		_ = w.Write([]string{
			strconv.Itoa(row.K),
			fmt.Sprintf("%.2f", row.Accuracy),
			fmt.Sprintf("%.2f", row.MeanPrecision),
			fmt.Sprintf("%.2f", row.MeanRecall),
		})
	}
	w.Flush()

	fmt.Fprintf(&sb, "\nBest: k = %d with accuracy = %.2f", sweep.BestK, sweep.BestAccuracy)
	fmt.Fprintf(&sb, "\nWorst: k = %d with accuracy = %.2f", sweep.WorstK, sweep.WorstAccuracy)
	fmt.Fprintf(&sb, "\nAverage: accuracy = %.2f\n", sweep.MeanAccuracy)
	return sb.String()
}

// SweepChart draws accuracy over k and saves it to path. The image format
// follows the extension (.png, .svg, .pdf).
func SweepChart(sweep *evaluation.SweepResult, path string) error {
	if sweep == nil || len(sweep.Rows) == 0 {
		return errors.Wrap(errors.ErrEmptySweep, "chart")
	}

	p := plot.New()
	p.Title.Text = "Cross-validation accuracy by fold count"
	p.X.Label.Text = "k"
	p.Y.Label.Text = "Accuracy (%)"

	acc := sweep.Accuracies()
	p.Y.Min = math.Max(0, floats.Min(acc)-5)
	p.Y.Max = math.Min(100, floats.Max(acc)+5)

	pts := make(plotter.XYs, len(sweep.Rows))
	for i, row := range sweep.Rows {
		pts[i].X = float64(row.K)
		pts[i].Y = acc[i]
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return errors.Wrap(err, "chart points")
	}
	line.Color = color.RGBA{B: 255, A: 255, R: 50, G: 50}
	line.LineStyle.Width = vg.Points(2)
	points.Color = line.Color
	p.Add(line, points)

	mean, err := plotter.NewLine(plotter.XYs{
		{X: pts[0].X, Y: sweep.MeanAccuracy},
		{X: pts[len(pts)-1].X, Y: sweep.MeanAccuracy},
	})
	if err != nil {
		return errors.Wrap(err, "chart mean")
	}
	mean.Color = color.RGBA{R: 255, A: 255}
	mean.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(mean)
	p.Legend.Add("accuracy", line, points)
	p.Legend.Add("mean", mean)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save chart %s", filepath.Base(path))
	}
	return nil
}
