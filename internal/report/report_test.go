package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlexperiment/internal/errors"
	"mlexperiment/internal/evaluation"
)

func fiveKSweep() *evaluation.SweepResult {
	rows := []evaluation.SweepRow{
		{K: 5, Accuracy: 90, MeanPrecision: 0.9, MeanRecall: 0.8},
		{K: 10, Accuracy: 92, MeanPrecision: 0.92, MeanRecall: 0.91},
		{K: 15, Accuracy: 88, MeanPrecision: 0.881, MeanRecall: 0.875},
		{K: 20, Accuracy: 91, MeanPrecision: 0.9, MeanRecall: 0.9},
		{K: 25, Accuracy: 89, MeanPrecision: 0.89, MeanRecall: 0.89},
	}
	return &evaluation.SweepResult{
		Rows:          rows,
		BestK:         10,
		BestAccuracy:  92,
		WorstK:        15,
		WorstAccuracy: 88,
		MeanAccuracy:  90,
	}
}

func TestSweepTable(t *testing.T) {
	want := "k,accuracy,precision,recall\n" +
		"5,90.00,0.90,0.80\n" +
		"10,92.00,0.92,0.91\n" +
		"15,88.00,0.88,0.88\n" +
		"20,91.00,0.90,0.90\n" +
		"25,89.00,0.89,0.89\n" +
		"\nBest: k = 10 with accuracy = 92.00" +
		"\nWorst: k = 15 with accuracy = 88.00" +
		"\nAverage: accuracy = 90.00\n"

	assert.Equal(t, want, SweepTable(fiveKSweep()))
}

func TestEvaluationReport(t *testing.T) {
	res := evaluation.NewResult([][]int{
		{4, 1},
		{0, 5},
	}, []string{"healthy", "blight"})

	out := Evaluation(res)
	assert.True(t, strings.HasPrefix(out, "Results\n======\n"))
	assert.Contains(t, out, "Correctly Classified Instances")
	assert.Contains(t, out, "90.0000 %")
	assert.Contains(t, out, "Total Number of Instances                      10")
	assert.Contains(t, out, "=== Detailed Accuracy By Class ===")
	assert.Contains(t, out, "1.000      0.800      0.889   healthy")
	assert.Contains(t, out, "=== Confusion Matrix ===")
	assert.Contains(t, out, "  a  b   <-- classified as\n")
	assert.Contains(t, out, "  4  1 | a = healthy\n")
	assert.Contains(t, out, "  0  5 | b = blight\n")
}

func TestColumnLabel(t *testing.T) {
	assert.Equal(t, "a", columnLabel(0))
	assert.Equal(t, "z", columnLabel(25))
	assert.Equal(t, "aa", columnLabel(26))
	assert.Equal(t, "ab", columnLabel(27))
}

func TestSweepChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.png")
	require.NoError(t, SweepChart(fiveKSweep(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSweepChartEmpty(t *testing.T) {
	err := SweepChart(&evaluation.SweepResult{}, filepath.Join(t.TempDir(), "x.png"))
	assert.True(t, errors.Is(err, errors.ErrEmptySweep))
}
