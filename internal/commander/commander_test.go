package commander

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlexperiment/internal/experiment"
	"mlexperiment/internal/logging"
	"mlexperiment/internal/preprocessing"
)

func init() {
	color.NoColor = true
}

func writeDataset(t *testing.T) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("length,width,species\n")
	for i := 0; i < 10; i++ {
		d := float64(i) * 0.1
		fmt.Fprintf(&sb, "%.1f,%.1f,setosa\n", 1+d, 0.5+d)
		fmt.Fprintf(&sb, "%.1f,%.1f,virginica\n", 9+d, 4.5+d)
	}

	path := filepath.Join(t.TempDir(), "flowers.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func run(t *testing.T, script string) string {
	t.Helper()
	var out bytes.Buffer
	session := experiment.NewSession(logging.Nop(), preprocessing.DefaultOptions(), 1)
	c := NewCommander(session, logging.Nop(), strings.NewReader(script), &out)
	require.NoError(t, c.Start())
	return out.String()
}

func TestSessionScript(t *testing.T) {
	path := writeDataset(t)
	chart := filepath.Join(t.TempDir(), "sweep.png")

	out := run(t, strings.Join([]string{
		"load " + path,
		"model tree",
		"split 66",
		"evaluate",
		"cv 5",
		"sweep 2 4",
		"describe",
		"classify 9.3 4.6",
		"chart " + chart,
		"report",
		"info",
		"quit",
		"load never-read.csv",
	}, "\n"))

	assert.Contains(t, out, "✓ Loaded 20 instances, 3 attributes, class species [setosa virginica]")
	assert.Contains(t, out, "✓ Configured DecisionTree (confidenceFactor=0.25, minObjectsPerLeaf=2)")
	assert.Contains(t, out, "✓ Split: 13 train / 7 test")
	assert.Contains(t, out, "Results\n======")
	assert.Contains(t, out, "Running 5-fold cross-validation...")
	assert.Contains(t, out, "k,accuracy,precision,recall\n2,")
	assert.Contains(t, out, "Number of leaves: 2")
	assert.Contains(t, out, "✓ Predicted class: virginica")
	assert.Contains(t, out, "✓ Chart saved to "+chart)
	assert.Contains(t, out, "Class distribution: [10 10]")
	assert.Contains(t, out, "Bye")
	assert.NotContains(t, out, "never-read.csv")
}

func TestErrorsArePrinted(t *testing.T) {
	out := run(t, strings.Join([]string{
		"evaluate",
		"model 7",
		"model tree abc 2",
		"split 66",
		"sweep x",
		"report",
		"bogus",
	}, "\n"))

	assert.Contains(t, out, "✗ Error: evaluate: classifier not configured")
	assert.Contains(t, out, "tag 7: use 1 to 6")
	assert.Contains(t, out, "confidenceFactor")
	assert.Contains(t, out, "load a dataset first")
	assert.Contains(t, out, `fold count "x"`)
	assert.Contains(t, out, "No results yet")
	assert.Contains(t, out, "✗ Unknown command: bogus")
}

func TestModelHelpListsFamilies(t *testing.T) {
	out := run(t, "model\n")
	for _, name := range []string{"SVM", "DecisionTree", "Boosting", "RandomForest", "KNN", "RBFNetwork"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "model 5 k")
}
