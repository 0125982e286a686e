package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlexperiment/internal/errors"
	"mlexperiment/internal/logging"
	"mlexperiment/internal/preprocessing"
)

// writeDataset writes three well separated classes, 12 instances each.
func writeDataset(t *testing.T) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("length,width,species\n")
	for i := 0; i < 12; i++ {
		d := float64(i) * 0.1
		fmt.Fprintf(&sb, "%.1f,%.1f,setosa\n", 1+d, 0.5+d)
		fmt.Fprintf(&sb, "%.1f,%.1f,versicolor\n", 5+d, 2.5+d)
		fmt.Fprintf(&sb, "%.1f,%.1f,virginica\n", 9+d, 4.5+d)
	}

	path := filepath.Join(t.TempDir(), "flowers.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func newSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(logging.Nop(), preprocessing.DefaultOptions(), 1)
	require.NoError(t, s.Load(writeDataset(t)))
	return s
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)

	e := cfg.Experiment
	assert.Equal(t, int64(1), e.Seed)
	assert.Equal(t, preprocessing.MinMax, e.Normalization)
	assert.True(t, e.Balance)
	assert.Equal(t, ModeSplit, e.Evaluation.Mode)
	assert.Equal(t, 66.0, e.Evaluation.TrainPercent)
	assert.Equal(t, 10, e.Evaluation.Folds)
	assert.Equal(t, []int{5, 10, 15, 20, 25}, e.Evaluation.Sweep)
}

func TestParseConfigYAML(t *testing.T) {
	raw := []byte(`
experiment:
  dataset: data/leaves.arff
  balance: false
  model:
    tag: 2
    params: [0.25, "2"]
  evaluation:
    mode: sweep
    sweep: [3, 6]
  output:
    dir: out
    plot: true
`)
	cfg, err := ParseConfig(raw)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	e := cfg.Experiment
	assert.Equal(t, "data/leaves.arff", e.Dataset)
	assert.False(t, e.Balance)
	assert.Equal(t, "2", e.Model.Tag)
	assert.Equal(t, []string{"0.25", "2"}, e.Model.Params)
	assert.Equal(t, []int{3, 6}, e.Evaluation.Sweep)
	assert.Equal(t, 10, e.Evaluation.Folds, "unset fields keep defaults")
	assert.True(t, e.Output.Plot)
}

func TestParseConfigUnknownKey(t *testing.T) {
	_, err := ParseConfig([]byte("experiment:\n  datset: x.csv\n"))
	assert.Error(t, err)
}

func TestBundledConfigLoads(t *testing.T) {
	root := filepath.Join("..", "..")
	cfg, err := LoadConfig(filepath.Join(root, "config", "experiment.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	s := NewSession(logging.Nop(), cfg.PreprocessingOptions(), cfg.Experiment.Seed)
	require.NoError(t, s.Load(filepath.Join(root, cfg.Experiment.Dataset)))
	assert.Equal(t, []int{10, 10, 10}, s.Dataset().ClassCounts())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Experiment)
	}{
		{"no dataset", func(e *Experiment) { e.Dataset = "" }},
		{"no model", func(e *Experiment) { e.Model.Tag = "" }},
		{"bad mode", func(e *Experiment) { e.Evaluation.Mode = "holdout" }},
		{"bad normalization", func(e *Experiment) { e.Normalization = "log" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Experiment.Dataset = "x.csv"
			cfg.Experiment.Model.Tag = "knn"
			tt.mutate(&cfg.Experiment)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSessionEvaluateNeedsSplit(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Configure(5, []string{"3"}))

	_, err := s.Evaluate()
	assert.True(t, errors.Is(err, errors.ErrTrainDataUnavailable))
}

func TestSessionNeedsModel(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Split(66))

	_, err := s.Evaluate()
	assert.True(t, errors.Is(err, errors.ErrClassifierNotConfigured))

	_, err = s.CrossValidate(5)
	assert.True(t, errors.Is(err, errors.ErrClassifierNotConfigured))

	_, err = s.Describe()
	assert.True(t, errors.Is(err, errors.ErrClassifierNotConfigured))
}

func TestSessionConfigureFailureClearsModel(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Configure(5, []string{"3"}))

	err := s.Configure(7, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidModelOption))
	assert.Nil(t, s.Model())

	err = s.Configure(2, []string{"abc", "2"})
	assert.True(t, errors.Is(err, errors.ErrHyperparameterParse))
	assert.Nil(t, s.Model())
}

func TestSessionSplitAndEvaluate(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Configure(2, []string{"0.25", "2"}))
	assert.Contains(t, s.Model().Describe(), "confidenceFactor=0.25")

	require.NoError(t, s.Split(66))
	split := s.CurrentSplit()
	assert.Equal(t, 36, split.Train.NumInstances()+split.Test.NumInstances())

	res, err := s.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, split.Test.NumInstances(), res.Instances)
	assert.Equal(t, 100.0, res.Accuracy)
	assert.Same(t, res, s.LastResult())
}

func TestSessionCrossValidate(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Configure(5, []string{"1"}))

	res, err := s.CrossValidate(10)
	require.NoError(t, err)
	assert.Equal(t, 36, res.Instances)
	assert.Equal(t, []string{"setosa", "versicolor", "virginica"}, res.ClassNames)
}

func TestSessionSweep(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Configure(5, []string{"1"}))

	_, err := s.Sweep(nil)
	assert.True(t, errors.Is(err, errors.ErrEmptySweep))

	res, err := s.Sweep(DefaultSweep)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 5)
	assert.Same(t, res, s.LastSweep())
}

func TestSessionDescribeAndClassify(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Configure(2, []string{"0.25", "2"}))

	desc, err := s.Describe()
	require.NoError(t, err)
	assert.Contains(t, desc, "Number of leaves: 3")

	class, err := s.Classify([]string{"9.2", "4.6"})
	require.NoError(t, err)
	assert.Equal(t, "virginica", class)

	class, err = s.Classify([]string{"1.1", "0.6"})
	require.NoError(t, err)
	assert.Equal(t, "setosa", class)

	_, err = s.Classify([]string{"1.1"})
	assert.Error(t, err)

	_, err = s.Classify([]string{"wide", "0.6"})
	assert.Error(t, err)
}

func TestSessionLoadResetsSplit(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Split(50))
	require.NotNil(t, s.CurrentSplit())

	require.NoError(t, s.Load(writeDataset(t)))
	assert.Nil(t, s.CurrentSplit())
}

func TestSessionBalancesTrainingSidesOnly(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("length,width,species\n")
	for i := 0; i < 12; i++ {
		d := float64(i) * 0.1
		fmt.Fprintf(&sb, "%.1f,%.1f,setosa\n", 1+d, 0.5+d)
		if i%2 == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f,virginica\n", 9+d, 4.5+d)
		}
	}
	path := filepath.Join(t.TempDir(), "skewed.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))

	s := NewSession(logging.Nop(), preprocessing.DefaultOptions(), 1)
	require.NoError(t, s.Load(path))
	assert.Equal(t, []int{12, 6}, s.Dataset().ClassCounts(), "stored dataset is not replicated")

	require.NoError(t, s.Configure(5, []string{"1"}))
	res, err := s.CrossValidate(4)
	require.NoError(t, err)
	assert.Equal(t, 18, res.Instances)
	assert.Equal(t, 100.0, res.Accuracy)

	require.NoError(t, s.Split(50))
	res, err = s.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, s.CurrentSplit().Test.NumInstances(), res.Instances)

	desc, err := s.Describe()
	require.NoError(t, err)
	assert.Contains(t, desc, "Stored instances: 24", "full-data fit trains on the balanced set")
}

func TestSessionLoadDropsTrainedModel(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Configure(5, []string{"1"}))
	desc, err := s.Describe()
	require.NoError(t, err)
	assert.Contains(t, desc, "Stored instances: 36")

	require.NoError(t, s.Load(writeSmallDataset(t)))
	desc, err = s.Describe()
	require.NoError(t, err)
	assert.Contains(t, desc, "Stored instances: 6")
}

func writeSmallDataset(t *testing.T) string {
	t.Helper()
	body := "length,width,species\n1.0,0.5,setosa\n1.1,0.6,setosa\n5.0,2.5,versicolor\n5.1,2.6,versicolor\n9.0,4.5,virginica\n9.1,4.6,virginica\n"
	path := filepath.Join(t.TempDir(), "small.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSessionLoadErrors(t *testing.T) {
	s := NewSession(logging.Nop(), preprocessing.DefaultOptions(), 1)

	err := s.Load(filepath.Join(t.TempDir(), "data.xlsx"))
	assert.True(t, errors.Is(err, errors.ErrUnsupportedFormat))

	err = s.Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, errors.ErrIO))

	err = s.Split(66)
	assert.True(t, errors.Is(err, errors.ErrTrainDataUnavailable))
}

func runnerConfig(t *testing.T, mode string) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Experiment.Dataset = writeDataset(t)
	cfg.Experiment.Model = ModelSpec{Tag: "knn", Params: []string{"3"}}
	cfg.Experiment.Evaluation.Mode = mode
	cfg.Experiment.Evaluation.Sweep = []int{3, 6, 9}
	cfg.Experiment.Output = OutputSpec{Dir: filepath.Join(t.TempDir(), "results"), Plot: true}
	return cfg
}

func TestRunnerSplit(t *testing.T) {
	runner := NewRunner(runnerConfig(t, ModeSplit), logging.Nop())

	out, err := runner.Run()
	require.NoError(t, err)
	require.NotNil(t, out.Result)
	assert.Nil(t, out.Sweep)
	assert.Equal(t, "KNN", out.Model)
	assert.Equal(t, "66% train", out.Setting)
	assert.Contains(t, out.Report(), "Results\n======")

	files, err := runner.Export(out)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	csvData, err := os.ReadFile(filepath.Join(runner.Config.Experiment.Output.Dir, ResultsFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Dataset,Model,Parameters"))
	assert.Contains(t, lines[1], "KNN,k=3,split")
}

func TestRunnerSweepExportsChart(t *testing.T) {
	runner := NewRunner(runnerConfig(t, ModeSweep), logging.Nop())

	out, err := runner.Run()
	require.NoError(t, err)
	require.NotNil(t, out.Sweep)
	assert.Equal(t, "k=3,6,9", out.Setting)

	files, err := runner.Export(out)
	require.NoError(t, err)
	assert.Len(t, files, 4)

	dir := runner.Config.Experiment.Output.Dir
	text, err := os.ReadFile(filepath.Join(dir, ReportFile))
	require.NoError(t, err)
	assert.Contains(t, string(text), "k,accuracy,precision,recall")
	assert.Contains(t, string(text), "Best: k = ")

	info, err := os.Stat(filepath.Join(dir, ChartFile))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRunnerCrossValidation(t *testing.T) {
	cfg := runnerConfig(t, ModeCV)
	cfg.Experiment.Evaluation.Folds = 5
	cfg.Experiment.Output.Dir = ""

	runner := NewRunner(cfg, logging.Nop())
	out, err := runner.Run()
	require.NoError(t, err)
	assert.Equal(t, 36, out.Result.Instances)

	files, err := runner.Export(out)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRunnerRejectsBadModel(t *testing.T) {
	cfg := runnerConfig(t, ModeSplit)
	cfg.Experiment.Model.Tag = "7"

	_, err := NewRunner(cfg, logging.Nop()).Run()
	assert.True(t, errors.Is(err, errors.ErrInvalidModelOption))
}
