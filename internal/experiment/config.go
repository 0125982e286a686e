package experiment

import (
	"bytes"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"mlexperiment/internal/errors"
	"mlexperiment/internal/preprocessing"
)

const (
	ModeSplit = "split"
	ModeCV    = "cv"
	ModeSweep = "sweep"
)

// DefaultSweep is the fold-count sequence used when none is given.
var DefaultSweep = []int{5, 10, 15, 20, 25}

type Config struct {
	Experiment Experiment `yaml:"experiment"`
}

type Experiment struct {
	Dataset       string         `yaml:"dataset"`
	Normalization string         `yaml:"normalization"`
	Balance       bool           `yaml:"balance"`
	Seed          int64          `yaml:"seed"`
	Model         ModelSpec      `yaml:"model"`
	Evaluation    EvaluationSpec `yaml:"evaluation"`
	Output        OutputSpec     `yaml:"output"`
}

// ModelSpec keeps the tag and parameters as written so they are parsed by
// the same rules as interactive input.
type ModelSpec struct {
	Tag    string   `yaml:"tag"`
	Params []string `yaml:"params"`
}

type EvaluationSpec struct {
	Mode         string  `yaml:"mode"`
	TrainPercent float64 `yaml:"train_percent"`
	Folds        int     `yaml:"folds"`
	Sweep        []int   `yaml:"sweep"`
}

type OutputSpec struct {
	Dir  string `yaml:"dir"`
	Plot bool   `yaml:"plot"`
}

func DefaultConfig() *Config {
	return &Config{
		Experiment: Experiment{
			Normalization: preprocessing.MinMax,
			Balance:       true,
			Seed:          1,
			Evaluation: EvaluationSpec{
				Mode:         ModeSplit,
				TrainPercent: 66,
				Folds:        10,
				Sweep:        append([]int(nil), DefaultSweep...),
			},
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Unknown keys are errors.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return ParseConfig(raw)
}

func ParseConfig(raw []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}

// Validate checks the fields that cannot be checked later by the pipeline
// itself.
func (c *Config) Validate() error {
	e := c.Experiment
	if strings.TrimSpace(e.Dataset) == "" {
		return errors.New("config: experiment.dataset is required")
	}
	if strings.TrimSpace(e.Model.Tag) == "" {
		return errors.Wrap(errors.ErrInvalidModelOption, "config: experiment.model.tag is required")
	}
	switch e.Evaluation.Mode {
	case ModeSplit, ModeCV, ModeSweep:
	default:
		return errors.Newf("config: unknown evaluation mode %q (use split, cv or sweep)", e.Evaluation.Mode)
	}
	switch e.Normalization {
	case preprocessing.MinMax, preprocessing.ZScore:
	default:
		return errors.Newf("config: unknown normalization %q (use minmax or zscore)", e.Normalization)
	}
	return nil
}

func (c *Config) PreprocessingOptions() preprocessing.Options {
	return preprocessing.Options{
		Normalization: c.Experiment.Normalization,
		Balance:       c.Experiment.Balance,
	}
}
