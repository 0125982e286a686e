package experiment

import (
	"time"

	"github.com/rs/zerolog"

	"mlexperiment/internal/evaluation"
	"mlexperiment/internal/logging"
	"mlexperiment/internal/models"
	"mlexperiment/internal/report"
)

// Runner executes one configured experiment end to end.
type Runner struct {
	Config *Config
	logger zerolog.Logger
}

func NewRunner(cfg *Config, logger zerolog.Logger) *Runner {
	return &Runner{
		Config: cfg,
		logger: logging.Component(logger, "runner"),
	}
}

// Outcome is what one Run produced. Result is set for split and cv modes,
// Sweep for sweep mode.
type Outcome struct {
	Dataset     string
	Mode        string
	Model       string
	Description string
	Params      map[string]any
	Setting     string
	Result      *evaluation.Result
	Sweep       *evaluation.SweepResult
	Duration    time.Duration
}

// Report renders the outcome the way the interactive commands do.
func (o *Outcome) Report() string {
	if o.Sweep != nil {
		return report.SweepTable(o.Sweep)
	}
	if o.Result != nil {
		return report.Evaluation(o.Result)
	}
	return ""
}

func (r *Runner) Run() (*Outcome, error) {
	if err := r.Config.Validate(); err != nil {
		return nil, err
	}

	e := r.Config.Experiment
	start := time.Now()

	session := NewSession(r.logger, r.Config.PreprocessingOptions(), e.Seed)
	if err := session.Load(e.Dataset); err != nil {
		return nil, err
	}

	tag, err := models.ParseTag(e.Model.Tag)
	if err != nil {
		return nil, err
	}
	if err := session.Configure(int(tag), e.Model.Params); err != nil {
		return nil, err
	}

	out := &Outcome{
		Dataset:     e.Dataset,
		Mode:        e.Evaluation.Mode,
		Model:       session.Model().GetName(),
		Description: session.Model().Describe(),
		Params:      session.Model().GetParams(),
	}

	switch e.Evaluation.Mode {
	case ModeSplit:
		if err := session.Split(e.Evaluation.TrainPercent); err != nil {
			return nil, err
		}
		out.Setting = formatPercent(e.Evaluation.TrainPercent)
		out.Result, err = session.Evaluate()
	case ModeCV:
		out.Setting = formatFolds(e.Evaluation.Folds)
		out.Result, err = session.CrossValidate(e.Evaluation.Folds)
	case ModeSweep:
		out.Setting = formatSweep(e.Evaluation.Sweep)
		out.Sweep, err = session.Sweep(e.Evaluation.Sweep)
	}
	if err != nil {
		return nil, err
	}

	out.Duration = time.Since(start)
	r.logger.Info().
		Str(logging.OperationKey, "run").
		Str(logging.ModelNameKey, out.Model).
		Str("mode", out.Mode).
		Int64(logging.DurationKey, out.Duration.Milliseconds()).
		Msg("experiment finished")

	return out, nil
}
