package experiment

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"mlexperiment/internal/data"
	"mlexperiment/internal/errors"
	"mlexperiment/internal/evaluation"
	"mlexperiment/internal/logging"
	"mlexperiment/internal/models"
	"mlexperiment/internal/preprocessing"
)

// Session is the state of one interactive experiment: the loaded and
// preprocessed dataset, the configured model, the current split and the
// latest results. Loading a dataset drops the split and any trained model.
//
// The stored dataset is normalized only. When balancing is enabled it is
// applied to every training side at evaluation time, so replicated rows
// never reach a test side.
type Session struct {
	logger  zerolog.Logger
	options preprocessing.Options
	seed    int64

	path    string
	raw     *data.Dataset
	dataset *data.Dataset
	scaler  *preprocessing.Scaler

	model   models.Model
	trained models.Model
	split   *evaluation.TrainTestSplit

	lastResult *evaluation.Result
	lastSweep  *evaluation.SweepResult
}

func NewSession(logger zerolog.Logger, opts preprocessing.Options, seed int64) *Session {
	return &Session{
		logger:  logging.Component(logger, "session"),
		options: opts,
		seed:    seed,
	}
}

func (s *Session) Load(path string) error {
	start := time.Now()

	raw, err := data.NewLoader(s.logger).Load(path)
	if err != nil {
		return err
	}
	processed, scaler, err := preprocessing.Prepare(raw, preprocessing.Options{
		Normalization: s.options.Normalization,
	})
	if err != nil {
		return err
	}

	s.path = path
	s.raw = raw
	s.dataset = processed
	s.scaler = scaler
	s.split = nil
	s.dropTrained()
	s.lastResult = nil
	s.lastSweep = nil

	s.logger.Info().
		Str(logging.OperationKey, "load").
		Int(logging.SamplesKey, processed.NumInstances()).
		Ints("class_counts", processed.ClassCounts()).
		Bool("balance", s.options.Balance).
		Int64(logging.DurationKey, time.Since(start).Milliseconds()).
		Msg("dataset preprocessed")
	return nil
}

// Configure builds the model for tag from raw hyperparameters. On failure
// the session is left without a model.
func (s *Session) Configure(tag int, raw []string) error {
	s.model = nil
	s.dropTrained()

	model, err := models.Configure(tag, raw)
	if err != nil {
		var pe *errors.ParamError
		if errors.As(err, &pe) {
			s.logger.Warn().Object("param", pe).Msg("hyperparameter rejected")
		}
		return err
	}

	s.model = model
	s.logger.Info().
		Str(logging.OperationKey, "configure").
		Str(logging.ModelNameKey, model.GetName()).
		Interface("params", model.GetParams()).
		Msg("model configured")
	return nil
}

func (s *Session) Split(trainPercent float64) error {
	if s.dataset == nil {
		return errors.Wrap(errors.ErrTrainDataUnavailable, "split: load a dataset first")
	}

	split, err := evaluation.Split(s.dataset, trainPercent, s.seed)
	if err != nil {
		return err
	}
	s.split = split

	s.logger.Info().
		Str(logging.OperationKey, "split").
		Float64("train_percent", trainPercent).
		Int("train", split.Train.NumInstances()).
		Int("test", split.Test.NumInstances()).
		Msg("train/test split computed")
	return nil
}

func (s *Session) Evaluate() (*evaluation.Result, error) {
	start := time.Now()
	res, err := evaluation.Evaluate(s.model, s.split, s.trainFilters()...)
	if err != nil {
		return nil, err
	}
	s.lastResult = res
	s.logResult("evaluate", res, start)
	return res, nil
}

func (s *Session) CrossValidate(k int) (*evaluation.Result, error) {
	if s.dataset == nil {
		return nil, errors.Wrap(errors.ErrTrainDataUnavailable, "cross-validate: load a dataset first")
	}

	start := time.Now()
	res, err := evaluation.CrossValidate(s.model, s.dataset, k, s.seed, s.trainFilters()...)
	if err != nil {
		return nil, err
	}
	s.lastResult = res
	s.logResult("cross_validate", res, start, k)
	return res, nil
}

func (s *Session) Sweep(ks []int) (*evaluation.SweepResult, error) {
	if len(ks) > 0 && s.dataset == nil {
		return nil, errors.Wrap(errors.ErrTrainDataUnavailable, "sweep: load a dataset first")
	}

	start := time.Now()
	res, err := evaluation.Sweep(s.model, s.dataset, ks, s.seed, s.trainFilters()...)
	if err != nil {
		return nil, err
	}
	s.lastSweep = res

	s.logger.Info().
		Str(logging.OperationKey, "sweep").
		Ints("ks", ks).
		Int("best_k", res.BestK).
		Int("worst_k", res.WorstK).
		Float64(logging.AccuracyKey, res.MeanAccuracy).
		Int64(logging.DurationKey, time.Since(start).Milliseconds()).
		Msg("sweep finished")
	return res, nil
}

// trainFilters returns the class balancer when balancing is enabled.
func (s *Session) trainFilters() []evaluation.TrainFilter {
	if !s.options.Balance {
		return nil
	}
	return []evaluation.TrainFilter{preprocessing.NewClassBalancer().Balance}
}

func (s *Session) dropTrained() {
	if s.trained != nil {
		s.trained.Reset()
		s.trained = nil
	}
}

// Describe fits the model on the whole preprocessed dataset and returns
// its description. The fitted model is kept for Classify.
func (s *Session) Describe() (string, error) {
	trained, err := s.train()
	if err != nil {
		return "", err
	}
	return trained.Describe(), nil
}

// Classify predicts the class of one instance given as one raw value per
// non-class attribute, in attribute order.
func (s *Session) Classify(values []string) (string, error) {
	trained, err := s.train()
	if err != nil {
		return "", err
	}

	want := s.raw.NumAttributes() - 1
	if len(values) != want {
		return "", errors.Newf("classify: got %d values, need %d", len(values), want)
	}

	row := make([]decimal.Decimal, s.raw.NumAttributes())
	next := 0
	for j, attr := range s.raw.Attributes {
		if j == s.raw.ClassIndex {
			continue
		}
		v, err := parseValue(attr, values[next])
		if err != nil {
			return "", err
		}
		row[j] = v
		next++
	}

	instance := data.New(s.raw.Relation, s.raw.Attributes)
	instance.ClassIndex = s.raw.ClassIndex
	instance.Rows = [][]decimal.Decimal{row}

	scaled, err := s.scaler.Transform(instance)
	if err != nil {
		return "", errors.Wrap(err, "classify")
	}

	label := trained.Predict([][]decimal.Decimal{scaled.Features(0)})
	names, err := s.dataset.ClassAttribute().Encoder().InverseTransform(label)
	if err != nil {
		return "", errors.Wrap(err, "classify")
	}
	return names[0], nil
}

func parseValue(attr data.Attribute, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if attr.IsNominal() {
		codes, err := attr.Encoder().Transform([]string{value})
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "classify: attribute %s", attr.Name)
		}
		return decimal.NewFromInt(int64(codes[0])), nil
	}

	v, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "classify: attribute %s", attr.Name)
	}
	return v, nil
}

func (s *Session) train() (models.Model, error) {
	if s.model == nil {
		return nil, errors.Wrap(errors.ErrClassifierNotConfigured, "train")
	}
	if s.dataset == nil {
		return nil, errors.Wrap(errors.ErrTrainDataUnavailable, "train: load a dataset first")
	}
	if s.trained != nil {
		return s.trained, nil
	}

	train := s.dataset
	for _, filter := range s.trainFilters() {
		train = filter(train)
	}

	trained := s.model.Clone()
	X, y := train.Matrix()
	if err := trained.Fit(X, y); err != nil {
		return nil, errors.Wrapf(err, "fit %s", trained.GetName())
	}
	s.trained = trained
	return trained, nil
}

func (s *Session) Info() (data.Stats, error) {
	if s.dataset == nil {
		return data.Stats{}, errors.Wrap(errors.ErrTrainDataUnavailable, "info: load a dataset first")
	}
	return data.NewDataValidator().GetDatasetStats(s.dataset), nil
}

func (s *Session) logResult(op string, res *evaluation.Result, start time.Time, folds ...int) {
	event := s.logger.Info().
		Str(logging.OperationKey, op).
		Str(logging.ModelNameKey, s.model.GetName()).
		Int(logging.SamplesKey, res.Instances).
		Float64(logging.AccuracyKey, res.Accuracy).
		Int64(logging.DurationKey, time.Since(start).Milliseconds())
	if len(folds) > 0 {
		event = event.Int(logging.FoldsKey, folds[0])
	}
	event.Msg("evaluation finished")
}

func (s *Session) Path() string { return s.path }
func (s *Session) Dataset() *data.Dataset { return s.dataset }
func (s *Session) Model() models.Model { return s.model }
func (s *Session) CurrentSplit() *evaluation.TrainTestSplit { return s.split }
func (s *Session) LastResult() *evaluation.Result { return s.lastResult }
func (s *Session) LastSweep() *evaluation.SweepResult { return s.lastSweep }
