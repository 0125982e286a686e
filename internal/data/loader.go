package data

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"mlexperiment/internal/errors"
	"mlexperiment/internal/logging"
)

type Loader struct {
	logger    zerolog.Logger
	validator *DataValidator
}

func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{
		logger:    logging.Component(logger, "loader"),
		validator: NewDataValidator(),
	}
}

// Load reads a CSV or ARFF file chosen by extension. When the file does not
// declare a class attribute the last attribute becomes the class.
func (l *Loader) Load(path string) (*Dataset, error) {
	var (
		ds  *Dataset
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		ds, err = NewCSVReader(path, l.logger).LoadDataset()
	case ".arff":
		ds, err = NewARFFReader(path, l.logger).LoadDataset()
	default:
		return nil, errors.UnsupportedFormat(path)
	}
	if err != nil {
		return nil, err
	}

	if ds.ClassIndex < 0 {
		if err := ds.SetClassIndex(-1); err != nil {
			return nil, errors.IO(err, path)
		}
	}

	if err := l.validator.ValidateSchema(ds); err != nil {
		return nil, errors.IO(err, path)
	}

	l.logger.Info().
		Str("file", path).
		Int(logging.SamplesKey, ds.NumInstances()).
		Int(logging.AttributesKey, ds.NumAttributes()).
		Int(logging.ClassesKey, ds.NumClasses()).
		Str("class", ds.ClassAttribute().Name).
		Msg("dataset loaded")

	return ds, nil
}

// Load reads path with a silent loader.
func Load(path string) (*Dataset, error) {
	return NewLoader(logging.Nop()).Load(path)
}
