package preprocessing

import (
	"mlexperiment/internal/data"
	"mlexperiment/internal/errors"
)

type Options struct {
	Normalization string
	Balance       bool
}

func DefaultOptions() Options {
	return Options{Normalization: MinMax, Balance: true}
}

// Process normalizes the numeric attributes of ds and then balances its
// classes. The input is left untouched; attribute count and class index of
// the result match the input.
func Process(ds *data.Dataset, opts Options) (*data.Dataset, error) {
	out, _, err := Prepare(ds, opts)
	return out, err
}

// Prepare is Process that also returns the fitted scaler, for rescaling
// instances that arrive after the dataset.
func Prepare(ds *data.Dataset, opts Options) (*data.Dataset, *Scaler, error) {
	if ds == nil || ds.NumInstances() == 0 {
		return nil, nil, errors.Filter("dataset has no instances")
	}
	if ds.ClassIndex < 0 || ds.ClassIndex >= ds.NumAttributes() {
		return nil, nil, errors.Filter("class index %d is not set", ds.ClassIndex)
	}
	if !ds.ClassAttribute().IsNominal() {
		return nil, nil, errors.Filter("class attribute %s is %s, need nominal", ds.ClassAttribute().Name, ds.ClassAttribute().Kind)
	}

	scaler := NewScaler(opts.Normalization)
	normalized, err := scaler.FitTransform(ds)
	if err != nil {
		return nil, nil, errors.Filter("normalize: %v", err)
	}

	if !opts.Balance {
		return normalized, scaler, nil
	}
	return NewClassBalancer().Balance(normalized), scaler, nil
}
