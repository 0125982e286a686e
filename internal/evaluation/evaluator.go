package evaluation

import (
	"mlexperiment/internal/data"
	"mlexperiment/internal/errors"
	"mlexperiment/internal/models"
)

// TrainFilter rewrites the training side of a split or fold before the
// model is fitted, e.g. class balancing. Test instances never pass through
// a filter, so rows a filter adds cannot be scored.
type TrainFilter func(*data.Dataset) *data.Dataset

// Evaluate fits a clone of model on split.Train and scores every instance of
// split.Test. The handle passed in stays unfitted.
func Evaluate(model models.Model, split *TrainTestSplit, filters ...TrainFilter) (*Result, error) {
	if model == nil {
		return nil, errors.Wrap(errors.ErrClassifierNotConfigured, "evaluate")
	}
	if split == nil || split.Train == nil || split.Train.NumInstances() == 0 {
		return nil, errors.Wrap(errors.ErrTrainDataUnavailable, "evaluate: compute a split first")
	}

	confusion := newConfusion(split.Train.NumClasses())
	if err := fitAndScore(model, split.Train, split.Test, confusion, filters); err != nil {
		return nil, err
	}
	return NewResult(confusion, split.Train.ClassNames()), nil
}

// CrossValidate runs k-fold cross-validation and pools every fold's
// predictions into a single confusion matrix before computing metrics.
func CrossValidate(model models.Model, ds *data.Dataset, k int, seed int64, filters ...TrainFilter) (*Result, error) {
	if model == nil {
		return nil, errors.Wrap(errors.ErrClassifierNotConfigured, "cross-validate")
	}
	if ds == nil || ds.NumInstances() == 0 {
		return nil, errors.Wrap(errors.ErrTrainDataUnavailable, "cross-validate: no instances")
	}

	folds, err := KFold(ds.NumInstances(), k, seed)
	if err != nil {
		return nil, err
	}

	confusion := newConfusion(ds.NumClasses())
	for _, fold := range folds {
		train := ds.Subset(fold.Train(ds.NumInstances()))
		test := ds.Subset(fold.Test)
		if err := fitAndScore(model, train, test, confusion, filters); err != nil {
			return nil, errors.Wrapf(err, "fold %d", fold.Index)
		}
	}

	return NewResult(confusion, ds.ClassNames()), nil
}

func fitAndScore(model models.Model, train, test *data.Dataset, confusion [][]int, filters []TrainFilter) error {
	m := model.Clone()
	for _, filter := range filters {
		train = filter(train)
	}

	XTrain, yTrain := train.Matrix()
	if err := m.Fit(XTrain, yTrain); err != nil {
		return errors.Wrapf(err, "fit %s", m.GetName())
	}

	if test == nil || test.NumInstances() == 0 {
		return nil
	}
	XTest, yTest := test.Matrix()
	accumulate(confusion, yTest, m.Predict(XTest))
	return nil
}
