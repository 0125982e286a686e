package evaluation

import (
	"mlexperiment/internal/data"
	"mlexperiment/internal/errors"
	"mlexperiment/internal/models"
)

// SweepRow is the cross-validation outcome for one fold count.
type SweepRow struct {
	K             int
	Accuracy      float64
	MeanPrecision float64
	MeanRecall    float64
}

// SweepResult is built once by Sweep and not modified afterwards.
type SweepResult struct {
	Rows          []SweepRow
	BestK         int
	BestAccuracy  float64
	WorstK        int
	WorstAccuracy float64
	MeanAccuracy  float64
}

// Sweep cross-validates model once per entry of ks, in order and keeping
// duplicates. Every run uses its own generator seeded with seed, and filters
// apply to each fold's training side.
func Sweep(model models.Model, ds *data.Dataset, ks []int, seed int64, filters ...TrainFilter) (*SweepResult, error) {
	if len(ks) == 0 {
		return nil, errors.Wrap(errors.ErrEmptySweep, "sweep")
	}

	rows := make([]SweepRow, 0, len(ks))
	for _, k := range ks {
		res, err := CrossValidate(model, ds, k, seed, filters...)
		if err != nil {
			return nil, errors.Wrapf(err, "sweep k=%d", k)
		}
		rows = append(rows, SweepRow{
			K:             k,
			Accuracy:      res.Accuracy,
			MeanPrecision: res.MeanPrecision(),
			MeanRecall:    res.MeanRecall(),
		})
	}

	return summarize(rows)
}

// summarize picks best and worst rows with strict comparisons, so the first
// occurrence wins a tie.
func summarize(rows []SweepRow) (*SweepResult, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(errors.ErrEmptySweep, "sweep")
	}

	res := &SweepResult{
		Rows:          rows,
		BestK:         rows[0].K,
		BestAccuracy:  rows[0].Accuracy,
		WorstK:        rows[0].K,
		WorstAccuracy: rows[0].Accuracy,
	}

	sum := 0.0
	for _, row := range rows {
		if row.Accuracy > res.BestAccuracy {
			res.BestK, res.BestAccuracy = row.K, row.Accuracy
		}
		if row.Accuracy < res.WorstAccuracy {
			res.WorstK, res.WorstAccuracy = row.K, row.Accuracy
		}
		sum += row.Accuracy
	}
	res.MeanAccuracy = sum / float64(len(rows))

	return res, nil
}

// Accuracies returns the accuracy column in row order.
func (s *SweepResult) Accuracies() []float64 {
	out := make([]float64, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = row.Accuracy
	}
	return out
}
