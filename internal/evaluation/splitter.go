package evaluation

import (
	"math"
	"math/rand"

	"mlexperiment/internal/data"
	"mlexperiment/internal/errors"
)

// TrainTestSplit holds two disjoint views of one dataset whose sizes sum to
// the source size.
type TrainTestSplit struct {
	Train *data.Dataset
	Test  *data.Dataset
}

// Fold is one group of test indices in a k-fold partition. The training
// indices are every other index of the dataset.
type Fold struct {
	Index int
	Test  []int
}

// Train returns the indices of the n-instance dataset not in the fold, in
// ascending order.
func (f Fold) Train(n int) []int {
	inTest := make(map[int]bool, len(f.Test))
	for _, idx := range f.Test {
		inTest[idx] = true
	}

	train := make([]int, 0, n-len(f.Test))
	for i := 0; i < n; i++ {
		if !inTest[i] {
			train = append(train, i)
		}
	}
	return train
}

// Split shuffles the instance order with a generator seeded by seed and cuts
// it at round(n * trainPercent / 100). The first segment is train. A cut
// outside [0, n] is clamped, so a percent above 100 yields an empty test set
// and a negative one an empty train set.
func Split(ds *data.Dataset, trainPercent float64, seed int64) (*TrainTestSplit, error) {
	if ds == nil {
		return nil, errors.Wrap(errors.ErrTrainDataUnavailable, "no dataset loaded")
	}

	n := ds.NumInstances()
	indices := permutation(n, seed)

	cut := int(math.Floor(float64(n)*trainPercent/100 + 0.5))
	if cut < 0 {
		cut = 0
	}
	if cut > n {
		cut = n
	}

	return &TrainTestSplit{
		Train: ds.Subset(indices[:cut]),
		Test:  ds.Subset(indices[cut:]),
	}, nil
}

// KFold partitions n indices into k folds after a seeded shuffle. The first
// n mod k folds hold one extra index.
func KFold(n, k int, seed int64) ([]Fold, error) {
	if k < 2 || k > n {
		return nil, errors.Wrapf(errors.ErrInvalidFolds, "%d folds for %d instances (must be between 2 and %d)", k, n, n)
	}

	indices := permutation(n, seed)

	folds := make([]Fold, k)
	foldSize := n / k
	extra := n % k

	start := 0
	for i := 0; i < k; i++ {
		size := foldSize
		if i < extra {
			size++
		}

		folds[i] = Fold{Index: i, Test: make([]int, size)}
		copy(folds[i].Test, indices[start:start+size])
		start += size
	}

	return folds, nil
}

func permutation(n int, seed int64) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	return indices
}
