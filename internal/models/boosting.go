package models

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"
)

// Boosting is AdaBoost.M1 over decision stumps. Each round fits a stump on a
// weighted resample of the training set and reweights the instances it got
// right by beta = e/(1-e).
type Boosting struct {
	BaseModel
	Iterations int
	Seed       int64
	Stumps     []*DecisionTree
	Weights    []float64
}

func NewBoosting(iterations int) *Boosting {
	if iterations < 1 {
		iterations = 1
	}

	return &Boosting{
		Iterations: iterations,
		Seed:       1,
		BaseModel: BaseModel{
			Name:       "Boosting",
			Params:     map[string]any{"iterations": iterations},
			ParamOrder: []string{"iterations"},
		},
	}
}

func (bo *Boosting) Fit(X [][]decimal.Decimal, y []int) error {
	if err := checkFit(bo.Name, X, y); err != nil {
		return err
	}

	bo.Classes = ExtractClasses(y)
	bo.Stumps = nil
	bo.Weights = nil

	Xf := toFloat(X)
	n := len(Xf)
	r := rand.New(rand.NewSource(bo.Seed))

	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}

	for round := 0; round < bo.Iterations; round++ {
		Xs, ys := resample(Xf, y, w, r)
		stump := newUnprunedTree("DecisionStump", 1, 1)
		stump.fitFloat(Xs, ys)

		wrong := make([]bool, n)
		e := 0.0
		for i, sample := range Xf {
			if stump.predictSample(sample, stump.Root) != y[i] {
				wrong[i] = true
				e += w[i]
			}
		}

		if e == 0 || e >= 0.5 {
			if len(bo.Stumps) == 0 {
				bo.Stumps = append(bo.Stumps, stump)
				bo.Weights = append(bo.Weights, 1)
			}
			break
		}

		beta := e / (1 - e)
		bo.Stumps = append(bo.Stumps, stump)
		bo.Weights = append(bo.Weights, math.Log(1/beta))

		total := 0.0
		for i := range w {
			if !wrong[i] {
				w[i] *= beta
			}
			total += w[i]
		}
		for i := range w {
			w[i] /= total
		}
	}
	return nil
}

// resample draws n instances with replacement in proportion to w.
func resample(X [][]float64, y []int, w []float64, r *rand.Rand) ([][]float64, []int) {
	n := len(X)
	cumulative := make([]float64, n)
	sum := 0.0
	for i, wi := range w {
		sum += wi
		cumulative[i] = sum
	}

	Xs := make([][]float64, n)
	ys := make([]int, n)
	for i := 0; i < n; i++ {
		idx := sort.SearchFloat64s(cumulative, r.Float64()*sum)
		if idx >= n {
			idx = n - 1
		}
		Xs[i] = X[idx]
		ys[i] = y[idx]
	}
	return Xs, ys
}

func (bo *Boosting) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))
	if len(bo.Stumps) == 0 {
		return predictions
	}

	for i, sample := range toFloat(X) {
		votes := make(map[int]float64)
		for j, stump := range bo.Stumps {
			votes[stump.predictSample(sample, stump.Root)] += bo.Weights[j]
		}
		predictions[i] = argmaxVote(votes, bo.Classes)
	}

	return predictions
}

func (bo *Boosting) Describe() string {
	desc := bo.describeParams()
	if len(bo.Stumps) == 0 {
		return desc
	}
	return fmt.Sprintf("%s\nNumber of performed iterations: %d", desc, len(bo.Stumps))
}

func (bo *Boosting) Clone() Model {
	return NewBoosting(bo.Iterations)
}

func (bo *Boosting) Reset() {
	bo.Stumps = nil
	bo.Weights = nil
	bo.Classes = nil
}
