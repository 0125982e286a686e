package models

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"

	"mlexperiment/internal/errors"
)

const (
	rbfKMeansIter = 100
	rbfRidge      = 0.01
	rbfEpochs     = 1000
)

// RBFNetwork places HiddenUnits Gaussian basis functions on k-means centers
// and fits a linear output layer with a bias on one-hot class targets. The
// output layer is solved as regularized least squares, or trained by batch
// gradient descent when UseGradientDescent is set.
type RBFNetwork struct {
	BaseModel
	HiddenUnits        int
	Seed               int
	UseGradientDescent bool
	Centers            [][]float64
	Widths             []float64
	Output             *mat.Dense
}

func NewRBFNetwork(hiddenUnits, seed int, useGradientDescent bool) *RBFNetwork {
	if hiddenUnits < 1 {
		hiddenUnits = 1
	}

	return &RBFNetwork{
		HiddenUnits:        hiddenUnits,
		Seed:               seed,
		UseGradientDescent: useGradientDescent,
		BaseModel: BaseModel{
			Name: "RBFNetwork",
			Params: map[string]any{
				"hiddenUnits":        hiddenUnits,
				"seed":               seed,
				"useGradientDescent": useGradientDescent,
			},
			ParamOrder: []string{"hiddenUnits", "seed", "useGradientDescent"},
		},
	}
}

func (rb *RBFNetwork) Fit(X [][]decimal.Decimal, y []int) error {
	if err := checkFit(rb.Name, X, y); err != nil {
		return err
	}

	rb.Classes = ExtractClasses(y)
	Xf := toFloat(X)

	rb.Centers, rb.Widths = kMeans(Xf, rb.HiddenUnits, rand.New(rand.NewSource(int64(rb.Seed))))

	phi := rb.design(Xf)
	targets := mat.NewDense(len(y), len(rb.Classes), nil)
	column := make(map[int]int, len(rb.Classes))
	for c, class := range rb.Classes {
		column[class] = c
	}
	for i, label := range y {
		targets.Set(i, column[label], 1)
	}

	if rb.UseGradientDescent {
		rb.Output = gradientDescent(phi, targets)
		return nil
	}

	out, err := ridge(phi, targets)
	if err != nil {
		rb.Reset()
		return errors.Wrapf(err, "%s: solve output layer", rb.Name)
	}
	rb.Output = out
	return nil
}

// design returns the activation matrix with a trailing bias column.
func (rb *RBFNetwork) design(X [][]float64) *mat.Dense {
	h := len(rb.Centers)
	phi := mat.NewDense(len(X), h+1, nil)
	for i, sample := range X {
		for j, center := range rb.Centers {
			d := euclidean(sample, center)
			phi.Set(i, j, math.Exp(-d*d/(2*rb.Widths[j]*rb.Widths[j])))
		}
		phi.Set(i, h, 1)
	}
	return phi
}

func ridge(phi, targets *mat.Dense) (*mat.Dense, error) {
	_, cols := phi.Dims()

	var gram mat.Dense
	gram.Mul(phi.T(), phi)
	for i := 0; i < cols; i++ {
		gram.Set(i, i, gram.At(i, i)+rbfRidge)
	}

	var rhs mat.Dense
	rhs.Mul(phi.T(), targets)

	var w mat.Dense
	if err := w.Solve(&gram, &rhs); err != nil {
		return nil, err
	}
	return &w, nil
}

func gradientDescent(phi, targets *mat.Dense) *mat.Dense {
	n, cols := phi.Dims()
	_, classes := targets.Dims()
	lr := 1 / float64(cols)

	w := mat.NewDense(cols, classes, nil)
	var pred, residual, grad mat.Dense
	for epoch := 0; epoch < rbfEpochs; epoch++ {
		pred.Mul(phi, w)
		residual.Sub(&pred, targets)
		grad.Mul(phi.T(), &residual)
		grad.Scale(lr/float64(n), &grad)
		w.Sub(w, &grad)
	}
	return w
}

// kMeans runs Lloyd's algorithm from k distinct random instances and
// returns the centers with the RMS distance of their members as width.
// Distance ties go to the lower center index.
func kMeans(X [][]float64, k int, r *rand.Rand) ([][]float64, []float64) {
	n := len(X)
	if k > n {
		k = n
	}

	centers := make([][]float64, k)
	for c, idx := range r.Perm(n)[:k] {
		centers[c] = append([]float64(nil), X[idx]...)
	}

	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < rbfKMeansIter; iter++ {
		changed := false
		for i, sample := range X {
			best, bestDist := 0, math.Inf(1)
			for c, center := range centers {
				if d := euclidean(sample, center); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, len(X[0]))
		}
		for i, sample := range X {
			counts[assign[i]]++
			for j, v := range sample {
				sums[assign[i]][j] += v
			}
		}
		for c := range centers {
			if counts[c] == 0 {
				continue
			}
			for j := range centers[c] {
				centers[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	sq := make([]float64, k)
	counts := make([]int, k)
	for i, sample := range X {
		d := euclidean(sample, centers[assign[i]])
		sq[assign[i]] += d * d
		counts[assign[i]]++
	}
	widths := make([]float64, k)
	for c := range widths {
		widths[c] = 1
		if counts[c] > 0 {
			if w := math.Sqrt(sq[c] / float64(counts[c])); w > 0 {
				widths[c] = w
			}
		}
	}

	return centers, widths
}

func (rb *RBFNetwork) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))
	if rb.Output == nil || len(X) == 0 {
		return predictions
	}

	var scores mat.Dense
	scores.Mul(rb.design(toFloat(X)), rb.Output)

	for i := range predictions {
		votes := make(map[int]float64, len(rb.Classes))
		for c, class := range rb.Classes {
			votes[class] = scores.At(i, c)
		}
		predictions[i] = argmaxVote(votes, rb.Classes)
	}
	return predictions
}

func (rb *RBFNetwork) Describe() string {
	desc := rb.describeParams()
	if rb.Output == nil {
		return desc
	}
	method := "least squares"
	if rb.UseGradientDescent {
		method = "gradient descent"
	}
	return fmt.Sprintf("%s\nBasis functions: %d, output layer: %s", desc, len(rb.Centers), method)
}

func (rb *RBFNetwork) Clone() Model {
	return NewRBFNetwork(rb.HiddenUnits, rb.Seed, rb.UseGradientDescent)
}

func (rb *RBFNetwork) Reset() {
	rb.Centers = nil
	rb.Widths = nil
	rb.Output = nil
	rb.Classes = nil
}
