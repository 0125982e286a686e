package models

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
)

const (
	smoTolerance = 1e-3
	smoEpsilon   = 1e-5
	smoMaxPasses = 10
	smoMaxIter   = 10000
)

// binaryMachine separates classes Pos (+1) and Neg (-1). Coef holds
// alpha*y for each support vector.
type binaryMachine struct {
	Pos, Neg int
	Support  [][]float64
	Coef     []float64
	Bias     float64
}

func (m *binaryMachine) decision(x []float64, exponent float64) float64 {
	f := m.Bias
	for i, sv := range m.Support {
		f += m.Coef[i] * polyKernel(sv, x, exponent)
	}
	return f
}

// SVM trains one soft-margin machine per class pair with sequential minimal
// optimization on a polynomial kernel (x.y)^p, then predicts by pairwise
// voting.
type SVM struct {
	BaseModel
	Cost           float64
	KernelExponent float64
	Seed           int64
	Machines       []*binaryMachine
}

func NewSVM(cost, exponent float64) *SVM {
	return &SVM{
		Cost:           cost,
		KernelExponent: exponent,
		Seed:           1,
		BaseModel: BaseModel{
			Name: "SVM",
			Params: map[string]any{
				"cost":           cost,
				"kernelExponent": exponent,
			},
			ParamOrder: []string{"cost", "kernelExponent"},
		},
	}
}

func (s *SVM) Fit(X [][]decimal.Decimal, y []int) error {
	if err := checkFit(s.Name, X, y); err != nil {
		return err
	}

	s.Classes = ExtractClasses(y)
	Xf := toFloat(X)
	r := rand.New(rand.NewSource(s.Seed))

	s.Machines = nil
	for a := 0; a < len(s.Classes); a++ {
		for b := a + 1; b < len(s.Classes); b++ {
			s.Machines = append(s.Machines, s.trainPair(Xf, y, s.Classes[a], s.Classes[b], r))
		}
	}
	return nil
}

func (s *SVM) trainPair(X [][]float64, y []int, pos, neg int, r *rand.Rand) *binaryMachine {
	var xs [][]float64
	var ys []float64
	for i, label := range y {
		switch label {
		case pos:
			xs = append(xs, X[i])
			ys = append(ys, 1)
		case neg:
			xs = append(xs, X[i])
			ys = append(ys, -1)
		}
	}

	n := len(xs)
	kernel := make([][]float64, n)
	for i := range kernel {
		kernel[i] = make([]float64, n)
		for j := 0; j <= i; j++ {
			kernel[i][j] = polyKernel(xs[i], xs[j], s.KernelExponent)
			kernel[j][i] = kernel[i][j]
		}
	}

	alpha := make([]float64, n)
	b := 0.0
	f := func(i int) float64 {
		sum := b
		for k := 0; k < n; k++ {
			if alpha[k] != 0 {
				sum += alpha[k] * ys[k] * kernel[k][i]
			}
		}
		return sum
	}

	C := s.Cost
	for passes, iter := 0, 0; passes < smoMaxPasses && iter < smoMaxIter && n > 1; iter++ {
		changed := 0
		for i := 0; i < n; i++ {
			Ei := f(i) - ys[i]
			if !((ys[i]*Ei < -smoTolerance && alpha[i] < C) || (ys[i]*Ei > smoTolerance && alpha[i] > 0)) {
				continue
			}

			j := r.Intn(n - 1)
			if j >= i {
				j++
			}
			Ej := f(j) - ys[j]

			ai, aj := alpha[i], alpha[j]
			var L, H float64
			if ys[i] != ys[j] {
				L, H = math.Max(0, aj-ai), math.Min(C, C+aj-ai)
			} else {
				L, H = math.Max(0, ai+aj-C), math.Min(C, ai+aj)
			}
			if L == H {
				continue
			}

			eta := 2*kernel[i][j] - kernel[i][i] - kernel[j][j]
			if eta >= 0 {
				continue
			}

			alpha[j] = math.Min(H, math.Max(L, aj-ys[j]*(Ei-Ej)/eta))
			if math.Abs(alpha[j]-aj) < smoEpsilon {
				alpha[j] = aj
				continue
			}
			alpha[i] = ai + ys[i]*ys[j]*(aj-alpha[j])

			b1 := b - Ei - ys[i]*(alpha[i]-ai)*kernel[i][i] - ys[j]*(alpha[j]-aj)*kernel[i][j]
			b2 := b - Ej - ys[i]*(alpha[i]-ai)*kernel[i][j] - ys[j]*(alpha[j]-aj)*kernel[j][j]
			switch {
			case alpha[i] > 0 && alpha[i] < C:
				b = b1
			case alpha[j] > 0 && alpha[j] < C:
				b = b2
			default:
				b = (b1 + b2) / 2
			}
			changed++
		}

		if changed == 0 {
			passes++
		} else {
			passes = 0
		}
	}

	m := &binaryMachine{Pos: pos, Neg: neg, Bias: b}
	for i, a := range alpha {
		if a > 0 {
			m.Support = append(m.Support, xs[i])
			m.Coef = append(m.Coef, a*ys[i])
		}
	}
	if len(m.Support) == 0 && n > 0 {
		// No support vectors: side with the first instance of the pair.
		if ys[0] > 0 {
			m.Bias = 1
		} else {
			m.Bias = -1
		}
	}
	return m
}

func (s *SVM) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))
	if len(s.Classes) == 0 {
		return predictions
	}

	for i, sample := range toFloat(X) {
		if len(s.Machines) == 0 {
			predictions[i] = s.Classes[0]
			continue
		}
		votes := make(map[int]float64)
		for _, m := range s.Machines {
			if m.decision(sample, s.KernelExponent) >= 0 {
				votes[m.Pos]++
			} else {
				votes[m.Neg]++
			}
		}
		predictions[i] = argmaxVote(votes, s.Classes)
	}

	return predictions
}

func (s *SVM) Describe() string {
	desc := s.describeParams()
	if len(s.Classes) == 0 {
		return desc
	}

	support := 0
	for _, m := range s.Machines {
		support += len(m.Support)
	}
	return fmt.Sprintf("%s\nBinary machines: %d, support vectors: %d", desc, len(s.Machines), support)
}

func (s *SVM) Clone() Model {
	return NewSVM(s.Cost, s.KernelExponent)
}

func (s *SVM) Reset() {
	s.Machines = nil
	s.Classes = nil
}

// polyKernel keeps the sign of a negative dot product for fractional
// exponents, where a plain power would be NaN.
func polyKernel(a, b []float64, exponent float64) float64 {
	dot := 0.0
	for i := range a {
		dot += a[i] * b[i]
	}
	if exponent == 1 {
		return dot
	}
	if dot < 0 && exponent != math.Trunc(exponent) {
		return -math.Pow(-dot, exponent)
	}
	return math.Pow(dot, exponent)
}
