package evaluation

import (
	"math"
	"strconv"
)

// Result aggregates one evaluation run. Precision and Recall are keyed by
// class index and fall back to 0 when their denominator is 0. Confusion is
// indexed [actual][predicted].
type Result struct {
	Instances  int
	Correct    int
	Accuracy   float64
	Precision  map[int]float64
	Recall     map[int]float64
	Confusion  [][]int
	ClassNames []string
}

func newConfusion(numClasses int) [][]int {
	matrix := make([][]int, numClasses)
	for i := range matrix {
		matrix[i] = make([]int, numClasses)
	}
	return matrix
}

// accumulate adds one (actual, predicted) pair per instance. Labels outside
// the matrix are ignored.
func accumulate(matrix [][]int, yTrue, yPred []int) {
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t >= 0 && t < len(matrix) && p >= 0 && p < len(matrix) {
			matrix[t][p]++
		}
	}
}

// NewResult derives every metric from a confusion matrix.
func NewResult(confusion [][]int, classNames []string) *Result {
	res := &Result{
		Precision:  make(map[int]float64, len(confusion)),
		Recall:     make(map[int]float64, len(confusion)),
		Confusion:  confusion,
		ClassNames: classNames,
	}

	for i := range confusion {
		tp := confusion[i][i]
		fp := 0
		fn := 0

		for j := range confusion {
			res.Instances += confusion[i][j]
			if j != i {
				fp += confusion[j][i]
				fn += confusion[i][j]
			}
		}

		res.Correct += tp
		res.Precision[i] = safeDivide(float64(tp), float64(tp+fp))
		res.Recall[i] = safeDivide(float64(tp), float64(tp+fn))
	}

	res.Accuracy = 100 * safeDivide(float64(res.Correct), float64(res.Instances))
	return res
}

// NumClasses is the side length of the confusion matrix.
func (r *Result) NumClasses() int {
	return len(r.Confusion)
}

// Incorrect counts misclassified test instances.
func (r *Result) Incorrect() int {
	return r.Instances - r.Correct
}

// MeanPrecision is the unweighted mean over all classes, empty ones included.
func (r *Result) MeanPrecision() float64 {
	return mean(r.Precision, r.NumClasses())
}

// MeanRecall is the unweighted mean over all classes, empty ones included.
func (r *Result) MeanRecall() float64 {
	return mean(r.Recall, r.NumClasses())
}

// F1 is the harmonic mean of precision and recall for class, 0 when both are 0.
func (r *Result) F1(class int) float64 {
	p, rc := r.Precision[class], r.Recall[class]
	return safeDivide(2*p*rc, p+rc)
}

// Kappa is Cohen's kappa of the confusion matrix.
func (r *Result) Kappa() float64 {
	n := float64(r.Instances)
	if n == 0 {
		return 0
	}

	expected := 0.0
	for i := range r.Confusion {
		row, col := 0, 0
		for j := range r.Confusion {
			row += r.Confusion[i][j]
			col += r.Confusion[j][i]
		}
		expected += float64(row) * float64(col)
	}
	expected /= n * n
	observed := float64(r.Correct) / n

	return safeDivide(observed-expected, 1-expected)
}

// ClassName falls back to the numeric index when names are missing.
func (r *Result) ClassName(class int) string {
	if class >= 0 && class < len(r.ClassNames) {
		return r.ClassNames[class]
	}
	return strconv.Itoa(class)
}

func mean(values map[int]float64, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for c := 0; c < n; c++ {
		sum += values[c]
	}
	return sum / float64(n)
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0.0
	}
	return result
}
