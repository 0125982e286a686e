package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Model is the backend capability set the pipeline relies on.
type Model interface {
	Fit(X [][]decimal.Decimal, y []int) error
	Predict(X [][]decimal.Decimal) []int
	GetName() string
	GetParams() map[string]any
	GetClasses() []int
	// Describe returns the configuration and, once fitted, a short summary
	// of the trained model.
	Describe() string
	// Clone returns an unfitted model with the same hyperparameters.
	Clone() Model
	// Reset drops the fitted state and keeps the hyperparameters.
	Reset()
}

type BaseModel struct {
	Name       string
	Params     map[string]any
	ParamOrder []string
	Classes    []int
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

func (bm *BaseModel) GetClasses() []int {
	return bm.Classes
}

func (bm *BaseModel) describeParams() string {
	parts := make([]string, 0, len(bm.ParamOrder))
	for _, key := range bm.ParamOrder {
		parts = append(parts, fmt.Sprintf("%s=%v", key, bm.Params[key]))
	}
	return fmt.Sprintf("%s (%s)", bm.Name, strings.Join(parts, ", "))
}

// ExtractClasses returns the distinct labels of y in ascending order.
func ExtractClasses(y []int) []int {
	classMap := make(map[int]bool)
	for _, label := range y {
		classMap[label] = true
	}

	classes := make([]int, 0, len(classMap))
	for class := range classMap {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	return classes
}

// argmaxVote returns the class with the highest score; ties go to the
// smallest class index.
func argmaxVote(scores map[int]float64, classes []int) int {
	best := classes[0]
	bestScore := scores[best]
	for _, class := range classes[1:] {
		if scores[class] > bestScore {
			best = class
			bestScore = scores[class]
		}
	}
	return best
}

func toFloat(X [][]decimal.Decimal) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = v.InexactFloat64()
		}
	}
	return out
}

func checkFit(name string, X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("%s: no training instances", name)
	}
	if len(X) != len(y) {
		return fmt.Errorf("%s: %d rows but %d labels", name, len(X), len(y))
	}
	return nil
}
