package models

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// KNN is an instance-based learner that votes among the K nearest training
// instances under Euclidean distance.
type KNN struct {
	BaseModel
	K      int
	XTrain [][]float64
	yTrain []int
}

func NewKNN(k int) *KNN {
	if k < 1 {
		k = 1
	}

	return &KNN{
		K: k,
		BaseModel: BaseModel{
			Name:       "KNN",
			Params:     map[string]any{"k": k},
			ParamOrder: []string{"k"},
		},
	}
}

func (knn *KNN) Fit(X [][]decimal.Decimal, y []int) error {
	if err := checkFit(knn.Name, X, y); err != nil {
		return err
	}

	knn.XTrain = toFloat(X)
	knn.yTrain = make([]int, len(y))
	copy(knn.yTrain, y)

	knn.Classes = ExtractClasses(y)
	return nil
}

func (knn *KNN) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))
	if len(knn.Classes) == 0 {
		return predictions
	}

	for i, sample := range toFloat(X) {
		predictions[i] = knn.majorityVote(knn.findNeighbors(sample))
	}

	return predictions
}

// findNeighbors returns the indices of the K closest training instances.
// Equal distances keep training order.
func (knn *KNN) findNeighbors(sample []float64) []int {
	type neighbor struct {
		index    int
		distance float64
	}

	neighbors := make([]neighbor, len(knn.XTrain))
	for i, trainSample := range knn.XTrain {
		neighbors[i] = neighbor{index: i, distance: euclidean(sample, trainSample)}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].distance < neighbors[j].distance
	})

	k := knn.K
	if k > len(neighbors) {
		k = len(neighbors)
	}

	kNeighbors := make([]int, k)
	for i := 0; i < k; i++ {
		kNeighbors[i] = neighbors[i].index
	}

	return kNeighbors
}

func (knn *KNN) majorityVote(neighbors []int) int {
	votes := make(map[int]float64)
	for _, idx := range neighbors {
		votes[knn.yTrain[idx]]++
	}
	return argmaxVote(votes, knn.Classes)
}

func (knn *KNN) Describe() string {
	desc := knn.describeParams()
	if knn.XTrain == nil {
		return desc
	}
	return fmt.Sprintf("%s\nStored instances: %d", desc, len(knn.XTrain))
}

func (knn *KNN) Clone() Model {
	return NewKNN(knn.K)
}

func (knn *KNN) Reset() {
	knn.XTrain = nil
	knn.yTrain = nil
	knn.Classes = nil
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
