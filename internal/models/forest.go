package models

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
)

// RandomForest bags unpruned trees, each grown on a bootstrap sample and a
// random subset of sqrt(features) attributes. Tree i draws from a generator
// seeded with i, so two fits on the same data give the same forest.
type RandomForest struct {
	BaseModel
	NTrees         int
	MaxFeatures    int
	Trees          []*DecisionTree
	FeatureIndices [][]int
}

func NewRandomForest(nTrees int) *RandomForest {
	if nTrees < 1 {
		nTrees = 1
	}

	return &RandomForest{
		NTrees: nTrees,
		BaseModel: BaseModel{
			Name:       "RandomForest",
			Params:     map[string]any{"treeCount": nTrees},
			ParamOrder: []string{"treeCount"},
		},
	}
}

func (rf *RandomForest) Fit(X [][]decimal.Decimal, y []int) error {
	if err := checkFit(rf.Name, X, y); err != nil {
		return err
	}

	rf.Classes = ExtractClasses(y)
	nFeatures := len(X[0])

	rf.MaxFeatures = int(math.Sqrt(float64(nFeatures)))
	if rf.MaxFeatures < 1 {
		rf.MaxFeatures = 1
	}

	rf.Trees = make([]*DecisionTree, rf.NTrees)
	rf.FeatureIndices = make([][]int, rf.NTrees)

	Xf := toFloat(X)
	for i := 0; i < rf.NTrees; i++ {
		rf.Trees[i], rf.FeatureIndices[i] = rf.trainSingleTree(Xf, y, int64(i))
	}
	return nil
}

func (rf *RandomForest) trainSingleTree(X [][]float64, y []int, seed int64) (*DecisionTree, []int) {
	r := rand.New(rand.NewSource(seed))

	n := len(X)
	features := rf.selectRandomFeatures(len(X[0]), r)

	XBoot := make([][]float64, n)
	yBoot := make([]int, n)
	for i := 0; i < n; i++ {
		idx := r.Intn(n)
		XBoot[i] = project(X[idx], features)
		yBoot[i] = y[idx]
	}

	tree := newUnprunedTree("RandomTree", 0, 1)
	tree.fitFloat(XBoot, yBoot)

	return tree, features
}

// selectRandomFeatures is a partial Fisher-Yates shuffle.
func (rf *RandomForest) selectRandomFeatures(nFeatures int, r *rand.Rand) []int {
	features := make([]int, nFeatures)
	for i := range features {
		features[i] = i
	}

	for i := 0; i < rf.MaxFeatures && i < nFeatures; i++ {
		j := i + r.Intn(nFeatures-i)
		features[i], features[j] = features[j], features[i]
	}

	return features[:rf.MaxFeatures]
}

func (rf *RandomForest) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))
	if len(rf.Trees) == 0 {
		return predictions
	}

	for i, sample := range toFloat(X) {
		votes := make(map[int]float64)
		for j, tree := range rf.Trees {
			votes[tree.predictSample(project(sample, rf.FeatureIndices[j]), tree.Root)]++
		}
		predictions[i] = argmaxVote(votes, rf.Classes)
	}

	return predictions
}

func (rf *RandomForest) Describe() string {
	desc := rf.describeParams()
	if len(rf.Trees) == 0 {
		return desc
	}

	leaves := 0
	for _, tree := range rf.Trees {
		l, _ := treeSize(tree.Root)
		leaves += l
	}
	return fmt.Sprintf("%s\nTrees: %d, attributes per tree: %d, mean leaves: %.1f",
		desc, len(rf.Trees), rf.MaxFeatures, float64(leaves)/float64(len(rf.Trees)))
}

func (rf *RandomForest) Clone() Model {
	return NewRandomForest(rf.NTrees)
}

func (rf *RandomForest) Reset() {
	rf.Trees = nil
	rf.FeatureIndices = nil
	rf.Classes = nil
}

func project(sample []float64, features []int) []float64 {
	out := make([]float64, len(features))
	for k, feat := range features {
		out[k] = sample[feat]
	}
	return out
}
