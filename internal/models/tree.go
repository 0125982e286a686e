package models

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"
)

type TreeNode struct {
	IsLeaf    bool
	Class     int
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
	Samples   int
	Counts    map[int]int
	Entropy   float64
	Gain      float64
}

// DecisionTree grows a binary tree on entropy gain and, when pruning is
// enabled, collapses subtrees whose pessimistic error estimate is no better
// than a leaf's. The estimate is the upper bound of a binomial confidence
// interval at ConfidenceFactor.
type DecisionTree struct {
	BaseModel
	Root              *TreeNode
	ConfidenceFactor  float32
	MinObjectsPerLeaf int
	MaxDepth          int
	EnablePruning     bool
}

func NewDecisionTree(confidenceFactor float32, minObjectsPerLeaf int) *DecisionTree {
	if minObjectsPerLeaf < 1 {
		minObjectsPerLeaf = 1
	}

	return &DecisionTree{
		ConfidenceFactor:  confidenceFactor,
		MinObjectsPerLeaf: minObjectsPerLeaf,
		EnablePruning:     confidenceFactor > 0 && confidenceFactor < 1,
		BaseModel: BaseModel{
			Name: "DecisionTree",
			Params: map[string]any{
				"confidenceFactor":  confidenceFactor,
				"minObjectsPerLeaf": minObjectsPerLeaf,
			},
			ParamOrder: []string{"confidenceFactor", "minObjectsPerLeaf"},
		},
	}
}

// newUnprunedTree builds the trees used inside ensembles. A maxDepth of 0
// means unlimited depth.
func newUnprunedTree(name string, maxDepth, minObjectsPerLeaf int) *DecisionTree {
	if minObjectsPerLeaf < 1 {
		minObjectsPerLeaf = 1
	}

	return &DecisionTree{
		MinObjectsPerLeaf: minObjectsPerLeaf,
		MaxDepth:          maxDepth,
		BaseModel: BaseModel{
			Name: name,
			Params: map[string]any{
				"maxDepth":          maxDepth,
				"minObjectsPerLeaf": minObjectsPerLeaf,
			},
			ParamOrder: []string{"maxDepth", "minObjectsPerLeaf"},
		},
	}
}

func (dt *DecisionTree) Fit(X [][]decimal.Decimal, y []int) error {
	if err := checkFit(dt.Name, X, y); err != nil {
		return err
	}
	dt.fitFloat(toFloat(X), y)
	return nil
}

func (dt *DecisionTree) fitFloat(X [][]float64, y []int) {
	dt.Classes = ExtractClasses(y)
	dt.Root = dt.buildTree(X, y, 0)
	if dt.EnablePruning {
		dt.prune(dt.Root)
	}
}

func (dt *DecisionTree) buildTree(X [][]float64, y []int, depth int) *TreeNode {
	node := &TreeNode{
		Samples: len(y),
		Counts:  classCounts(y),
	}
	node.Class = dt.mostCommonClass(node.Counts)
	node.Entropy = entropy(node.Counts, len(y))

	if (dt.MaxDepth > 0 && depth >= dt.MaxDepth) ||
		len(y) < 2*dt.MinObjectsPerLeaf ||
		len(node.Counts) == 1 {

		node.IsLeaf = true
		return node
	}

	bestFeature, bestThreshold, bestGain := dt.findBestSplit(X, y, node.Entropy)
	if bestFeature < 0 {
		node.IsLeaf = true
		return node
	}

	node.Feature = bestFeature
	node.Threshold = bestThreshold
	node.Gain = bestGain

	leftIndices, rightIndices := dt.splitData(X, bestFeature, bestThreshold)

	XLeft, yLeft := selectRows(X, y, leftIndices)
	XRight, yRight := selectRows(X, y, rightIndices)

	node.Left = dt.buildTree(XLeft, yLeft, depth+1)
	node.Right = dt.buildTree(XRight, yRight, depth+1)

	return node
}

// findBestSplit scans every boundary between distinct sorted values of each
// feature, keeping at least MinObjectsPerLeaf instances on both sides.
// The first feature and threshold with the highest gain wins.
func (dt *DecisionTree) findBestSplit(X [][]float64, y []int, parentEntropy float64) (int, float64, float64) {
	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 1e-10

	n := len(y)
	order := make([]int, n)

	for feature := range X[0] {
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return X[order[a]][feature] < X[order[b]][feature]
		})

		left := make(map[int]int)
		right := classCounts(y)

		for pos := 0; pos < n-1; pos++ {
			label := y[order[pos]]
			left[label]++
			right[label]--

			nLeft := pos + 1
			nRight := n - nLeft
			current := X[order[pos]][feature]
			next := X[order[pos+1]][feature]

			if current == next || nLeft < dt.MinObjectsPerLeaf || nRight < dt.MinObjectsPerLeaf {
				continue
			}

			weighted := (float64(nLeft)/float64(n))*entropy(left, nLeft) +
				(float64(nRight)/float64(n))*entropy(right, nRight)
			gain := parentEntropy - weighted

			if gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = (current + next) / 2
				if bestThreshold <= current {
					bestThreshold = next
				}
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

// prune returns the estimated number of errors of the subtree rooted at
// node after pruning it.
func (dt *DecisionTree) prune(node *TreeNode) float64 {
	errs := float64(node.Samples - node.Counts[node.Class])
	asLeaf := errs + addErrs(float64(node.Samples), errs, float64(dt.ConfidenceFactor))

	if node.IsLeaf {
		return asLeaf
	}

	subtree := dt.prune(node.Left) + dt.prune(node.Right)
	if asLeaf <= subtree+0.1 {
		node.IsLeaf = true
		node.Left = nil
		node.Right = nil
		return asLeaf
	}

	return subtree
}

// addErrs is the number of extra errors predicted for a leaf covering n
// instances with e training errors at confidence cf.
func addErrs(n, e, cf float64) float64 {
	if n == 0 {
		return 0
	}

	if e < 1 {
		base := n * (1 - math.Pow(cf, 1/n))
		if e == 0 {
			return base
		}
		return base + e*(addErrs(n, 1, cf)-base)
	}

	if e+0.5 >= n {
		return math.Max(n-e, 0)
	}

	z := distuv.UnitNormal.Quantile(1 - cf)
	f := (e + 0.5) / n
	r := (f + z*z/(2*n) + z*math.Sqrt(f/n-f*f/n+z*z/(4*n*n))) / (1 + z*z/n)

	return r*n - e
}

func (dt *DecisionTree) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))
	if dt.Root == nil {
		return predictions
	}

	for i, sample := range toFloat(X) {
		predictions[i] = dt.predictSample(sample, dt.Root)
	}

	return predictions
}

func (dt *DecisionTree) predictSample(sample []float64, node *TreeNode) int {
	for !node.IsLeaf {
		if sample[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Class
}

func (dt *DecisionTree) Describe() string {
	desc := dt.describeParams()
	if dt.Root == nil {
		return desc
	}
	leaves, size := treeSize(dt.Root)
	return fmt.Sprintf("%s\nNumber of leaves: %d\nSize of the tree: %d", desc, leaves, size)
}

func (dt *DecisionTree) Clone() Model {
	c := *dt
	c.Reset()
	return &c
}

func (dt *DecisionTree) Reset() {
	dt.Root = nil
	dt.Classes = nil
}

// mostCommonClass breaks ties toward the smallest class index.
func (dt *DecisionTree) mostCommonClass(counts map[int]int) int {
	best, bestCount := -1, -1
	for _, class := range dt.Classes {
		if counts[class] > bestCount {
			best = class
			bestCount = counts[class]
		}
	}
	return best
}

func (dt *DecisionTree) splitData(X [][]float64, feature int, threshold float64) ([]int, []int) {
	var leftIndices, rightIndices []int

	for i, sample := range X {
		if sample[feature] < threshold {
			leftIndices = append(leftIndices, i)
		} else {
			rightIndices = append(rightIndices, i)
		}
	}

	return leftIndices, rightIndices
}

func selectRows(X [][]float64, y []int, indices []int) ([][]float64, []int) {
	selectedX := make([][]float64, len(indices))
	selectedY := make([]int, len(indices))

	for i, idx := range indices {
		selectedX[i] = X[idx]
		selectedY[i] = y[idx]
	}

	return selectedX, selectedY
}

func classCounts(y []int) map[int]int {
	counts := make(map[int]int)
	for _, class := range y {
		counts[class]++
	}
	return counts
}

func entropy(counts map[int]int, n int) float64 {
	if n == 0 {
		return 0
	}
	classes := make([]int, 0, len(counts))
	for class := range counts {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	h := 0.0
	for _, class := range classes {
		count := counts[class]
		if count == 0 {
			continue
		}
		p := float64(count) / float64(n)
		h -= p * math.Log2(p)
	}
	return h
}

func treeSize(node *TreeNode) (leaves, size int) {
	if node == nil {
		return 0, 0
	}
	if node.IsLeaf {
		return 1, 1
	}
	ll, ls := treeSize(node.Left)
	rl, rs := treeSize(node.Right)
	return ll + rl, ls + rs + 1
}
