package models

import (
	"math"
	"strconv"
	"strings"

	"mlexperiment/internal/errors"
)

// Tag identifies a model family. The numbering follows the order the
// families are offered to the user, starting at 1.
type Tag int

const (
	TagSVM Tag = iota + 1
	TagDecisionTree
	TagBoosting
	TagRandomForest
	TagKNN
	TagRBFNetwork
)

var tagNames = map[Tag]string{
	TagSVM:          "SVM",
	TagDecisionTree: "DecisionTree",
	TagBoosting:     "Boosting",
	TagRandomForest: "RandomForest",
	TagKNN:          "KNN",
	TagRBFNetwork:   "RBFNetwork",
}

var tagAliases = map[string]Tag{
	"svm":          TagSVM,
	"smo":          TagSVM,
	"tree":         TagDecisionTree,
	"decisiontree": TagDecisionTree,
	"j48":          TagDecisionTree,
	"boosting":     TagBoosting,
	"adaboost":     TagBoosting,
	"forest":       TagRandomForest,
	"randomforest": TagRandomForest,
	"knn":          TagKNN,
	"ibk":          TagKNN,
	"rbf":          TagRBFNetwork,
	"rbfnetwork":   TagRBFNetwork,
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "Tag(" + strconv.Itoa(int(t)) + ")"
}

func (t Tag) Valid() bool {
	return t >= TagSVM && t <= TagRBFNetwork
}

// ParseTag accepts a tag number or a family name.
func ParseTag(s string) (Tag, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if !Tag(n).Valid() {
			return 0, errors.InvalidModelOption(n)
		}
		return Tag(n), nil
	}
	if tag, ok := tagAliases[s]; ok {
		return tag, nil
	}
	return 0, errors.Wrapf(errors.ErrInvalidModelOption, "unknown model %q", s)
}

// Config is one model family together with its hyperparameters.
type Config interface {
	Tag() Tag
}

type SVMConfig struct {
	Cost           float64
	KernelExponent float64
}

type DecisionTreeConfig struct {
	// ConfidenceFactor is narrowed from the parsed float64 to float32.
	ConfidenceFactor  float32
	MinObjectsPerLeaf int
}

type BoostingConfig struct {
	Iterations int
}

type RandomForestConfig struct {
	TreeCount int
}

type KNNConfig struct {
	K int
}

type RBFNetworkConfig struct {
	HiddenUnits        int
	Seed               int
	UseGradientDescent bool
}

func (SVMConfig) Tag() Tag          { return TagSVM }
func (DecisionTreeConfig) Tag() Tag { return TagDecisionTree }
func (BoostingConfig) Tag() Tag     { return TagBoosting }
func (RandomForestConfig) Tag() Tag { return TagRandomForest }
func (KNNConfig) Tag() Tag          { return TagKNN }
func (RBFNetworkConfig) Tag() Tag   { return TagRBFNetwork }

// DefaultConfig returns the hyperparameters offered before the user edits them.
func DefaultConfig(tag Tag) (Config, error) {
	switch tag {
	case TagSVM:
		return SVMConfig{Cost: 1, KernelExponent: 1}, nil
	case TagDecisionTree:
		return DecisionTreeConfig{ConfidenceFactor: 0.25, MinObjectsPerLeaf: 2}, nil
	case TagBoosting:
		return BoostingConfig{Iterations: 10}, nil
	case TagRandomForest:
		return RandomForestConfig{TreeCount: 100}, nil
	case TagKNN:
		return KNNConfig{K: 1}, nil
	case TagRBFNetwork:
		return RBFNetworkConfig{HiddenUnits: 2, Seed: 1}, nil
	default:
		return nil, errors.InvalidModelOption(int(tag))
	}
}

// DefaultParams returns the defaults of DefaultConfig as raw strings in
// ParseConfig order.
func DefaultParams(tag Tag) []string {
	switch tag {
	case TagSVM:
		return []string{"1", "1"}
	case TagDecisionTree:
		return []string{"0.25", "2"}
	case TagBoosting:
		return []string{"10"}
	case TagRandomForest:
		return []string{"100"}
	case TagKNN:
		return []string{"1"}
	case TagRBFNetwork:
		return []string{"2", "1", "0"}
	default:
		return nil
	}
}

// ParamNames lists the hyperparameters of tag in ParseConfig order.
func ParamNames(tag Tag) []string {
	switch tag {
	case TagSVM:
		return []string{"cost", "kernelExponent"}
	case TagDecisionTree:
		return []string{"confidenceFactor", "minObjectsPerLeaf"}
	case TagBoosting:
		return []string{"iterations"}
	case TagRandomForest:
		return []string{"treeCount"}
	case TagKNN:
		return []string{"k"}
	case TagRBFNetwork:
		return []string{"hiddenUnits", "seed", "useGradientDescent"}
	default:
		return nil
	}
}

// ParseConfig validates raw hyperparameter strings for the family selected
// by tag and converts them to the field types of its Config.
//
// Every field is parsed as a float64 first. The conversions are then:
//
//	SVM           cost, kernelExponent: kept as float64
//	DecisionTree  confidenceFactor: float32(v), minObjectsPerLeaf: int(v)
//	Boosting      iterations: int(v)
//	RandomForest  treeCount: int(v)
//	KNN           k: int(v)
//	RBFNetwork    hiddenUnits, seed: int(v); useGradientDescent: v >= 1
//
// int(v) truncates toward zero, so "2.9" objects per leaf becomes 2, and
// float32(v) drops precision past about seven significant digits. Describe
// reports the converted values.
func ParseConfig(tag int, raw []string) (Config, error) {
	t := Tag(tag)
	if !t.Valid() {
		return nil, errors.InvalidModelOption(tag)
	}

	p := &paramParser{model: t.String(), raw: raw}

	var cfg Config
	switch t {
	case TagSVM:
		cfg = SVMConfig{
			Cost:           p.positive(0, "cost"),
			KernelExponent: p.positive(1, "kernelExponent"),
		}
	case TagDecisionTree:
		cf := p.float(0, "confidenceFactor")
		if p.err == nil && (cf <= 0 || cf >= 1) {
			p.fail("confidenceFactor", raw[0], errors.New("must be between 0 and 1"))
		}
		cfg = DecisionTreeConfig{
			ConfidenceFactor:  float32(cf),
			MinObjectsPerLeaf: p.count(1, "minObjectsPerLeaf"),
		}
	case TagBoosting:
		cfg = BoostingConfig{Iterations: p.count(0, "iterations")}
	case TagRandomForest:
		cfg = RandomForestConfig{TreeCount: p.count(0, "treeCount")}
	case TagKNN:
		cfg = KNNConfig{K: p.count(0, "k")}
	case TagRBFNetwork:
		cfg = RBFNetworkConfig{
			HiddenUnits:        p.count(0, "hiddenUnits"),
			Seed:               int(p.float(1, "seed")),
			UseGradientDescent: p.float(2, "useGradientDescent") >= 1,
		}
	}

	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

type paramParser struct {
	model string
	raw   []string
	err   error
}

func (p *paramParser) fail(field, value string, cause error) {
	if p.err == nil {
		p.err = errors.NewParamError(p.model, field, value, cause)
	}
}

func (p *paramParser) float(i int, field string) float64 {
	if p.err != nil {
		return 0
	}
	if i >= len(p.raw) || strings.TrimSpace(p.raw[i]) == "" {
		p.fail(field, "", nil)
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(p.raw[i]), 64)
	if err != nil {
		p.fail(field, p.raw[i], err)
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		p.fail(field, p.raw[i], errors.New("must be finite"))
		return 0
	}
	return v
}

func (p *paramParser) positive(i int, field string) float64 {
	v := p.float(i, field)
	if p.err == nil && v <= 0 {
		p.fail(field, p.raw[i], errors.New("must be greater than 0"))
	}
	return v
}

// count truncates toward zero and requires at least 1.
func (p *paramParser) count(i int, field string) int {
	v := int(p.float(i, field))
	if p.err == nil && v < 1 {
		p.fail(field, p.raw[i], errors.New("must be at least 1 after truncation"))
	}
	return v
}
