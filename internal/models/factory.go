package models

import (
	"mlexperiment/internal/errors"
)

// Build returns an unfitted model for cfg.
func Build(cfg Config) (Model, error) {
	switch c := cfg.(type) {
	case SVMConfig:
		return NewSVM(c.Cost, c.KernelExponent), nil
	case DecisionTreeConfig:
		return NewDecisionTree(c.ConfidenceFactor, c.MinObjectsPerLeaf), nil
	case BoostingConfig:
		return NewBoosting(c.Iterations), nil
	case RandomForestConfig:
		return NewRandomForest(c.TreeCount), nil
	case KNNConfig:
		return NewKNN(c.K), nil
	case RBFNetworkConfig:
		return NewRBFNetwork(c.HiddenUnits, c.Seed, c.UseGradientDescent), nil
	case nil:
		return nil, errors.Wrap(errors.ErrInvalidModelOption, "no model configured")
	default:
		return nil, errors.Wrapf(errors.ErrInvalidModelOption, "unsupported config %T", cfg)
	}
}

// Configure parses raw hyperparameters for tag and builds the model.
func Configure(tag int, raw []string) (Model, error) {
	cfg, err := ParseConfig(tag, raw)
	if err != nil {
		return nil, err
	}
	return Build(cfg)
}
