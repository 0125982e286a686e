package data

import (
	"fmt"
)

// LabelEncoder maps nominal strings to dense integer codes in order of
// first appearance, so repeated loads of one file yield the same codes.
type LabelEncoder struct {
	ClassToInt map[string]int
	IntToClass []string
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{
		ClassToInt: make(map[string]int),
	}
}

// Declare registers labels in the given order, ahead of any observed values.
func (le *LabelEncoder) Declare(labels []string) {
	for _, label := range labels {
		le.add(label)
	}
}

func (le *LabelEncoder) add(label string) int {
	if idx, ok := le.ClassToInt[label]; ok {
		return idx
	}
	idx := len(le.IntToClass)
	le.ClassToInt[label] = idx
	le.IntToClass = append(le.IntToClass, label)
	return idx
}

func (le *LabelEncoder) Fit(labels []string) {
	for _, label := range labels {
		le.add(label)
	}
}

func (le *LabelEncoder) Transform(labels []string) ([]int, error) {
	result := make([]int, len(labels))
	for i, label := range labels {
		val, ok := le.ClassToInt[label]
		if !ok {
			return nil, fmt.Errorf("unknown label: %s", label)
		}
		result[i] = val
	}
	return result, nil
}

func (le *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	le.Fit(labels)
	return le.Transform(labels)
}

func (le *LabelEncoder) InverseTransform(encoded []int) ([]string, error) {
	result := make([]string, len(encoded))
	for i, val := range encoded {
		if val < 0 || val >= len(le.IntToClass) {
			return nil, fmt.Errorf("unknown encoding: %d", val)
		}
		result[i] = le.IntToClass[val]
	}
	return result, nil
}

// Classes returns the known labels indexed by code.
func (le *LabelEncoder) Classes() []string {
	out := make([]string, len(le.IntToClass))
	copy(out, le.IntToClass)
	return out
}
