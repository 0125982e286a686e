package data

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type AttributeKind int

const (
	Numeric AttributeKind = iota
	Nominal
)

func (k AttributeKind) String() string {
	if k == Nominal {
		return "nominal"
	}
	return "numeric"
}

// Attribute is one column of the dataset schema. Nominal values are stored
// in rows as their index into Values.
type Attribute struct {
	Name   string
	Kind   AttributeKind
	Values []string
}

func (a Attribute) IsNominal() bool {
	return a.Kind == Nominal
}

// Encoder returns a LabelEncoder holding the attribute's nominal values.
func (a Attribute) Encoder() *LabelEncoder {
	enc := NewLabelEncoder()
	enc.Declare(a.Values)
	return enc
}

// Dataset is an ordered set of rows sharing one schema. ClassIndex is -1
// until a class attribute is resolved.
type Dataset struct {
	Relation   string
	Attributes []Attribute
	Rows       [][]decimal.Decimal
	ClassIndex int
}

func New(relation string, attributes []Attribute) *Dataset {
	return &Dataset{
		Relation:   relation,
		Attributes: attributes,
		ClassIndex: -1,
	}
}

func (ds *Dataset) NumInstances() int {
	return len(ds.Rows)
}

func (ds *Dataset) NumAttributes() int {
	return len(ds.Attributes)
}

// SetClassIndex fixes the class attribute. Negative values select the last attribute.
func (ds *Dataset) SetClassIndex(idx int) error {
	if idx < 0 {
		idx = len(ds.Attributes) - 1
	}
	if idx < 0 || idx >= len(ds.Attributes) {
		return fmt.Errorf("class index %d out of range for %d attributes", idx, len(ds.Attributes))
	}
	ds.ClassIndex = idx
	return nil
}

func (ds *Dataset) ClassAttribute() Attribute {
	return ds.Attributes[ds.ClassIndex]
}

func (ds *Dataset) NumClasses() int {
	if ds.ClassIndex < 0 {
		return 0
	}
	return len(ds.Attributes[ds.ClassIndex].Values)
}

func (ds *Dataset) ClassNames() []string {
	if ds.ClassIndex < 0 {
		return nil
	}
	names := make([]string, len(ds.Attributes[ds.ClassIndex].Values))
	copy(names, ds.Attributes[ds.ClassIndex].Values)
	return names
}

func (ds *Dataset) Label(i int) int {
	return int(ds.Rows[i][ds.ClassIndex].IntPart())
}

func (ds *Dataset) Labels() []int {
	y := make([]int, len(ds.Rows))
	for i := range ds.Rows {
		y[i] = ds.Label(i)
	}
	return y
}

// Features returns row i without its class value.
func (ds *Dataset) Features(i int) []decimal.Decimal {
	return ds.featuresOf(ds.Rows[i])
}

func (ds *Dataset) featuresOf(row []decimal.Decimal) []decimal.Decimal {
	features := make([]decimal.Decimal, 0, len(row)-1)
	for j, v := range row {
		if j != ds.ClassIndex {
			features = append(features, v)
		}
	}
	return features
}

// Matrix returns the feature rows and class labels of every instance.
func (ds *Dataset) Matrix() ([][]decimal.Decimal, []int) {
	X := make([][]decimal.Decimal, len(ds.Rows))
	for i := range ds.Rows {
		X[i] = ds.Features(i)
	}
	return X, ds.Labels()
}

// Subset returns a dataset holding the rows at indices, in that order.
// Rows are shared with the receiver.
func (ds *Dataset) Subset(indices []int) *Dataset {
	sub := ds.emptyCopy()
	sub.Rows = make([][]decimal.Decimal, len(indices))
	for i, idx := range indices {
		sub.Rows[i] = ds.Rows[idx]
	}
	return sub
}

// Clone deep-copies the rows.
func (ds *Dataset) Clone() *Dataset {
	c := ds.emptyCopy()
	c.Rows = make([][]decimal.Decimal, len(ds.Rows))
	for i, row := range ds.Rows {
		c.Rows[i] = make([]decimal.Decimal, len(row))
		copy(c.Rows[i], row)
	}
	return c
}

func (ds *Dataset) emptyCopy() *Dataset {
	return &Dataset{
		Relation:   ds.Relation,
		Attributes: ds.Attributes,
		ClassIndex: ds.ClassIndex,
	}
}

// ClassCounts returns the number of instances per class index.
func (ds *Dataset) ClassCounts() []int {
	counts := make([]int, ds.NumClasses())
	for i := range ds.Rows {
		label := ds.Label(i)
		if label >= 0 && label < len(counts) {
			counts[label]++
		}
	}
	return counts
}
