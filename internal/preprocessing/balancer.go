package preprocessing

import (
	"github.com/shopspring/decimal"

	"mlexperiment/internal/data"
)

// ClassBalancer oversamples every non-empty class up to the size of the
// largest class. Extra rows are taken cyclically from the class's own rows
// in dataset order, so the output is the same on every run.
type ClassBalancer struct{}

func NewClassBalancer() *ClassBalancer {
	return &ClassBalancer{}
}

func (cb *ClassBalancer) Balance(ds *data.Dataset) *data.Dataset {
	byClass := make([][]int, ds.NumClasses())
	for i := range ds.Rows {
		label := ds.Label(i)
		byClass[label] = append(byClass[label], i)
	}

	target := 0
	for _, rows := range byClass {
		if len(rows) > target {
			target = len(rows)
		}
	}

	indices := make([]int, 0, target*len(byClass))
	for i := range ds.Rows {
		indices = append(indices, i)
	}
	for _, rows := range byClass {
		if len(rows) == 0 {
			continue
		}
		for extra := 0; extra < target-len(rows); extra++ {
			indices = append(indices, rows[extra%len(rows)])
		}
	}

	balanced := ds.Subset(indices)
	for i, row := range balanced.Rows {
		dup := make([]decimal.Decimal, len(row))
		copy(dup, row)
		balanced.Rows[i] = dup
	}
	return balanced
}
