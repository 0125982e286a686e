package data

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type DataValidator struct{}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

// ValidateSchema checks that every row matches the schema width, that nominal
// codes are in range and that the class index is set and in bounds.
func (dv *DataValidator) ValidateSchema(ds *Dataset) error {
	if ds.ClassIndex < 0 || ds.ClassIndex >= len(ds.Attributes) {
		return fmt.Errorf("class index %d out of range for %d attributes", ds.ClassIndex, len(ds.Attributes))
	}

	for i, row := range ds.Rows {
		if len(row) != len(ds.Attributes) {
			return fmt.Errorf("inconsistent attribute count at row %d: expected %d, got %d", i, len(ds.Attributes), len(row))
		}
		for j, attr := range ds.Attributes {
			if !attr.IsNominal() {
				continue
			}
			code := row[j].IntPart()
			if code < 0 || int(code) >= len(attr.Values) {
				return fmt.Errorf("row %d: code %d out of range for nominal attribute %s", i, code, attr.Name)
			}
		}
	}

	return nil
}

// Stats summarises a dataset for display.
type Stats struct {
	Samples           int
	Attributes        int
	Classes           int
	ClassDistribution []int
	ImbalanceRatio    float64
	FeatureStats      []FeatureStats
}

type FeatureStats struct {
	Name string
	Min  decimal.Decimal
	Max  decimal.Decimal
	Mean decimal.Decimal
}

func (dv *DataValidator) GetDatasetStats(ds *Dataset) Stats {
	stats := Stats{
		Samples:    ds.NumInstances(),
		Attributes: ds.NumAttributes(),
		Classes:    ds.NumClasses(),
	}
	stats.ClassDistribution = ds.ClassCounts()

	minCount, maxCount := -1, 0
	for _, count := range stats.ClassDistribution {
		if count == 0 {
			continue
		}
		if minCount < 0 || count < minCount {
			minCount = count
		}
		if count > maxCount {
			maxCount = count
		}
	}
	if minCount > 0 {
		stats.ImbalanceRatio = float64(maxCount) / float64(minCount)
	}

	if ds.NumInstances() == 0 {
		return stats
	}

	for j, attr := range ds.Attributes {
		if j == ds.ClassIndex || attr.IsNominal() {
			continue
		}
		values := make([]decimal.Decimal, len(ds.Rows))
		for i, row := range ds.Rows {
			values[i] = row[j]
		}
		stats.FeatureStats = append(stats.FeatureStats, FeatureStats{
			Name: attr.Name,
			Min:  decimal.Min(values[0], values[1:]...),
			Max:  decimal.Max(values[0], values[1:]...),
			Mean: decimal.Avg(values[0], values[1:]...),
		})
	}

	return stats
}
