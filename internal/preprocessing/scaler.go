package preprocessing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"mlexperiment/internal/data"
)

const (
	MinMax = "minmax"
	ZScore = "zscore"
)

// Scaler rescales the numeric non-class attributes of a dataset. Parameters
// are fit on the dataset passed to Fit.
type Scaler struct {
	ScaleType   string
	IsFitted    bool
	Columns     []int
	FeatureMin  []decimal.Decimal
	FeatureMax  []decimal.Decimal
	FeatureMean []decimal.Decimal
	FeatureStd  []decimal.Decimal
}

func NewScaler(scaleType string) *Scaler {
	return &Scaler{ScaleType: scaleType}
}

func (s *Scaler) Fit(ds *data.Dataset) error {
	if ds.NumInstances() == 0 {
		return fmt.Errorf("empty dataset")
	}

	s.Columns = s.Columns[:0]
	for j, attr := range ds.Attributes {
		if j != ds.ClassIndex && !attr.IsNominal() {
			s.Columns = append(s.Columns, j)
		}
	}

	n := len(s.Columns)
	s.FeatureMin = make([]decimal.Decimal, n)
	s.FeatureMax = make([]decimal.Decimal, n)
	s.FeatureMean = make([]decimal.Decimal, n)
	s.FeatureStd = make([]decimal.Decimal, n)

	switch s.ScaleType {
	case MinMax, "normalized", "":
		s.fitMinMax(ds)
	case ZScore, "standard", "standardized":
		s.fitStandard(ds)
	default:
		return fmt.Errorf("unknown scale type: %s", s.ScaleType)
	}

	s.IsFitted = true
	return nil
}

// Transform returns a copy of ds with the fitted columns rescaled.
func (s *Scaler) Transform(ds *data.Dataset) (*data.Dataset, error) {
	if !s.IsFitted {
		return nil, fmt.Errorf("scaler must be fitted before transform")
	}

	result := ds.Clone()
	for _, row := range result.Rows {
		for k, j := range s.Columns {
			switch s.ScaleType {
			case ZScore, "standard", "standardized":
				row[j] = s.transformStandard(row[j], k)
			default:
				row[j] = s.transformMinMax(row[j], k)
			}
		}
	}

	return result, nil
}

func (s *Scaler) FitTransform(ds *data.Dataset) (*data.Dataset, error) {
	if err := s.Fit(ds); err != nil {
		return nil, err
	}
	return s.Transform(ds)
}

func (s *Scaler) fitMinMax(ds *data.Dataset) {
	for k, j := range s.Columns {
		s.FeatureMin[k] = ds.Rows[0][j]
		s.FeatureMax[k] = ds.Rows[0][j]

		for _, row := range ds.Rows[1:] {
			if row[j].LessThan(s.FeatureMin[k]) {
				s.FeatureMin[k] = row[j]
			}
			if row[j].GreaterThan(s.FeatureMax[k]) {
				s.FeatureMax[k] = row[j]
			}
		}
	}
}

func (s *Scaler) fitStandard(ds *data.Dataset) {
	values := make([]float64, ds.NumInstances())

	for k, j := range s.Columns {
		for i, row := range ds.Rows {
			values[i] = row[j].InexactFloat64()
		}

		mean, std := stat.MeanStdDev(values, nil)
		s.FeatureMean[k] = decimal.NewFromFloat(mean)
		if len(values) < 2 || std == 0 {
			s.FeatureStd[k] = decimal.NewFromInt(1)
			continue
		}
		s.FeatureStd[k] = decimal.NewFromFloat(std)
	}
}

func (s *Scaler) transformMinMax(value decimal.Decimal, k int) decimal.Decimal {
	range_ := s.FeatureMax[k].Sub(s.FeatureMin[k])
	if range_.IsZero() {
		return decimal.Zero
	}
	return value.Sub(s.FeatureMin[k]).Div(range_)
}

func (s *Scaler) transformStandard(value decimal.Decimal, k int) decimal.Decimal {
	return value.Sub(s.FeatureMean[k]).Div(s.FeatureStd[k])
}
