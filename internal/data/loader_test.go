package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlexperiment/internal/errors"
)

const irisCSV = `sepal_length,sepal_width,petal_length,petal_width,species
5.1,3.5,1.4,0.2,setosa
4.9,3.0,1.4,0.2,setosa
7.0,3.2,4.7,1.4,versicolor
6.4,3.2,4.5,1.5,versicolor
6.3,3.3,6.0,2.5,virginica
5.8,?,5.1,1.9,virginica
`

const irisARFF = `% small iris sample
@RELATION iris

@ATTRIBUTE sepallength REAL
@ATTRIBUTE 'petal width' numeric
@ATTRIBUTE class {Iris-setosa,Iris-versicolor,Iris-virginica}

@DATA
5.1,0.2,Iris-setosa
7.0,1.4,Iris-versicolor
6.3,2.5,Iris-virginica
5.8,?,Iris-virginica
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	ds, err := Load(writeFile(t, "iris.csv", irisCSV))
	require.NoError(t, err)

	assert.Equal(t, "iris", ds.Relation)
	assert.Equal(t, 5, ds.NumAttributes())
	assert.Equal(t, 5, ds.NumInstances(), "row with a missing value is dropped")
	assert.Equal(t, 4, ds.ClassIndex, "class defaults to the last attribute")
	assert.Equal(t, []string{"setosa", "versicolor", "virginica"}, ds.ClassNames())
	assert.Equal(t, Numeric, ds.Attributes[0].Kind)
	assert.Equal(t, Nominal, ds.ClassAttribute().Kind)
	assert.Equal(t, []int{0, 0, 1, 1, 2}, ds.Labels())
	assert.Equal(t, "4.9", ds.Features(1)[0].String())
	assert.Len(t, ds.Features(1), 4)
}

func TestLoadARFF(t *testing.T) {
	ds, err := Load(writeFile(t, "iris.ARFF", irisARFF))
	require.NoError(t, err)

	assert.Equal(t, "iris", ds.Relation)
	assert.Equal(t, "petal width", ds.Attributes[1].Name)
	assert.Equal(t, 3, ds.NumInstances())
	assert.Equal(t, 2, ds.ClassIndex)
	assert.Equal(t, 3, ds.NumClasses())
	assert.Equal(t, []int{0, 1, 2}, ds.Labels())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		kind error
	}{
		{
			name: "unsupported extension",
			path: func(t *testing.T) string { return writeFile(t, "iris.xlsx", irisCSV) },
			kind: errors.ErrUnsupportedFormat,
		},
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") },
			kind: errors.ErrIO,
		},
		{
			name: "ragged csv",
			path: func(t *testing.T) string { return writeFile(t, "bad.csv", "a,b\n1,2\n3\n") },
			kind: errors.ErrIO,
		},
		{
			name: "undeclared nominal value",
			path: func(t *testing.T) string {
				return writeFile(t, "bad.arff", "@relation r\n@attribute x numeric\n@attribute c {a,b}\n@data\n1,z\n")
			},
			kind: errors.ErrIO,
		},
		{
			name: "string attribute",
			path: func(t *testing.T) string {
				return writeFile(t, "str.arff", "@relation r\n@attribute s string\n@attribute c {a,b}\n@data\nx,a\n")
			},
			kind: errors.ErrUnsupportedFormat,
		},
		{
			name: "no data section",
			path: func(t *testing.T) string {
				return writeFile(t, "empty.arff", "@relation r\n@attribute c {a,b}\n")
			},
			kind: errors.ErrIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestSubsetPreservesOrder(t *testing.T) {
	ds, err := Load(writeFile(t, "iris.csv", irisCSV))
	require.NoError(t, err)

	sub := ds.Subset([]int{4, 0, 2})
	assert.Equal(t, []int{2, 0, 1}, sub.Labels())
	assert.Equal(t, ds.ClassIndex, sub.ClassIndex)
	assert.Equal(t, 5, ds.NumInstances())
}

func TestDatasetStats(t *testing.T) {
	ds, err := Load(writeFile(t, "iris.csv", irisCSV))
	require.NoError(t, err)

	stats := NewDataValidator().GetDatasetStats(ds)
	assert.Equal(t, []int{2, 2, 1}, stats.ClassDistribution)
	assert.InDelta(t, 2.0, stats.ImbalanceRatio, 1e-9)
	require.Len(t, stats.FeatureStats, 4)
	assert.Equal(t, "4.9", stats.FeatureStats[0].Min.String())
	assert.Equal(t, "7", stats.FeatureStats[0].Max.String())
}

func TestLabelEncoderFirstAppearance(t *testing.T) {
	le := NewLabelEncoder()
	codes, err := le.FitTransform([]string{"b", "a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0, 2}, codes)

	labels, err := le.InverseTransform([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, labels)

	_, err = le.Transform([]string{"d"})
	assert.Error(t, err)
}

func TestLoadARFFUndeclaredValue(t *testing.T) {
	content := strings.Replace(irisARFF, "6.3,2.5,Iris-virginica", "6.3,2.5,Iris-unknown", 1)
	_, err := Load(writeFile(t, "iris.arff", content))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrIO))
	assert.Contains(t, err.Error(), "Iris-unknown")
}

func TestAttributeEncoderRoundTrip(t *testing.T) {
	attr := Attribute{Name: "class", Kind: Nominal, Values: []string{"low", "high"}}
	codes, err := attr.Encoder().Transform([]string{"high", "low"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, codes)

	names, err := attr.Encoder().InverseTransform([]int{1})
	require.NoError(t, err)
	assert.Equal(t, []string{"high"}, names)
}
