package data

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"mlexperiment/internal/errors"
)

type CSVReader struct {
	filename string
	logger   zerolog.Logger
}

func NewCSVReader(filename string, logger zerolog.Logger) *CSVReader {
	return &CSVReader{filename: filename, logger: logger}
}

// LoadDataset reads a header row followed by comma separated records.
// Columns whose values all parse as numbers become numeric attributes,
// the rest become nominal. Records with a missing value are skipped.
func (cr *CSVReader) LoadDataset() (*Dataset, error) {
	file, err := os.Open(cr.filename)
	if err != nil {
		return nil, errors.IO(err, cr.filename)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.IO(err, cr.filename)
	}

	if len(records) < 1 || len(records[0]) == 0 {
		return nil, errors.IO(errors.New("missing header row"), cr.filename)
	}

	headers := records[0]
	body := make([][]string, 0, len(records)-1)
	missingCount := 0
	for _, record := range records[1:] {
		if hasMissing(record) {
			missingCount++
			continue
		}
		body = append(body, record)
	}

	if missingCount > 0 {
		cr.logger.Warn().
			Str("file", cr.filename).
			Int("skipped", missingCount).
			Msg("dropped rows with missing values")
	}

	attributes := make([]Attribute, len(headers))
	codes := make([][]int, len(headers))
	for j, name := range headers {
		attributes[j] = Attribute{Name: strings.TrimSpace(name), Kind: Numeric}
		if numericColumn(body, j) {
			continue
		}

		column := make([]string, len(body))
		for i, record := range body {
			column[i] = strings.TrimSpace(record[j])
		}
		enc := NewLabelEncoder()
		encoded, err := enc.FitTransform(column)
		if err != nil {
			return nil, errors.IO(errors.Wrapf(err, "column %s", attributes[j].Name), cr.filename)
		}
		codes[j] = encoded
		attributes[j].Kind = Nominal
		attributes[j].Values = enc.Classes()
	}

	relation := strings.TrimSuffix(filepath.Base(cr.filename), filepath.Ext(cr.filename))
	ds := New(relation, attributes)
	ds.Rows = make([][]decimal.Decimal, len(body))

	for i, record := range body {
		row := make([]decimal.Decimal, len(record))
		for j, raw := range record {
			if codes[j] != nil {
				row[j] = decimal.NewFromInt(int64(codes[j][i]))
				continue
			}
			row[j] = decimal.RequireFromString(strings.TrimSpace(raw))
		}
		ds.Rows[i] = row
	}

	return ds, nil
}

func hasMissing(record []string) bool {
	for _, val := range record {
		v := strings.TrimSpace(val)
		if v == "" || v == "?" {
			return true
		}
	}
	return false
}

func numericColumn(records [][]string, col int) bool {
	if len(records) == 0 {
		return false
	}
	for _, record := range records {
		if _, err := decimal.NewFromString(strings.TrimSpace(record[col])); err != nil {
			return false
		}
	}
	return true
}
