package data

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"mlexperiment/internal/errors"
)

// ARFFReader parses the attribute-relation file format: an @relation line,
// one @attribute line per column and an @data section of comma separated rows.
type ARFFReader struct {
	filename string
	logger   zerolog.Logger
}

func NewARFFReader(filename string, logger zerolog.Logger) *ARFFReader {
	return &ARFFReader{filename: filename, logger: logger}
}

func (ar *ARFFReader) LoadDataset() (*Dataset, error) {
	file, err := os.Open(ar.filename)
	if err != nil {
		return nil, errors.IO(err, ar.filename)
	}
	defer file.Close()

	var (
		relation   string
		attributes []Attribute
		encoders   []*LabelEncoder
		rows       [][]decimal.Decimal
		inData     bool
		lineNo     int
		skipped    int
	)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}

		if !inData {
			keyword, rest := splitKeyword(line)
			switch strings.ToLower(keyword) {
			case "@relation":
				relation = unquote(rest)
			case "@attribute":
				attr, err := parseAttribute(rest)
				if err != nil {
					if errors.Is(err, errors.ErrUnsupportedFormat) {
						return nil, errors.Wrapf(err, "%s:%d", ar.filename, lineNo)
					}
					return nil, errors.IO(errors.Wrapf(err, "line %d", lineNo), ar.filename)
				}
				attributes = append(attributes, attr)
				var enc *LabelEncoder
				if attr.IsNominal() {
					enc = attr.Encoder()
				}
				encoders = append(encoders, enc)
			case "@data":
				if len(attributes) == 0 {
					return nil, errors.IO(errors.Newf("line %d: @data before any @attribute", lineNo), ar.filename)
				}
				inData = true
			default:
				return nil, errors.IO(errors.Newf("line %d: unexpected %q", lineNo, keyword), ar.filename)
			}
			continue
		}

		values, err := splitRow(line)
		if err != nil {
			return nil, errors.IO(errors.Wrapf(err, "line %d", lineNo), ar.filename)
		}
		if len(values) != len(attributes) {
			return nil, errors.IO(errors.Newf("line %d: expected %d values, got %d", lineNo, len(attributes), len(values)), ar.filename)
		}
		if hasMissing(values) {
			skipped++
			continue
		}

		row := make([]decimal.Decimal, len(values))
		for j, raw := range values {
			if encoders[j] != nil {
				idx, err := encoders[j].Transform([]string{raw})
				if err != nil {
					return nil, errors.IO(errors.Wrapf(err, "line %d: value not declared for %s", lineNo, attributes[j].Name), ar.filename)
				}
				row[j] = decimal.NewFromInt(int64(idx[0]))
				continue
			}
			v, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, errors.IO(errors.Wrapf(err, "line %d: attribute %s", lineNo, attributes[j].Name), ar.filename)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.IO(err, ar.filename)
	}
	if !inData {
		return nil, errors.IO(errors.New("no @data section"), ar.filename)
	}

	if skipped > 0 {
		ar.logger.Warn().
			Str("file", ar.filename).
			Int("skipped", skipped).
			Msg("dropped rows with missing values")
	}

	ds := New(relation, attributes)
	ds.Rows = rows
	return ds, nil
}

func splitKeyword(line string) (string, string) {
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return line, ""
	}
	return line[:idx], strings.TrimSpace(line[idx+1:])
}

func parseAttribute(decl string) (Attribute, error) {
	name, rest, err := attributeName(decl)
	if err != nil {
		return Attribute{}, err
	}

	if strings.HasPrefix(rest, "{") {
		end := strings.LastIndex(rest, "}")
		if end < 0 {
			return Attribute{}, fmt.Errorf("attribute %s: unterminated value list", name)
		}
		values, err := splitRow(rest[1:end])
		if err != nil {
			return Attribute{}, fmt.Errorf("attribute %s: %w", name, err)
		}
		return Attribute{Name: name, Kind: Nominal, Values: values}, nil
	}

	switch strings.ToLower(strings.Fields(rest + " ")[0]) {
	case "numeric", "real", "integer":
		return Attribute{Name: name, Kind: Numeric}, nil
	default:
		return Attribute{}, errors.Wrapf(errors.ErrUnsupportedFormat, "attribute %s: type %q", name, rest)
	}
}

func attributeName(decl string) (string, string, error) {
	if decl == "" {
		return "", "", fmt.Errorf("empty attribute declaration")
	}
	if q := decl[0]; q == '\'' || q == '"' {
		end := strings.IndexByte(decl[1:], q)
		if end < 0 {
			return "", "", fmt.Errorf("unterminated attribute name")
		}
		return decl[1 : end+1], strings.TrimSpace(decl[end+2:]), nil
	}
	name, rest := splitKeyword(decl)
	if rest == "" {
		return "", "", fmt.Errorf("attribute %s: missing type", name)
	}
	return name, rest, nil
}

func splitRow(line string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.Comma = ','
	fields, err := reader.Read()
	if err != nil {
		return nil, err
	}
	for i, f := range fields {
		fields[i] = unquote(strings.TrimSpace(f))
	}
	return fields, nil
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' && s[len(s)-1] == '\'' || s[0] == '"' && s[len(s)-1] == '"') {
		return s[1 : len(s)-1]
	}
	return s
}
