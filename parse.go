package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/wlattner/pct/tree"
)

type parsedInput struct {
	X          [][]float64
	Y          [][]float64
	Attributes []*tree.Attribute
	Targets    []string
}

// parse csv file, the first nTargets columns hold the (numeric) targets and
// the remaining columns the features. The first row is a header when one of
// its target values isn't a number. Header names are turned into PFA field
// names, so "Sepal.Length" becomes "Sepal_Length".
//
// A feature column is nominal when any of its values isn't a number. When
// attrs is non-nil the columns are read according to attrs instead, nominal
// labels missing from an attribute's category table are encoded as -1.
func parseCSV(r io.Reader, nTargets int, attrs []*tree.Attribute) (*parsedInput, error) {
	if nTargets < 1 {
		return nil, errors.New("need at least one target column")
	}

	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("no rows")
	}

	nCols := len(rows[0])
	if nCols <= nTargets {
		return nil, fmt.Errorf("%d columns, need more than the %d target columns", nCols, nTargets)
	}

	p := &parsedInput{}

	// check if it's a header row
	var names []string
	if isHeader(rows[0][:nTargets]) {
		names = rows[0]
		rows = rows[1:]
	} else {
		// use Y1..Yk and X1..Xn for var names
		for i := 0; i < nTargets; i++ {
			names = append(names, fmt.Sprintf("Y%d", i+1))
		}
		for i := nTargets; i < nCols; i++ {
			names = append(names, fmt.Sprintf("X%d", i-nTargets+1))
		}
	}
	if len(rows) == 0 {
		return nil, errors.New("no data rows")
	}

	seen := make(map[string]bool)
	for i, name := range names {
		names[i] = fieldName(name)
		if seen[names[i]] {
			return nil, fmt.Errorf("duplicate column name %s", names[i])
		}
		seen[names[i]] = true
	}
	p.Targets = names[:nTargets]

	for i, row := range rows {
		for _, val := range row {
			if !utf8.ValidString(val) {
				return nil, fmt.Errorf("row %d: invalid UTF-8 in %q", i+1, val)
			}
		}
	}

	for i, row := range rows {
		yi, err := parseTargets(row[:nTargets])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		p.Y = append(p.Y, yi)
		p.X = append(p.X, make([]float64, nCols-nTargets))
	}

	if attrs == nil {
		for j := nTargets; j < nCols; j++ {
			attrs = append(attrs, detectAttribute(names[j], j-nTargets, rows, j))
		}
	}
	if len(attrs) != nCols-nTargets {
		return nil, fmt.Errorf("%d feature columns, model has %d attributes", nCols-nTargets, len(attrs))
	}
	p.Attributes = attrs

	for _, a := range attrs {
		col := a.Index + nTargets
		for i, row := range rows {
			v, err := encodeValue(a, row[col])
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", i+1, a.Name, err)
			}
			p.X[i][a.Index] = v
		}
	}

	return p, nil
}

// fieldName turns a column header into a PFA field name: letters, digits
// and underscores, not starting with a digit.
func fieldName(name string) string {
	b := []byte(name)
	for i, c := range b {
		if !(c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			b[i] = '_'
		}
	}
	if len(b) == 0 || '0' <= b[0] && b[0] <= '9' {
		return "_" + string(b)
	}
	return string(b)
}

func isHeader(row []string) bool {
	for _, val := range row {
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			return true
		}
	}
	return false
}

func parseTargets(row []string) ([]float64, error) {
	yi := make([]float64, len(row))
	for i, val := range row {
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, err
		}
		yi[i] = v
	}
	return yi, nil
}

// detectAttribute makes column col numeric when every value parses as a
// float, nominal otherwise with categories in order of first appearance.
func detectAttribute(name string, index int, rows [][]string, col int) *tree.Attribute {
	a := &tree.Attribute{Name: name, Index: index}

	for _, row := range rows {
		if _, err := strconv.ParseFloat(row[col], 64); err != nil {
			a.Kind = tree.Nominal
			break
		}
	}

	if a.Kind == tree.Nominal {
		seen := make(map[string]bool)
		for _, row := range rows {
			if !seen[row[col]] {
				seen[row[col]] = true
				a.Values = append(a.Values, row[col])
			}
		}
	}

	return a
}

func encodeValue(a *tree.Attribute, val string) (float64, error) {
	if a.Kind != tree.Nominal {
		return strconv.ParseFloat(val, 64)
	}
	for i, c := range a.Values {
		if c == val {
			return float64(i), nil
		}
	}
	return -1, nil
}
