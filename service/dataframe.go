package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const (
	utf8BOM = "\ufeff"
	// gota skips this value during type detection and loads it as NA
	missingValue = "NaN"
)

// DataFrame is a parsed CSV upload with per-column type inference.
type DataFrame struct {
	df dataframe.DataFrame
}

// ReadCSV parses r like a forgiving spreadsheet export: a leading UTF-8 BOM
// is dropped, short rows are padded with missing values and a header-only
// file gives an empty table that keeps its columns.
func ReadCSV(r io.Reader) (*DataFrame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("failed to parse CSV: no header row")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	for i, row := range records[1:] {
		switch {
		case len(row) > len(header):
			return nil, fmt.Errorf("failed to parse CSV: line %d has %d fields, header has %d", i+2, len(row), len(header))
		case len(row) < len(header):
			for len(row) < len(header) {
				row = append(row, missingValue)
			}
			records[i+1] = row
		}
	}

	if len(records) == 1 {
		columns := make([]series.Series, len(header))
		for i, name := range header {
			columns[i] = series.New([]string{}, series.String, name)
		}
		return &DataFrame{df: dataframe.New(columns...)}, nil
	}

	df := dataframe.LoadRecords(records)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", df.Err)
	}
	return &DataFrame{df: df}, nil
}

func (d *DataFrame) Columns() []string {
	return d.df.Names()
}

func (d *DataFrame) NumRows() int {
	return d.df.Nrow()
}

// Rows returns every row as a column→value map. Missing values are nil;
// others keep their inferred Go type (int, float64, bool or string).
func (d *DataFrame) Rows() []map[string]any {
	names := d.df.Names()
	rows := make([]map[string]any, d.df.Nrow())
	for i := range rows {
		rows[i] = make(map[string]any, len(names))
	}
	for _, name := range names {
		col := d.df.Col(name)
		for i := range rows {
			elem := col.Elem(i)
			if elem.IsNA() {
				rows[i][name] = nil
				continue
			}
			rows[i][name] = elem.Val()
		}
	}
	return rows
}

// Describe summarises the schema and the first headRows rows as CSV.
func (d *DataFrame) Describe(headRows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rows: %d\n", d.df.Nrow())
	b.WriteString("Columns:\n")
	names := d.df.Names()
	colTypes := d.df.Types()
	for i, name := range names {
		fmt.Fprintf(&b, "- %s (%s)\n", name, colTypes[i])
	}

	n := min(headRows, d.df.Nrow())
	if n <= 0 {
		return b.String()
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	var head bytes.Buffer
	if err := d.df.Subset(idx).WriteCSV(&head); err == nil {
		fmt.Fprintf(&b, "First %d rows:\n%s", n, head.String())
	}
	return b.String()
}
