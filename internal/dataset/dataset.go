// Package dataset loads tabular files into a uniform row set and derives the
// analysis context reports are generated and interpreted against.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/goinsight/internal/extract"
)

var (
	// ErrEmptyDataset is returned when a file holds no data rows.
	ErrEmptyDataset = errors.New("dataset has no rows")
	// ErrUnsupportedFormat is returned for file types no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// Format is the on-disk encoding of a dataset.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the reader by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".psv", ".txt":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// Options tune how a dataset is read.
type Options struct {
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
	// NoHeader treats the first CSV/XLSX row as data.
	NoHeader bool
}

// Dataset is a rectangular table of string cells. Every row has exactly
// len(Columns) cells.
type Dataset struct {
	Name      string
	Columns   []string
	Rows      [][]string
	HasHeader bool
	// Delimiter is the detected CSV field separator, zero for other formats.
	Delimiter rune
}

// Load reads the file at path with the reader matching its extension.
func Load(path string, opts Options) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	d, err := Read(bytes.NewReader(b), format, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	d.Name = filepath.Base(path)
	return d, nil
}

// Read decodes a dataset of the given format.
func Read(r io.Reader, format Format, opts Options) (*Dataset, error) {
	var (
		d   *Dataset
		err error
	)
	switch format {
	case FormatCSV:
		d, err = ReadCSV(r, opts)
	case FormatJSON:
		d, err = ReadJSON(r)
	case FormatXLSX:
		d, err = ReadXLSX(r, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if len(d.Rows) == 0 {
		return nil, ErrEmptyDataset
	}
	return d, nil
}

// fromRecords builds a dataset from raw records. The first record is the
// header unless noHeader is set or it looks like data.
func fromRecords(records [][]string, noHeader bool) *Dataset {
	records = dropBlankRecords(records)
	d := &Dataset{}
	if len(records) == 0 {
		return d
	}
	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	header := records[0]
	if !noHeader && looksLikeHeader(header) {
		d.HasHeader = true
		records = records[1:]
	} else {
		header = nil
	}
	d.Columns = make([]string, width)
	for i := range d.Columns {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Column%d", i+1)
		}
		d.Columns[i] = name
	}
	d.Columns = uniqueNames(d.Columns)
	d.Rows = make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, width)
		for i := range row {
			if i < len(rec) {
				row[i] = strings.TrimSpace(rec[i])
			}
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}

func dropBlankRecords(records [][]string) [][]string {
	out := records[:0:0]
	for _, rec := range records {
		for _, c := range rec {
			if strings.TrimSpace(c) != "" {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// looksLikeHeader reports whether a first row names columns: at least one
// non-empty cell and not every non-empty cell numeric.
func looksLikeHeader(rec []string) bool {
	nonEmpty, numeric := 0, 0
	for _, c := range rec {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		nonEmpty++
		if _, ok := ParseNumber(c); ok {
			numeric++
		}
	}
	return nonEmpty > 0 && numeric < nonEmpty
}

// uniqueNames suffixes repeated column names with _2, _3 and so on.
func uniqueNames(cols []string) []string {
	seen := map[string]int{}
	out := make([]string, len(cols))
	for i, c := range cols {
		seen[c]++
		if n := seen[c]; n > 1 {
			c = fmt.Sprintf("%s_%d", c, n)
		}
		out[i] = c
	}
	return out
}

// Head returns a copy of the dataset limited to the first n rows. A
// non-positive n keeps every row.
func (d *Dataset) Head(n int) *Dataset {
	if n <= 0 || n >= len(d.Rows) {
		return d
	}
	cp := *d
	cp.Rows = d.Rows[:n]
	return &cp
}

// Column returns the index of the named column or -1.
func (d *Dataset) Column(name string) int {
	for i, c := range d.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Context returns the analysis context of the dataset.
func (d *Dataset) Context() extract.Context {
	ctx := extract.Context{Columns: append([]string(nil), d.Columns...)}
	for _, p := range d.Profile() {
		if p.Type == TypeNumber {
			ctx.Numeric = append(ctx.Numeric, p.Name)
		}
	}
	return ctx
}
