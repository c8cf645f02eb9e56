package dataset

import (
	"strconv"
	"strings"
	"time"
)

// ColumnType is the inferred type of a column.
type ColumnType string

const (
	TypeEmpty  ColumnType = "empty"
	TypeNumber ColumnType = "number"
	TypeDate   ColumnType = "date"
	TypeText   ColumnType = "text"
)

// profileSample bounds how many rows type inference looks at.
const profileSample = 100

// ColumnProfile summarizes one column.
type ColumnProfile struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	Missing int        `json:"missing"`
	Unique  int        `json:"unique"`
	// Min, Max and Mean are set for number columns.
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mean float64 `json:"mean,omitempty"`
}

// Profile infers the type of every column from the first rows and counts
// missing and distinct values over all rows.
func (d *Dataset) Profile() []ColumnProfile {
	out := make([]ColumnProfile, len(d.Columns))
	for i, name := range d.Columns {
		p := ColumnProfile{Name: name, Type: inferType(d.Rows, i)}
		distinct := map[string]struct{}{}
		var sum float64
		var n int
		for _, row := range d.Rows {
			v := row[i]
			if v == "" {
				p.Missing++
				continue
			}
			distinct[v] = struct{}{}
			if p.Type != TypeNumber {
				continue
			}
			f, ok := ParseNumber(v)
			if !ok {
				continue
			}
			if n == 0 || f < p.Min {
				p.Min = f
			}
			if n == 0 || f > p.Max {
				p.Max = f
			}
			sum += f
			n++
		}
		if n > 0 {
			p.Mean = sum / float64(n)
		}
		p.Unique = len(distinct)
		out[i] = p
	}
	return out
}

// inferType classifies a column: number when every sampled value parses as
// a number, date when every one parses as a date, text otherwise.
func inferType(rows [][]string, col int) ColumnType {
	seen, numbers, dates := 0, 0, 0
	for _, row := range rows {
		if seen == profileSample {
			break
		}
		v := row[col]
		if v == "" {
			continue
		}
		seen++
		if _, ok := ParseNumber(v); ok {
			numbers++
		} else if _, ok := ParseDate(v); ok {
			dates++
		}
	}
	switch {
	case seen == 0:
		return TypeEmpty
	case numbers == seen:
		return TypeNumber
	case dates == seen:
		return TypeDate
	}
	return TypeText
}

var numberCleaner = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", "%", "", " ", "")

// ParseNumber parses a cell as a number, tolerating currency symbols,
// thousands separators and a trailing percent sign.
func ParseNumber(s string) (float64, bool) {
	s = numberCleaner.Replace(strings.TrimSpace(s))
	if s == "" || !strings.ContainsAny(s, "0123456789") || strings.ContainsAny(s, "nNiIxX") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate parses a cell in one of the common date layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
