package extract

import "strings"

// DefaultStatColumns are the column labels the statistical report template
// asks the model to fill in when no dataset context is known.
var DefaultStatColumns = []string{"Quantity", "Unit_Price", "Revenue"}

// Context is the tabular analysis context of the dataset a report was
// generated from. The zero value means "unknown dataset".
type Context struct {
	Columns []string `json:"columns,omitempty"`
	// Numeric lists the columns detected as numeric, in dataset order.
	Numeric []string `json:"numeric,omitempty"`
}

// HasColumns reports whether any dataset columns are known.
func (c Context) HasColumns() bool { return len(c.Columns) > 0 }

// NumericColumns returns the numeric columns, all columns when none were
// detected as numeric, or DefaultStatColumns for an unknown dataset.
func (c Context) NumericColumns() []string {
	switch {
	case len(c.Numeric) > 0:
		return c.Numeric
	case len(c.Columns) > 0:
		return c.Columns
	}
	return DefaultStatColumns
}

// ResolveColumn maps a label used by the model onto the closest actual
// column: case-insensitive equality, then equality ignoring case, spaces,
// underscores and hyphens, then containment either way. A label nothing
// resembles is returned unchanged.
func (c Context) ResolveColumn(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return label
	}
	for _, col := range c.Columns {
		if strings.EqualFold(col, label) {
			return col
		}
	}
	nl := normalizeColumn(label)
	if nl == "" {
		return label
	}
	for _, col := range c.Columns {
		if normalizeColumn(col) == nl {
			return col
		}
	}
	for _, col := range c.Columns {
		nc := normalizeColumn(col)
		if nc != "" && (strings.Contains(nc, nl) || strings.Contains(nl, nc)) {
			return col
		}
	}
	return label
}

// aliases returns the default labels that resolve to col, so values the
// model reported under a generic label are still found.
func (c Context) aliases(col string) []string {
	var out []string
	for _, g := range DefaultStatColumns {
		if g != col && c.ResolveColumn(g) == col {
			out = append(out, g)
		}
	}
	return out
}

func normalizeColumn(s string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}
