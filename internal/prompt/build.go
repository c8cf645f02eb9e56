package prompt

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/goinsight/internal/budget"
	"github.com/hyperifyio/goinsight/internal/dataset"
)

// Options control prompt rendering.
type Options struct {
	// Model sizes the row budget.
	Model string
	// ReservedOutput is kept free for the report itself.
	ReservedOutput int
	// MaxRows caps the rows included. Zero means as many as fit.
	MaxRows int
}

// Prompt is a rendered request for one report.
type Prompt struct {
	Profile Profile
	System  string
	User    string
	// RowsIncluded of RowsTotal dataset rows made it into the prompt.
	RowsIncluded int
	RowsTotal    int
}

// Truncated reports whether rows were left out to fit the context.
func (p Prompt) Truncated() bool { return p.RowsIncluded < p.RowsTotal }

// Build renders the prompt of a profile over a dataset. Rows are added in
// order until MaxRows or the model's context budget is reached.
func Build(p Profile, d *dataset.Dataset, opts Options) Prompt {
	rows := make([]string, len(d.Rows))
	for i, r := range d.Rows {
		rows[i] = formatRow(i+1, d.Columns, r)
	}
	format := strings.ReplaceAll(p.Format, "{{stats}}", statLines(d.Context().NumericColumns()))

	head := func(n int) string {
		var b strings.Builder
		b.WriteString("MANDATORY FORMAT. Use this exact structure and fill in every value from the data:\n\n")
		b.WriteString(format)
		b.WriteString("\n\nREQUIREMENTS:\n")
		for i, r := range append(append([]string{}, sharedRules...), p.Rules...) {
			fmt.Fprintf(&b, "%d. %s\n", i+1, r)
		}
		b.WriteString("\n")
		b.WriteString(dataContext(d, n))
		return b.String()
	}
	const closing = "\nNow write the complete report with every section filled in from the data above."

	n := len(rows)
	if opts.Model != "" {
		n = budget.FitRows(opts.Model, opts.ReservedOutput, p.SystemPrompt+head(len(rows))+closing, rows)
	}
	if opts.MaxRows > 0 && n > opts.MaxRows {
		n = opts.MaxRows
	}

	var user strings.Builder
	user.WriteString(head(n))
	for _, r := range rows[:n] {
		user.WriteString(r)
		user.WriteByte('\n')
	}
	user.WriteString(closing)
	return Prompt{
		Profile:      p,
		System:       p.SystemPrompt,
		User:         user.String(),
		RowsIncluded: n,
		RowsTotal:    len(rows),
	}
}

// dataContext describes the dataset shape ahead of the rows.
func dataContext(d *dataset.Dataset, included int) string {
	var b strings.Builder
	b.WriteString("Dataset:\n")
	if d.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", d.Name)
	}
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(d.Columns, ", "))
	fmt.Fprintf(&b, "Total Rows: %d\n", len(d.Rows))
	fmt.Fprintf(&b, "Total Columns: %d\n", len(d.Columns))
	fmt.Fprintf(&b, "Has Headers: %s\n", yesNo(d.HasHeader))
	types := make([]string, 0, len(d.Columns))
	for _, p := range d.Profile() {
		types = append(types, fmt.Sprintf("%s (%s, %d missing)", p.Name, p.Type, p.Missing))
	}
	fmt.Fprintf(&b, "Column Types: %s\n\n", strings.Join(types, ", "))
	if included < len(d.Rows) {
		fmt.Fprintf(&b, "Rows (first %d of %d; totals must still cover what is shown):\n", included, len(d.Rows))
	} else {
		b.WriteString("Complete Dataset:\n")
	}
	return b.String()
}

func formatRow(n int, cols, cells []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + ": " + cells[i]
	}
	return fmt.Sprintf("Row %d: %s", n, strings.Join(parts, ", "))
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
