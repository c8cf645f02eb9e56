package extract

import (
	"math"
	"regexp"
	"strconv"

	"github.com/hyperifyio/goinsight/internal/report"
)

// CorrelationRow is one row of the correlation matrix table. Cells keep the
// model's original strings.
type CorrelationRow struct {
	Column1      string `json:"column1"`
	Column2      string `json:"column2"`
	Correlation  string `json:"correlation"`
	Strength     string `json:"strength"`
	Direction    string `json:"direction"`
	Significance string `json:"significance"`
}

// Coefficient parses the correlation cell.
func (r CorrelationRow) Coefficient() (float64, bool) { return firstNumber(r.Correlation) }

// CorrelationResult is the fact set of a correlation report.
type CorrelationResult struct {
	Matrix                []CorrelationRow `json:"correlationMatrix"`
	Relationships         []string         `json:"relationships"`
	RelationshipPatterns  []string         `json:"relationshipPatterns"`
	BusinessRelationships []string         `json:"businessRelationships"`
	Insights              []string         `json:"insights"`
}

// Empty reports whether nothing was extracted.
func (r CorrelationResult) Empty() bool {
	return len(r.Matrix) == 0 && len(r.Relationships) == 0 && len(r.RelationshipPatterns) == 0 &&
		len(r.BusinessRelationships) == 0 && len(r.Insights) == 0
}

var correlationProfile = topicProfile{
	markers: markerPattern("Correlation Matrix:", "Business Relationships:", "Relationship Patterns:", "Relationships:", "Insights:"),
	rules: []rule{
		{
			field:    "matrix",
			keywords: []string{"correlation matrix"},
			position: 1,
			sections: []string{"correlation matrix", "matrix"},
			table:    &rowLayout{width: 6, minFields: 3, header: "column"},
		},
		{field: "relationships", keywords: []string{"relationships"}, exclude: []string{"pattern", "business"}, position: 2},
		{field: "patterns", keywords: []string{"relationship patterns", "patterns"}, position: 3},
		{field: "business", keywords: []string{"business relationships", "business"}, position: 4},
		{field: "insights", keywords: []string{"insights"}, position: 5},
	},
}

// Correlation extracts the correlation matrix and relationship lists.
// Strength and direction left blank by the model are derived from the
// coefficient.
func Correlation(raw string, doc report.Document) CorrelationResult {
	o := correlationProfile.run(raw, doc)
	res := CorrelationResult{
		Matrix:                []CorrelationRow{},
		Relationships:         nonNil(o.list("relationships")),
		RelationshipPatterns:  nonNil(o.list("patterns")),
		BusinessRelationships: nonNil(o.list("business")),
		Insights:              nonNil(o.list("insights")),
	}
	for _, cells := range o.table("matrix") {
		row := CorrelationRow{
			Column1:      cells[0],
			Column2:      cells[1],
			Correlation:  cells[2],
			Strength:     cells[3],
			Direction:    cells[4],
			Significance: cells[5],
		}
		if v, ok := row.Coefficient(); ok {
			if row.Strength == "" {
				row.Strength = CorrelationStrength(v)
			}
			if row.Direction == "" {
				row.Direction = CorrelationDirection(v)
			}
		}
		res.Matrix = append(res.Matrix, row)
	}
	return res
}

// CorrelationStrength buckets a coefficient by magnitude.
func CorrelationStrength(v float64) string {
	a := math.Abs(v)
	switch {
	case a >= 0.7:
		return "strong"
	case a >= 0.4:
		return "moderate"
	case a >= 0.2:
		return "weak"
	}
	return "very weak"
}

// CorrelationDirection names the sign of a coefficient.
func CorrelationDirection(v float64) string {
	switch {
	case v > 0:
		return "positive"
	case v < 0:
		return "negative"
	}
	return "none"
}

// Heatmap is a symmetric coefficient matrix over a set of columns. Known
// marks the cells the report actually stated; the diagonal is always known.
type Heatmap struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
	Known   [][]bool    `json:"known"`
}

// Heatmap lays the matrix rows out over the context columns, mapping the
// model's column labels onto the closest actual column. Without context the
// columns are taken from the rows in order of appearance.
func (r CorrelationResult) Heatmap(ctx Context) Heatmap {
	cols := ctx.NumericColumns()
	if !ctx.HasColumns() {
		cols = nil
		seen := map[string]bool{}
		for _, row := range r.Matrix {
			for _, c := range []string{row.Column1, row.Column2} {
				if c != "" && !seen[c] {
					seen[c] = true
					cols = append(cols, c)
				}
			}
		}
	}
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	h := Heatmap{Columns: cols, Values: make([][]float64, len(cols)), Known: make([][]bool, len(cols))}
	for i := range cols {
		h.Values[i] = make([]float64, len(cols))
		h.Known[i] = make([]bool, len(cols))
		h.Values[i][i] = 1
		h.Known[i][i] = true
	}
	for _, row := range r.Matrix {
		v, ok := row.Coefficient()
		if !ok {
			continue
		}
		i, iok := index[ctx.ResolveColumn(row.Column1)]
		j, jok := index[ctx.ResolveColumn(row.Column2)]
		if !iok || !jok || i == j {
			continue
		}
		h.Values[i][j], h.Values[j][i] = v, v
		h.Known[i][j], h.Known[j][i] = true, true
	}
	return h
}

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// firstNumber parses the first decimal number in s, ignoring thousands
// separators.
func firstNumber(s string) (float64, bool) {
	m := numberRe.FindString(stripThousands(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var thousandsRe = regexp.MustCompile(`(\d),(\d{3})`)

func stripThousands(s string) string {
	for {
		next := thousandsRe.ReplaceAllString(s, "$1$2")
		if next == s {
			return s
		}
		s = next
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
