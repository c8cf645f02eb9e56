package extract

import (
	"regexp"

	"github.com/hyperifyio/goinsight/internal/report"
)

// TrendsResult is the fact set of a trend analysis report.
type TrendsResult struct {
	Temporal    []string `json:"temporalTrends"`
	Value       []string `json:"valueTrends"`
	Comparative []string `json:"comparativeTrends"`
	Analysis    []string `json:"trendAnalysis"`
	Business    []string `json:"businessTrends"`
	Summary     []string `json:"summary"`
}

// Empty reports whether nothing was extracted.
func (r TrendsResult) Empty() bool {
	return len(r.Temporal) == 0 && len(r.Value) == 0 && len(r.Comparative) == 0 &&
		len(r.Analysis) == 0 && len(r.Business) == 0 && len(r.Summary) == 0
}

var trendsProfile = topicProfile{
	markers: markerPattern("Temporal Trends:", "Value Trends:", "Comparative Trends:", "Trend Analysis:", "Business Trends:", "Trends Summary:"),
	rules: []rule{
		{field: "temporal", keywords: []string{"temporal"}, position: 1},
		{field: "value", keywords: []string{"value trend"}, position: 2, sections: []string{"value"}},
		{field: "comparative", keywords: []string{"comparative"}, position: 3},
		{field: "analysis", keywords: []string{"trend analysis"}, position: 4, sections: []string{"analysis"}},
		{field: "business", keywords: []string{"business trend"}, position: 5, sections: []string{"business"}},
		{field: "summary", keywords: []string{"trends summary", "summary", "overall"}, position: 6, sections: []string{"summary"}},
	},
}

// Trends extracts trend lists grouped by sub-topic.
func Trends(raw string, doc report.Document) TrendsResult {
	o := trendsProfile.run(raw, doc)
	return TrendsResult{
		Temporal:    nonNil(o.list("temporal")),
		Value:       nonNil(o.list("value")),
		Comparative: nonNil(o.list("comparative")),
		Analysis:    nonNil(o.list("analysis")),
		Business:    nonNil(o.list("business")),
		Summary:     nonNil(o.list("summary")),
	}
}

// Direction of a trend statement.
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Stable     Direction = "stable"
)

var (
	upRe   = regexp.MustCompile(`(?i)\b(?:increas\w*|upward|growth|grow\w*|rising|rise|up)\b`)
	downRe = regexp.MustCompile(`(?i)\b(?:decreas\w*|downward|declin\w*|falling|fall|drop\w*|down)\b`)
)

// TrendDirection classifies a trend statement by its wording. A statement
// mentioning both directions counts as the one named first.
func TrendDirection(text string) Direction {
	up := upRe.FindStringIndex(text)
	down := downRe.FindStringIndex(text)
	switch {
	case up != nil && (down == nil || up[0] < down[0]):
		return Increasing
	case down != nil:
		return Decreasing
	}
	return Stable
}
