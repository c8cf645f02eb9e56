package extract

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/goinsight/internal/report"
)

// Category names one kind of analysis report.
type Category string

const (
	CategoryOverview    Category = "overview"
	CategoryStatistical Category = "statistical"
	CategoryPatterns    Category = "patterns"
	CategoryQuality     Category = "quality"
	CategoryTrends      Category = "trends"
	CategoryCorrelation Category = "correlation"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryOverview,
	CategoryStatistical,
	CategoryPatterns,
	CategoryQuality,
	CategoryTrends,
	CategoryCorrelation,
}

// categoryAliases accepts the longer names used in report titles and URLs.
var categoryAliases = map[string]Category{
	"statistics":       CategoryStatistical,
	"stats":            CategoryStatistical,
	"pattern":          CategoryPatterns,
	"data-quality":     CategoryQuality,
	"data_quality":     CategoryQuality,
	"dataquality":      CategoryQuality,
	"trend":            CategoryTrends,
	"correlations":     CategoryCorrelation,
	"summary":          CategoryOverview,
	"document-summary": CategoryOverview,
}

// ParseCategory maps a user-supplied name onto a Category.
func ParseCategory(s string) (Category, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == n {
			return c, nil
		}
	}
	if c, ok := categoryAliases[n]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Result is the fact set extracted for one category.
type Result interface {
	Empty() bool
}

// Run dispatches to the extractor of the category. An unknown category
// yields nil.
func Run(c Category, raw string, doc report.Document, ctx Context) Result {
	switch c {
	case CategoryOverview:
		return Overview(raw, doc)
	case CategoryStatistical:
		return Statistical(raw, doc, ctx)
	case CategoryPatterns:
		return Patterns(raw, doc)
	case CategoryQuality:
		return Quality(raw, doc)
	case CategoryTrends:
		return Trends(raw, doc)
	case CategoryCorrelation:
		return Correlation(raw, doc)
	}
	return nil
}
