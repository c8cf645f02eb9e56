// Package render turns parsed reports and extraction results into JSON,
// Markdown and PDF documents.
package render

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/goinsight/internal/extract"
	"github.com/hyperifyio/goinsight/internal/report"
)

// NoData is written in place of a section that has nothing to show.
const NoData = "_No data available._"

// Options controls the Markdown output.
type Options struct {
	// Title overrides the category's default heading.
	Title string
	// Locale selects number formatting, e.g. "en-US" or "de".
	Locale string
	// Context maps correlation labels onto dataset columns for the heatmap.
	Context extract.Context
}

var titles = map[extract.Category]string{
	extract.CategoryOverview:    "Document Overview",
	extract.CategoryStatistical: "Statistical Analysis",
	extract.CategoryPatterns:    "Pattern Detection",
	extract.CategoryQuality:     "Data Quality Assessment",
	extract.CategoryTrends:      "Trend Analysis",
	extract.CategoryCorrelation: "Correlation Analysis",
}

// Title returns the display heading of a category.
func Title(c extract.Category) string {
	if t, ok := titles[c]; ok {
		return t
	}
	return "Analysis Report"
}

type mdWriter struct {
	b strings.Builder
	f Formatter
}

func (w *mdWriter) heading(level int, s string) {
	if w.b.Len() > 0 {
		w.b.WriteByte('\n')
	}
	fmt.Fprintf(&w.b, "%s %s\n\n", strings.Repeat("#", level), s)
}

func (w *mdWriter) para(s string) {
	w.b.WriteString(s)
	w.b.WriteString("\n")
}

func (w *mdWriter) list(title string, items []string) {
	w.heading(2, title)
	if len(items) == 0 {
		w.para(NoData)
		return
	}
	for _, it := range items {
		fmt.Fprintf(&w.b, "- %s\n", it)
	}
}

func (w *mdWriter) table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		w.para(NoData)
		return
	}
	if len(headers) == 0 {
		width := 0
		for _, r := range rows {
			width = max(width, len(r))
		}
		headers = make([]string, width)
	}
	w.row(headers)
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	w.row(sep)
	for _, r := range rows {
		cells := make([]string, len(headers))
		copy(cells, r)
		w.row(cells)
	}
}

func (w *mdWriter) row(cells []string) {
	w.b.WriteString("|")
	for _, c := range cells {
		fmt.Fprintf(&w.b, " %s |", strings.ReplaceAll(c, "|", `\|`))
	}
	w.b.WriteString("\n")
}

// Markdown renders an extraction result as a Markdown report. A nil or empty
// result renders the heading and a single no-data line.
func Markdown(c extract.Category, res extract.Result, opts Options) string {
	w := &mdWriter{f: NewFormatter(opts.Locale)}
	title := opts.Title
	if title == "" {
		title = Title(c)
	}
	w.heading(1, title)
	if res == nil || res.Empty() {
		w.para(NoData)
		return w.b.String()
	}
	switch r := res.(type) {
	case extract.OverviewResult:
		w.overview(r)
	case extract.StatisticalResult:
		w.statistical(r)
	case extract.PatternsResult:
		w.patterns(r)
	case extract.QualityResult:
		w.quality(r)
	case extract.TrendsResult:
		w.trends(r)
	case extract.CorrelationResult:
		w.correlation(r, opts.Context)
	default:
		w.para(NoData)
	}
	return w.b.String()
}

func (w *mdWriter) overview(r extract.OverviewResult) {
	w.heading(2, "Key Metrics")
	w.table([]string{"Metric", "Value"}, [][]string{
		{"Total Transactions", w.f.Count(r.TotalTransactions)},
		{"Total Revenue", w.f.Money(r.TotalRevenue)},
		{"Average Revenue per Transaction", w.f.Money(r.AvgRevenue)},
		{"Most Frequent Region", r.TopRegion},
	})

	w.heading(2, "Revenue by Region")
	var regions [][]string
	for _, reg := range r.Regions {
		regions = append(regions, []string{reg.Region, w.f.Count(reg.Transactions), w.f.Money(reg.Revenue), w.f.Money(reg.AvgRevenue)})
	}
	w.table([]string{"Region", "Transactions", "Total Revenue", "Avg Revenue"}, regions)

	w.heading(2, "Top Products")
	var products [][]string
	for _, p := range r.Products {
		products = append(products, []string{p.Rank, p.Product, w.f.Money(p.Revenue)})
	}
	w.table([]string{"Rank", "Product", "Revenue"}, products)

	w.heading(2, "Key Facts")
	var facts [][]string
	for _, kf := range r.KeyFacts {
		facts = append(facts, []string{kf.Key, kf.Value})
	}
	w.table([]string{"Fact", "Value"}, facts)

	w.list("Key Insights", r.Insights)
	w.list("Highlights", r.Highlights)
	w.list("Data Quality", r.QualityNotes)
	if r.Summary != "" {
		w.heading(2, "Summary")
		w.para(r.Summary)
	}
}

func (w *mdWriter) statistical(r extract.StatisticalResult) {
	w.heading(2, "Summary Statistics")
	headers := []string{"Statistic"}
	var order []string
	seen := map[string]bool{}
	for _, c := range r.Columns {
		headers = append(headers, c.Name)
		for _, s := range c.OrderedStats() {
			if !seen[s] {
				seen[s] = true
				order = append(order, s)
			}
		}
	}
	var rows [][]string
	for _, s := range order {
		row := []string{s}
		for _, c := range r.Columns {
			row = append(row, c.Stats[s])
		}
		rows = append(rows, row)
	}
	w.table(headers, rows)
	w.list("Distribution Analysis", r.Distribution)
	w.list("Comparative Statistics", r.Comparative)
}

func (w *mdWriter) patterns(r extract.PatternsResult) {
	w.list("Pattern Identification", r.Identification)
	w.list("Value Patterns", r.ValuePatterns)
	w.list("Relationship Patterns", r.RelationshipPatterns)
	w.list("Business Patterns", r.BusinessPatterns)
	w.list("Anomaly Patterns", r.AnomalyPatterns)
	w.list("Clusters and Segments", r.Clusters)
	w.list("Time-Related Patterns", r.Timeline)
}

func (w *mdWriter) quality(r extract.QualityResult) {
	if m, ok := r.OverallScore(); ok {
		w.heading(2, "Overall Quality")
		w.para(fmt.Sprintf("**%s**: %s (%s)", m.Metric, m.Score, m.Status()))
	}
	w.heading(2, "Quality Metrics")
	var rows [][]string
	for _, m := range r.Metrics {
		rows = append(rows, []string{m.Metric, m.Score, m.Status(), m.Description})
	}
	w.table([]string{"Metric", "Score", "Status", "Description"}, rows)
	w.list("Completeness", r.Completeness)
	w.list("Consistency", r.Consistency)
	w.list("Accuracy", r.Accuracy)
	w.list("Validity", r.Validity)
	w.list("Missing Values", r.MissingValues)
	w.list("Errors", r.Errors)
	w.list("Recommendations", r.Recommendations)
}

// directed prefixes statements that state a direction with it.
func directed(items []string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		if d := extract.TrendDirection(it); d != extract.Stable {
			it = fmt.Sprintf("**%s**: %s", d, it)
		}
		out[i] = it
	}
	return out
}

func (w *mdWriter) trends(r extract.TrendsResult) {
	w.list("Temporal Trends", directed(r.Temporal))
	w.list("Value Trends", directed(r.Value))
	w.list("Comparative Trends", r.Comparative)
	w.list("Trend Analysis", r.Analysis)
	w.list("Business Trends", r.Business)
	w.list("Summary", r.Summary)
}

func (w *mdWriter) correlation(r extract.CorrelationResult, ctx extract.Context) {
	w.heading(2, "Correlation Matrix")
	var rows [][]string
	for _, m := range r.Matrix {
		rows = append(rows, []string{m.Column1, m.Column2, m.Correlation, m.Strength, m.Direction, m.Significance})
	}
	w.table([]string{"Column 1", "Column 2", "Correlation", "Strength", "Direction", "Significance"}, rows)

	if h := r.Heatmap(ctx); len(r.Matrix) > 0 && len(h.Columns) > 1 {
		w.heading(2, "Heatmap")
		var cells [][]string
		for i, col := range h.Columns {
			row := []string{col}
			for j := range h.Columns {
				if h.Known[i][j] {
					row = append(row, fmt.Sprintf("%.2f", h.Values[i][j]))
				} else {
					row = append(row, "-")
				}
			}
			cells = append(cells, row)
		}
		w.table(append([]string{""}, h.Columns...), cells)
	}
	w.list("Relationships", r.Relationships)
	w.list("Relationship Patterns", r.RelationshipPatterns)
	w.list("Business Relationships", r.BusinessRelationships)
	w.list("Insights", r.Insights)
}

// Document renders a parsed report generically: one heading per section,
// items as bullets or key-value lines, and tables as Markdown tables.
func Document(doc report.Document, title string) string {
	w := &mdWriter{}
	if title != "" {
		w.heading(1, title)
	}
	if doc.HasIntro() {
		w.para(doc.IntroText)
	}
	for _, s := range doc.Sections {
		w.heading(2, s.Name)
		if len(s.Content) == 0 && len(s.Tables) == 0 {
			w.para(NoData)
			continue
		}
		for _, it := range s.Content {
			switch it.Kind {
			case report.Bullet:
				fmt.Fprintf(&w.b, "- %s\n", it.Text)
			case report.KeyValue:
				fmt.Fprintf(&w.b, "**%s**: %s\n\n", it.Key, it.Value)
			case report.Subsection:
				fmt.Fprintf(&w.b, "\n### %s\n\n", it.Text)
			default:
				w.para(it.Text)
			}
		}
		for _, t := range s.Tables {
			w.b.WriteByte('\n')
			w.table(t.Headers, t.Rows)
		}
	}
	return w.b.String()
}
