package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperifyio/goinsight/internal/extract"
	"github.com/hyperifyio/goinsight/internal/report"
)

func TestFormatter(t *testing.T) {
	f := NewFormatter("en-US")
	cases := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{f.Amount, "12500", "12,500.00"},
		{f.Amount, "$1,234.5", "$1,234.50"},
		{f.Money, "12500", "$12,500.00"},
		{f.Money, "$40", "$40.00"},
		{f.Money, "277.78", "$277.78"},
		{f.Money, "varies", "varies"},
		{f.Money, extract.NotAvailable, extract.NotAvailable},
		{f.Count, "1200", "1,200"},
		{f.Count, "12.5", "12.5"},
		{f.Count, "many", "many"},
	}
	for _, c := range cases {
		if got := c.fn(c.in); got != c.want {
			t.Fatalf("format(%q): got %q want %q", c.in, got, c.want)
		}
	}
	if got := NewFormatter("not a locale!").Count("1000"); got != "1,000" {
		t.Fatalf("fallback locale: got %q", got)
	}
}

func TestMarkdownEmpty(t *testing.T) {
	for _, c := range extract.Categories {
		md := Markdown(c, nil, Options{})
		if !strings.HasPrefix(md, "# "+Title(c)+"\n") || !strings.Contains(md, NoData) {
			t.Fatalf("%s: %q", c, md)
		}
	}
	md := Markdown(extract.CategoryTrends, extract.Trends("", report.Document{}), Options{Title: "Sales trends"})
	if !strings.HasPrefix(md, "# Sales trends\n") || strings.Contains(md, "## ") {
		t.Fatalf("empty trends: %q", md)
	}
}

func TestMarkdownOverview(t *testing.T) {
	res := extract.OverviewResult{
		TotalTransactions: "1200",
		TotalRevenue:      "12500",
		AvgRevenue:        extract.NotAvailable,
		TopRegion:         "North",
		Regions:           []extract.RegionStat{{Region: "North", Transactions: "18", Revenue: "5000", AvgRevenue: "277.78"}},
		Insights:          []string{"Revenue | grew"},
	}
	md := Markdown(extract.CategoryOverview, res, Options{})
	for _, want := range []string{
		"| Total Transactions | 1,200 |",
		"| Total Revenue | $12,500.00 |",
		"| Average Revenue per Transaction | N/A |",
		"| North | 18 | $5,000.00 | $277.78 |",
		"## Top Products\n\n" + NoData,
		"- Revenue | grew",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("missing %q in\n%s", want, md)
		}
	}
	if strings.Contains(md, "## Summary") {
		t.Fatalf("summary rendered without text")
	}
}

func TestMarkdownStatistical(t *testing.T) {
	res := extract.StatisticalResult{
		Columns: []extract.ColumnStats{
			{Name: "Quantity", Stats: map[string]string{"Mean": "5.2", "Max": "12"}},
			{Name: "Revenue", Stats: map[string]string{"Mean": "100", "Kurtosis": "1.1"}},
		},
	}
	md := Markdown(extract.CategoryStatistical, res, Options{})
	for _, want := range []string{
		"| Statistic | Quantity | Revenue |",
		"| Mean | 5.2 | 100 |",
		"| Max | 12 |  |",
		"| Kurtosis |  | 1.1 |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("missing %q in\n%s", want, md)
		}
	}
}

func TestMarkdownQualityAndTrends(t *testing.T) {
	q := extract.QualityResult{Metrics: []extract.QualityMetric{
		{Metric: "Overall Quality", Score: "72", Description: "fair"},
	}}
	md := Markdown(extract.CategoryQuality, q, Options{})
	if !strings.Contains(md, "**Overall Quality**: 72 (warning)") || !strings.Contains(md, "| Overall Quality | 72 | warning | fair |") {
		t.Fatalf("quality:\n%s", md)
	}

	tr := extract.TrendsResult{Temporal: []string{"Sales increased in March", "Flat in April"}}
	md = Markdown(extract.CategoryTrends, tr, Options{})
	if !strings.Contains(md, "- **increasing**: Sales increased in March\n- Flat in April\n") {
		t.Fatalf("trends:\n%s", md)
	}
}

func TestMarkdownCorrelationHeatmap(t *testing.T) {
	res := extract.CorrelationResult{Matrix: []extract.CorrelationRow{
		{Column1: "Price", Column2: "Quantity", Correlation: "-0.45", Strength: "moderate", Direction: "negative"},
	}}
	md := Markdown(extract.CategoryCorrelation, res, Options{})
	for _, want := range []string{
		"| Price | Quantity | -0.45 | moderate | negative |  |",
		"## Heatmap",
		"| Price | 1.00 | -0.45 |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("missing %q in\n%s", want, md)
		}
	}
}

func TestDocument(t *testing.T) {
	doc := report.Document{
		IntroText: "Sales report",
		Sections: []report.Section{
			{Name: "Key Insights", Content: []report.Item{report.NewBullet("up"), report.NewKeyValue("Rows", "50")}},
			{Name: "Empty"},
			{Name: "Table", Tables: []report.Table{{Rows: [][]string{{"a", "b"}}}}},
		},
	}
	md := Document(doc, "Parsed")
	for _, want := range []string{"# Parsed\n", "Sales report\n", "- up\n", "**Rows**: 50", "## Empty\n\n" + NoData, "|  |  |\n| --- | --- |\n| a | b |"} {
		if !strings.Contains(md, want) {
			t.Fatalf("missing %q in\n%s", want, md)
		}
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	a := struct {
		Category extract.Category `json:"category"`
		Empty    bool             `json:"empty"`
		Warnings []string         `json:"warnings"`
	}{extract.CategoryPatterns, true, []string{}}
	if err := JSON(&buf, a); err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back["empty"] != true || back["category"] != "patterns" {
		t.Fatalf("got %v", back)
	}
	if w, ok := back["warnings"].([]any); !ok || len(w) != 0 {
		t.Fatalf("warnings: %v", back["warnings"])
	}
	if !strings.Contains(buf.String(), "\n  \"category\"") {
		t.Fatalf("not indented: %s", buf.String())
	}
}

func TestPDF(t *testing.T) {
	md := Markdown(extract.CategoryCorrelation, extract.CorrelationResult{
		Matrix:   []extract.CorrelationRow{{Column1: "Price", Column2: "Quantity", Correlation: "-0.45"}},
		Insights: []string{"Price and quantity move in opposite directions – café sales €"},
	}, Options{})
	var buf bytes.Buffer
	if err := PDF(&buf, md); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestSplitRowAndPlain(t *testing.T) {
	got := splitRow(`| a | b \| c |  |`)
	if len(got) != 3 || got[1] != "b | c" || got[2] != "" {
		t.Fatalf("split: %q", got)
	}
	if p := plain("**Mean**: 5 _No data available._"); p != "Mean: 5 No data available." {
		t.Fatalf("plain: %q", p)
	}
}
