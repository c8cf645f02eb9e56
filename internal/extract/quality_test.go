package extract

import (
	"testing"

	"github.com/hyperifyio/goinsight/internal/report"
)

const qualityReport = `SECTION: Data Completeness
- 3 missing values in Region
- All dates present
SECTION: Quality Metrics
| Metric | Score | Description |
| Completeness | 95 | Few gaps |
| Overall | 72% | Acceptable |
SECTION: Recommendations
- Fix invalid dates
`

func TestQuality_Sections(t *testing.T) {
	res := Quality(qualityReport, report.Parse(qualityReport))
	if len(res.Completeness) != 2 {
		t.Fatalf("completeness: got %q", res.Completeness)
	}
	if len(res.Metrics) != 2 {
		t.Fatalf("metrics: got %+v", res.Metrics)
	}
	want := QualityMetric{Metric: "Completeness", Score: "95", Description: "Few gaps"}
	if res.Metrics[0] != want {
		t.Fatalf("got %+v want %+v", res.Metrics[0], want)
	}
	if len(res.Recommendations) != 1 || res.Recommendations[0] != "Fix invalid dates" {
		t.Fatalf("recommendations: got %q", res.Recommendations)
	}
	if len(res.MissingValues) != 1 || res.MissingValues[0] != "3 missing values in Region" {
		t.Fatalf("missing values: got %q", res.MissingValues)
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Fix invalid dates" {
		t.Fatalf("errors: got %q", res.Errors)
	}
	overall, ok := res.OverallScore()
	if !ok || overall.Metric != "Overall" || overall.Status() != "warning" {
		t.Fatalf("overall: got %+v (%s)", overall, overall.Status())
	}
}

func TestQualityMetric_Status(t *testing.T) {
	cases := map[string]string{
		"95":     "good",
		"80/100": "good",
		"60%":    "warning",
		"45":     "poor",
		"n/a":    "unknown",
	}
	for score, want := range cases {
		if got := (QualityMetric{Score: score}).Status(); got != want {
			t.Fatalf("score %q: got %q want %q", score, got, want)
		}
	}
}

func TestQuality_Empty(t *testing.T) {
	res := Quality("", report.Parse(""))
	if !res.Empty() {
		t.Fatalf("expected empty, got %+v", res)
	}
	if _, ok := res.OverallScore(); ok {
		t.Fatalf("no metrics means no overall score")
	}
}
