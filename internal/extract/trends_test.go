package extract

import (
	"testing"

	"github.com/hyperifyio/goinsight/internal/report"
)

func TestTrends_Sections(t *testing.T) {
	raw := "SECTION: Temporal Trends\n- Revenue rises each quarter\nSECTION: Trends Summary\n- Overall growth\n"
	res := Trends(raw, report.Parse(raw))
	if len(res.Temporal) != 1 || res.Temporal[0] != "Revenue rises each quarter" {
		t.Fatalf("temporal: got %q", res.Temporal)
	}
	if len(res.Summary) != 1 || res.Summary[0] != "Overall growth" {
		t.Fatalf("summary: got %q", res.Summary)
	}
}

func TestTrendDirection(t *testing.T) {
	cases := []struct {
		in   string
		want Direction
	}{
		{"Revenue increased steadily", Increasing},
		{"Sales are declining", Decreasing},
		{"Orders declined in May", Decreasing},
		{"Prices held flat", Stable},
		{"Growth slowed after the drop", Increasing},
		{"A drop followed by growth", Decreasing},
		{"Upward movement in Q4", Increasing},
	}
	for _, c := range cases {
		if got := TrendDirection(c.in); got != c.want {
			t.Fatalf("TrendDirection(%q) = %q want %q", c.in, got, c.want)
		}
	}
}
