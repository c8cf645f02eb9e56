package extract

import (
	"regexp"
	"strings"

	"github.com/hyperifyio/goinsight/internal/report"
)

// QualityMetric is one row of the quality metrics table.
type QualityMetric struct {
	Metric      string `json:"metric"`
	Score       string `json:"score"`
	Description string `json:"description"`
}

// Status thresholds for a 0-100 quality score.
const (
	GoodScore    = 80
	WarningScore = 60
)

// ScoreValue parses the score cell.
func (m QualityMetric) ScoreValue() (float64, bool) { return firstNumber(m.Score) }

// Status classifies the score as "good", "warning" or "poor", or "unknown"
// when the cell holds no number.
func (m QualityMetric) Status() string {
	v, ok := m.ScoreValue()
	switch {
	case !ok:
		return "unknown"
	case v >= GoodScore:
		return "good"
	case v >= WarningScore:
		return "warning"
	}
	return "poor"
}

// QualityResult is the fact set of a data quality report.
type QualityResult struct {
	Completeness    []string        `json:"completeness"`
	Consistency     []string        `json:"consistency"`
	Accuracy        []string        `json:"accuracy"`
	Validity        []string        `json:"validity"`
	Metrics         []QualityMetric `json:"metrics"`
	Recommendations []string        `json:"recommendations"`
	MissingValues   []string        `json:"missingValues"`
	Errors          []string        `json:"errors"`
}

// Empty reports whether nothing was extracted.
func (r QualityResult) Empty() bool {
	return len(r.Completeness) == 0 && len(r.Consistency) == 0 && len(r.Accuracy) == 0 &&
		len(r.Validity) == 0 && len(r.Metrics) == 0 && len(r.Recommendations) == 0 &&
		len(r.MissingValues) == 0 && len(r.Errors) == 0
}

// OverallScore returns the metric whose name mentions "overall", falling
// back to the first metric.
func (r QualityResult) OverallScore() (QualityMetric, bool) {
	for _, m := range r.Metrics {
		if strings.Contains(strings.ToLower(m.Metric), "overall") {
			return m, true
		}
	}
	if len(r.Metrics) > 0 {
		return r.Metrics[0], true
	}
	return QualityMetric{}, false
}

var qualityProfile = topicProfile{
	markers: markerPattern("Data Completeness:", "Data Consistency:", "Data Accuracy:", "Data Validity:", "Quality Metrics:", "Recommendations:"),
	rules: []rule{
		{field: "completeness", keywords: []string{"completeness"}, position: 1},
		{field: "consistency", keywords: []string{"consistency"}, position: 2},
		{field: "accuracy", keywords: []string{"accuracy"}, position: 3},
		{field: "validity", keywords: []string{"validity"}, position: 4},
		{
			field:    "metrics",
			keywords: []string{"quality metrics"},
			position: 5,
			sections: []string{"metric"},
			table:    &rowLayout{width: 3, minFields: 3, header: "metric"},
		},
		{field: "recommendations", keywords: []string{"recommendation"}, position: 6},
	},
	filters: []filter{
		{field: "missing", re: regexp.MustCompile(`(?i)\b(?:missing|null|empty|blank)\b`)},
		{field: "errors", re: regexp.MustCompile(`(?i)\b(?:errors?|invalid|inconsisten\w*|violations?|mismatch\w*|out-of-range)\b`)},
	},
}

// Quality extracts completeness, consistency, accuracy and validity notes,
// the metrics table, recommendations, and every line about missing values
// or errors.
func Quality(raw string, doc report.Document) QualityResult {
	o := qualityProfile.run(raw, doc)
	res := QualityResult{
		Completeness:    nonNil(o.list("completeness")),
		Consistency:     nonNil(o.list("consistency")),
		Accuracy:        nonNil(o.list("accuracy")),
		Validity:        nonNil(o.list("validity")),
		Metrics:         []QualityMetric{},
		Recommendations: nonNil(o.list("recommendations")),
		MissingValues:   nonNil(o.list("missing")),
		Errors:          nonNil(o.list("errors")),
	}
	for _, cells := range o.table("metrics") {
		res.Metrics = append(res.Metrics, QualityMetric{Metric: cells[0], Score: cells[1], Description: cells[2]})
	}
	return res
}
