package extract

import (
	"regexp"

	"github.com/hyperifyio/goinsight/internal/report"
)

// PatternsResult is the fact set of a pattern detection report.
type PatternsResult struct {
	Identification       []string `json:"patternIdentification"`
	ValuePatterns        []string `json:"valuePatterns"`
	RelationshipPatterns []string `json:"relationshipPatterns"`
	BusinessPatterns     []string `json:"businessPatterns"`
	AnomalyPatterns      []string `json:"anomalyPatterns"`
	Clusters             []string `json:"clusters"`
	Timeline             []string `json:"timelinePatterns"`
}

// Empty reports whether nothing was extracted.
func (r PatternsResult) Empty() bool {
	return len(r.Identification) == 0 && len(r.ValuePatterns) == 0 && len(r.RelationshipPatterns) == 0 &&
		len(r.BusinessPatterns) == 0 && len(r.AnomalyPatterns) == 0 && len(r.Clusters) == 0 && len(r.Timeline) == 0
}

var patternsProfile = topicProfile{
	markers: markerPattern("Pattern Identification:", "Value Patterns:", "Relationship Patterns:", "Business Patterns:", "Anomaly Patterns:"),
	rules: []rule{
		{field: "identification", keywords: []string{"pattern identification"}, position: 1, sections: []string{"identification"}},
		{field: "value", keywords: []string{"value pattern"}, position: 2, sections: []string{"value"}},
		{field: "relationship", keywords: []string{"relationship pattern"}, position: 3, sections: []string{"relationship"}},
		{field: "business", keywords: []string{"business pattern"}, position: 4, sections: []string{"business"}},
		{field: "anomaly", keywords: []string{"anomaly pattern", "anomal"}, position: 5, sections: []string{"anomal", "outlier"}},
	},
	filters: []filter{
		{field: "clusters", re: regexp.MustCompile(`(?i)\b(?:cluster\w*|segment\w*|group\w*)\b`)},
		{field: "timeline", re: regexp.MustCompile(`(?i)\b(?:time|temporal|seasonal\w*|season\w*|dates?|daily|weekly|monthly|month\w*|years?|cycl\w*)\b`)},
	},
}

// Patterns extracts pattern lists grouped by sub-topic, plus cross-cutting
// lists of clustering and time-related observations.
func Patterns(raw string, doc report.Document) PatternsResult {
	o := patternsProfile.run(raw, doc)
	return PatternsResult{
		Identification:       nonNil(o.list("identification")),
		ValuePatterns:        nonNil(o.list("value")),
		RelationshipPatterns: nonNil(o.list("relationship")),
		BusinessPatterns:     nonNil(o.list("business")),
		AnomalyPatterns:      nonNil(o.list("anomaly")),
		Clusters:             nonNil(o.list("clusters")),
		Timeline:             nonNil(o.list("timeline")),
	}
}
