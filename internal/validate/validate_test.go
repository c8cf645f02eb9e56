package validate

import (
	"strings"
	"testing"

	"github.com/hyperifyio/goinsight/internal/report"
)

func doc(names ...string) report.Document {
	var d report.Document
	for _, n := range names {
		d.Sections = append(d.Sections, report.Section{Name: n, Content: []report.Item{report.NewText("x")}})
	}
	return d
}

func TestCheckStructure_AllPresent(t *testing.T) {
	s := CheckStructure(doc("Temporal Trends", "value trends", "Trends Summary and Outlook"), []string{"Temporal Trends", "Value Trends", "Trends Summary"})
	if !s.OK() || len(s.Present) != 3 || len(s.OutOfOrder) != 0 || len(s.Warnings()) != 0 {
		t.Fatalf("got %+v", s)
	}
}

func TestCheckStructure_MissingOrderEmpty(t *testing.T) {
	d := doc("Recommendations", "Data Completeness")
	d.Sections = append(d.Sections, report.Section{Name: "Data Validity"})
	s := CheckStructure(d, []string{"Data Completeness", "Data Validity", "Quality Metrics", "Recommendations"})
	if s.OK() {
		t.Fatalf("expected missing sections")
	}
	if len(s.Missing) != 1 || s.Missing[0] != "Quality Metrics" {
		t.Fatalf("missing: %v", s.Missing)
	}
	if len(s.OutOfOrder) != 1 || s.OutOfOrder[0] != "Recommendations" {
		t.Fatalf("out of order: %v", s.OutOfOrder)
	}
	if len(s.Empty) != 1 || s.Empty[0] != "Data Validity" {
		t.Fatalf("empty: %v", s.Empty)
	}
	if w := s.Warnings(); len(w) != 3 || w[0] != `missing section "Quality Metrics"` {
		t.Fatalf("warnings: %v", w)
	}
}

func TestCheckStructure_SectionUsedOnce(t *testing.T) {
	s := CheckStructure(doc("Relationship Patterns"), []string{"Relationship Patterns", "Patterns"})
	if len(s.Missing) != 1 || s.Missing[0] != "Patterns" {
		t.Fatalf("got %+v", s)
	}
}

func TestValidateStructure(t *testing.T) {
	if err := ValidateStructure(doc("Insights"), []string{"Insights"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := ValidateStructure(report.Document{}, []string{"Insights", "Relationships"})
	if err == nil || !strings.Contains(err.Error(), "missing 2 of 2 sections: Insights, Relationships") {
		t.Fatalf("got %v", err)
	}
}

func TestHasSectionMarkers(t *testing.T) {
	if !HasSectionMarkers("intro\n  section: Key Insights\n- a") {
		t.Fatalf("expected marker")
	}
	if HasSectionMarkers("Key Insights:\n- a") {
		t.Fatalf("unexpected marker")
	}
}
