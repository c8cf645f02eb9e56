package report

import (
	"reflect"
	"strings"
	"testing"
)

func TestRepair_FusedOverview(t *testing.T) {
	s := Section{Name: "Document Overview File Type: CSV Purpose: Sales records Rows: 50 Columns: 6"}
	got := Repair(s)
	if got.Name != "Document Overview" {
		t.Fatalf("name: got %q", got.Name)
	}
	want := []Item{
		NewKeyValue("File Type", "CSV"),
		NewKeyValue("Purpose", "Sales records"),
		NewKeyValue("Rows", "50"),
		NewKeyValue("Columns", "6"),
	}
	if !reflect.DeepEqual(got.Content, want) {
		t.Fatalf("content: got %+v want %+v", got.Content, want)
	}
}

func TestRepair_Idempotent(t *testing.T) {
	inputs := []Section{
		{Name: "Document Overview File Type: CSV Purpose: Sales records Rows: 50 Columns: 6"},
		{Name: "Data Quality\n- No missing values\n- Consistent headers"},
		{Name: "Overview of the quarter with lots of fused prose and no separators at all here"},
		{Name: "Notes: bar"},
		{Name: "Key Insights", Content: []Item{NewBullet("kept")}},
		{Name: "Summary of key insights"},
	}
	for _, in := range inputs {
		once := Repair(in)
		twice := Repair(once)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("not idempotent for %q:\nonce  %+v\ntwice %+v", in.Name, once, twice)
		}
	}
}

func TestRepair_BulletsAndDedup(t *testing.T) {
	s := Section{
		Name:    "Data Quality\n- No missing values\n- Consistent headers\n- No missing values",
		Content: []Item{},
	}
	got := Repair(s)
	want := []Item{NewBullet("No missing values"), NewBullet("Consistent headers")}
	if got.Name != "Data Quality" || !reflect.DeepEqual(got.Content, want) {
		t.Fatalf("got %q %+v", got.Name, got.Content)
	}
}

func TestRepair_SkipsRunawayValues(t *testing.T) {
	s := Section{Name: "Key Insights Purpose: " + strings.Repeat("x", 600)}
	got := Repair(s)
	if len(got.Content) != 0 {
		t.Fatalf("expected runaway value to be skipped, got %+v", got.Content)
	}
}

func TestRepair_StopsAtSectionMarker(t *testing.T) {
	s := Section{Name: "Key Insights Purpose: sales data SECTION: Data Quality"}
	got := Repair(s)
	if len(got.Content) != 1 || got.Content[0] != NewKeyValue("Purpose", "sales data") {
		t.Fatalf("got %+v", got.Content)
	}
}

func TestRepair_LeavesWellFormedSection(t *testing.T) {
	s := Section{Name: "Key Insights", Content: []Item{NewKeyValue("Revenue", "$5")}}
	if got := Repair(s); !reflect.DeepEqual(got, s) {
		t.Fatalf("well-formed section changed: %+v", got)
	}
}
