package report

import (
	"strings"
	"testing"
)

func TestResolveSectionName(t *testing.T) {
	long := strings.Repeat("word ", 14) // 70 chars, no colon, no known name
	cases := []struct {
		raw, name, trailing string
	}{
		{"Key Insights", "Key Insights", ""},
		{"Key Insights Total Revenue: $5", "Key Insights", "Total Revenue: $5"},
		{"Key  Insights extra", "Key Insights", "extra"},
		{"KeyInsights: foo", "Key Insights", "foo"},
		{"Summary of key insights: revenue grew", "Key Insights", "revenue grew"},
		{"Patterns & Trends", "Patterns & Trends", ""},
		{"Quarterly Numbers: strong growth", "Quarterly Numbers", "strong growth"},
		{"Relationships", "Relationships", ""},
		{"", "", ""},
	}
	for _, c := range cases {
		name, trailing := ResolveSectionName(c.raw)
		if name != c.name || trailing != c.trailing {
			t.Fatalf("ResolveSectionName(%q): got (%q, %q) want (%q, %q)", c.raw, name, trailing, c.name, c.trailing)
		}
	}

	name, trailing := ResolveSectionName(long)
	if len(name) > MaxSectionName {
		t.Fatalf("fallback name too long: %d", len(name))
	}
	if name+" "+trailing != strings.TrimSpace(long) {
		t.Fatalf("fallback lost text: %q + %q", name, trailing)
	}
}

func TestResolveSectionName_RuneSafeTruncation(t *testing.T) {
	raw := strings.Repeat("é", 60)
	name, trailing := ResolveSectionName(raw)
	if len([]rune(name)) != MaxSectionName || len([]rune(trailing)) != 10 {
		t.Fatalf("got %d/%d runes", len([]rune(name)), len([]rune(trailing)))
	}
}
