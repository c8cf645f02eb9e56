package report

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		line      string
		inSection bool
		want      Line
	}{
		{"SECTION: Key Insights", false, Line{Kind: LineSectionHeader, Text: "Key Insights"}},
		{"section:   Data Quality", true, Line{Kind: LineSectionHeader, Text: "Data Quality"}},
		{"**Strong Relationships:**", true, Line{Kind: LineMarkdownHeader, Text: "Strong Relationships"}},
		{"**Overview**:", false, Line{Kind: LineMarkdownHeader, Text: "Overview"}},
		{"- No missing values", true, Line{Kind: LineBullet, Text: "No missing values"}},
		{"*   Highly correlated pairs", true, Line{Kind: LineBullet, Text: "Highly correlated pairs"}},
		{"Revenue: $1000", true, Line{Kind: LineKeyValue, Key: "Revenue", Value: "$1000"}},
		{"Transaction Summary:", true, Line{Kind: LineSubsection, Text: "Transaction Summary:"}},
		{"Sales Summary: stable", true, Line{Kind: LineSubsection, Text: "Sales Summary: stable"}},
		{"Outlier Analysis: none", true, Line{Kind: LineSubsection, Text: "Outlier Analysis: none"}},
		{"Customer Analysis (if present): 4 customers", true, Line{Kind: LineSubsection, Text: "Customer Analysis (if present): 4 customers"}},
		{"1. Revenue: high", true, Line{Kind: LineSubsection, Text: "1. Revenue: high"}},
		{"Sales Summary: stable", false, Line{Kind: LineKeyValue, Key: "Sales Summary", Value: "stable"}},
		{": dangling", true, Line{Kind: LineText, Text: ": dangling"}},
		{"Quantity | Revenue | 0.82 | p:0.01", true, Line{Kind: LineText, Text: "Quantity | Revenue | 0.82 | p:0.01"}},
		{"Plain prose without separator", true, Line{Kind: LineText, Text: "Plain prose without separator"}},
	}
	for _, c := range cases {
		got := Classify(c.line, c.inSection)
		if got != c.want {
			t.Fatalf("Classify(%q, %v): got %+v want %+v", c.line, c.inSection, got, c.want)
		}
	}
}

func TestLineItem(t *testing.T) {
	if _, ok := (Line{Kind: LineBullet}).Item(); ok {
		t.Fatalf("empty bullet should not become an item")
	}
	if _, ok := (Line{Kind: LineSectionHeader, Text: "x"}).Item(); ok {
		t.Fatalf("headers are not items")
	}
	it, ok := (Line{Kind: LineKeyValue, Key: "a", Value: "b"}).Item()
	if !ok || it.String() != "a: b" {
		t.Fatalf("got %+v %v", it, ok)
	}
}
