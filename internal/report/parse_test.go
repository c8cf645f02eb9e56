package report

import (
	"reflect"
	"testing"
)

func TestParse_DataQualityAndKeyInsights(t *testing.T) {
	in := "SECTION: Data Quality\n- No missing values found\n- 2 inconsistent date formats detected\nSECTION: Key Insights\nRevenue: $1000"
	doc := Parse(in)
	if len(doc.Sections) != 2 {
		t.Fatalf("got %d sections want 2: %+v", len(doc.Sections), doc.Sections)
	}
	dq, ki := doc.Sections[0], doc.Sections[1]
	if dq.Name != "Data Quality" || ki.Name != "Key Insights" {
		t.Fatalf("unexpected names %q, %q", dq.Name, ki.Name)
	}
	want := []Item{NewBullet("No missing values found"), NewBullet("2 inconsistent date formats detected")}
	if !reflect.DeepEqual(dq.Content, want) {
		t.Fatalf("data quality content: got %+v want %+v", dq.Content, want)
	}
	if len(ki.Content) != 1 || ki.Content[0] != NewKeyValue("Revenue", "$1000") {
		t.Fatalf("key insights content: got %+v", ki.Content)
	}
}

func TestParse_Empty(t *testing.T) {
	doc := Parse("")
	if doc.HasIntro() {
		t.Fatalf("expected no intro, got %q", doc.IntroText)
	}
	if doc.Sections == nil || len(doc.Sections) != 0 {
		t.Fatalf("expected empty non-nil sections, got %#v", doc.Sections)
	}
	if doc := Parse("   \n\n  \t"); len(doc.Sections) != 0 || doc.HasIntro() {
		t.Fatalf("whitespace input should parse to an empty document: %+v", doc)
	}
}

func TestParse_PreservesDuplicateSectionsInOrder(t *testing.T) {
	in := "SECTION: Key Insights\n- a\nSECTION: Data Quality\n- b\nSECTION: Key Insights\n- c"
	doc := Parse(in)
	var names []string
	for _, s := range doc.Sections {
		names = append(names, s.Name)
	}
	want := []string{"Key Insights", "Data Quality", "Key Insights"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("got %v want %v", names, want)
	}
	if doc.Sections[2].Content[0].Text != "c" {
		t.Fatalf("third section lost its content: %+v", doc.Sections[2])
	}
}

func TestParse_KeepsWellFormedKeyValue(t *testing.T) {
	lines := []struct{ key, value string }{
		{"File Type", "CSV"},
		{"Column Names", "Date, Region, Revenue"},
		{"Confidence Score", "0.95"},
	}
	in := "SECTION: Document Overview\n"
	for _, l := range lines {
		in += l.key + ": " + l.value + "\n"
	}
	doc := Parse(in)
	for _, l := range lines {
		found := false
		for _, it := range doc.Sections[0].Content {
			if it.Kind == KeyValue && it.Key == l.key && it.Value == l.value {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing key-value %q=%q in %+v", l.key, l.value, doc.Sections[0].Content)
		}
	}
}

func TestParse_IntroText(t *testing.T) {
	doc := Parse("Here is the full analysis of your dataset.\nSECTION: Key Insights\n- Revenue grew")
	if doc.IntroText != "Here is the full analysis of your dataset." {
		t.Fatalf("intro: got %q", doc.IntroText)
	}

	doc = Parse("Short\n**Bold** lead line that is long enough\nSECTION: Key Insights\nTotal Revenue: $5")
	if doc.IntroText != "Total Revenue: $5" {
		t.Fatalf("synthesized intro: got %q", doc.IntroText)
	}
}

func TestParse_FusedHeaderContent(t *testing.T) {
	doc := Parse("SECTION: Key Insights Total Revenue: $5,000\n- Most Frequent Region: North (12 transactions)")
	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections", len(doc.Sections))
	}
	s := doc.Sections[0]
	if s.Name != "Key Insights" {
		t.Fatalf("name: got %q", s.Name)
	}
	if len(s.Content) != 2 || s.Content[0] != NewKeyValue("Total Revenue", "$5,000") {
		t.Fatalf("content: got %+v", s.Content)
	}
}

func TestParse_SingleLineStream(t *testing.T) {
	doc := Parse("SECTION: Data Quality - No missing values SECTION: AI Summary This dataset has fifty rows.")
	if len(doc.Sections) != 2 {
		t.Fatalf("got %d sections: %+v", len(doc.Sections), doc.Sections)
	}
	if doc.Sections[0].Name != "Data Quality" || doc.Sections[1].Name != "AI Summary" {
		t.Fatalf("names: %q %q", doc.Sections[0].Name, doc.Sections[1].Name)
	}
	if got := doc.Sections[0].Content; len(got) != 1 || got[0] != NewBullet("No missing values") {
		t.Fatalf("data quality content: %+v", got)
	}
	if got := doc.Sections[1].Content; len(got) != 1 || got[0] != NewText("This dataset has fifty rows.") {
		t.Fatalf("summary content: %+v", got)
	}
}

func TestParse_SingleLineStreamWithTrailingNewline(t *testing.T) {
	doc := Parse("SECTION: Data Quality - No missing values SECTION: AI Summary This dataset has fifty rows.\n\n")
	if len(doc.Sections) != 2 || doc.Sections[1].Name != "AI Summary" {
		t.Fatalf("got %d sections: %+v", len(doc.Sections), doc.Sections)
	}
}

func TestParse_MarkdownHeaderOpensSection(t *testing.T) {
	doc := Parse("**Strong Relationships:**\n- Quantity and Revenue move together\n\nSECTION: Insights\n- more")
	if len(doc.Sections) != 2 || doc.Sections[0].Name != "Strong Relationships" {
		t.Fatalf("got %+v", doc.Sections)
	}
	if doc.Sections[1].Name != "Insights" {
		t.Fatalf("second section: %q", doc.Sections[1].Name)
	}
}

func TestParse_CRLF(t *testing.T) {
	doc := Parse("SECTION: Key Insights\r\n- a\r\n- b\r\n")
	if len(doc.Sections) != 1 || len(doc.Sections[0].Content) != 2 {
		t.Fatalf("got %+v", doc.Sections)
	}
}

func TestParse_RepairsEmptyHeaderSection(t *testing.T) {
	doc := Parse("SECTION: Data Quality\nSECTION: Key Insights\n- a")
	if len(doc.Sections) != 2 {
		t.Fatalf("got %d sections", len(doc.Sections))
	}
	if doc.Sections[0].Name != "Data Quality" || len(doc.Sections[0].Content) != 0 {
		t.Fatalf("empty section should survive unchanged: %+v", doc.Sections[0])
	}
}
