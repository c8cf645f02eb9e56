package report

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"SECTION: Key Insights\n- plain", "SECTION: Key Insights\n- plain"},
		{"Revenue: <b>$1,000</b>", "Revenue: $1,000"},
		{"line one<br>line two", "line one\nline two"},
		{"Profit &amp; Loss", "Profit & Loss"},
		{"Revenue:\u00a0$5", "Revenue: $5"},
		{"\ufeffSECTION: AI Summary", "SECTION: AI Summary"},
		{"Significance | p<0.01", "Significance | p<0.01"},
		{"\ufb01le", "file"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q): got %q want %q", c.in, got, c.want)
		}
	}
}
