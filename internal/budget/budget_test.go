package budget

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
	}
	for _, c := range cases {
		if got := EstimateTokens(c.in); got != c.want {
			t.Fatalf("EstimateTokens(%d chars) = %d, want %d", len(c.in), got, c.want)
		}
	}
	// system(6)->2, user message(12)->3, abc->1
	if got := EstimatePromptTokens("system", "user message", "abc"); got != 6 {
		t.Fatalf("EstimatePromptTokens = %d, want 6", got)
	}
}

func TestModelContextTokens(t *testing.T) {
	cases := map[string]int{
		"":                   8192,
		"gpt-4o":             128_000,
		"openai/GPT-4o-mini": 128_000,
		"gpt-4":              8_192,
		"gemini-1.5-flash":   1_000_000,
		"LLAMA-3.1-8b":       128_000,
		"mystery-200k":       200_000,
		"something-else":     8192,
	}
	for model, want := range cases {
		if got := ModelContextTokens(model); got != want {
			t.Fatalf("ModelContextTokens(%q) = %d, want %d", model, got, want)
		}
	}
}

func TestHeadroomAndRemaining(t *testing.T) {
	if HeadroomTokens("") != 512 {
		t.Fatalf("default model headroom should floor to 512")
	}
	if HeadroomTokens("gpt-4o") != 6400 {
		t.Fatalf("gpt-4o headroom: got %d", HeadroomTokens("gpt-4o"))
	}
	if got := RemainingContext("", 1000, 100); got != 8192-512-1000-100 {
		t.Fatalf("remaining: got %d", got)
	}
	if got := RemainingContext("", 0, 1_000_000); got != 0 {
		t.Fatalf("remaining should clamp at 0, got %d", got)
	}
}

func TestFitRows(t *testing.T) {
	row := strings.Repeat("x", 399) // 400 chars with newline -> 100 tokens
	rows := make([]string, 100)
	for i := range rows {
		rows[i] = row
	}
	// 8192 - 512 headroom - 1000 reserved - 0 fixed = 6680 -> 66 rows
	if got := FitRows("", 1000, "", rows); got != 66 {
		t.Fatalf("FitRows = %d, want 66", got)
	}
	if got := FitRows("gpt-4o", 1000, "", rows[:3]); got != 3 {
		t.Fatalf("small datasets fit entirely, got %d", got)
	}
	if got := FitRows("", 100_000, "", rows); got != 0 {
		t.Fatalf("no budget should fit no rows, got %d", got)
	}
}
