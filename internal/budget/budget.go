// Package budget estimates prompt sizes and fits dataset rows into a model's
// context window.
package budget

import (
	"math"
	"strings"
)

// charsPerToken is the conservative chars-to-tokens ratio used throughout.
const charsPerToken = 4.0

// EstimateTokens returns the estimated token count of s, rounding up so
// estimates never undercount.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return int(math.Ceil(float64(len(s)) / charsPerToken))
}

// EstimatePromptTokens sums the estimates of every prompt part.
func EstimatePromptTokens(parts ...string) int {
	total := 0
	for _, p := range parts {
		total += EstimateTokens(p)
	}
	return total
}

// defaultContext is assumed for unknown models.
const defaultContext = 8192

// knownModelMax holds approximate context sizes keyed by model name prefix.
// Longer prefixes are checked first.
var knownModelMax = []struct {
	prefix string
	tokens int
}{
	{"gemini-1.5-pro", 2_000_000},
	{"gemini-1.5", 1_000_000},
	{"gemini-2", 1_000_000},
	{"gemini-pro", 32_768},
	{"gpt-4.1", 1_000_000},
	{"gpt-4o", 128_000},
	{"gpt-4-turbo", 128_000},
	{"gpt-4", 8_192},
	{"gpt-3.5-turbo", 16_384},
	{"claude-3", 200_000},
	{"llama-3.1", 128_000},
	{"llama-3", 8_192},
	{"mistral", 32_768},
	{"qwen2.5", 32_768},
}

// ModelContextTokens returns the approximate context window of a model.
// Matching is case-insensitive on a provider-stripped name, so
// "openai/gpt-4o-mini" resolves like "gpt-4o-mini".
func ModelContextTokens(model string) int {
	name := strings.ToLower(strings.TrimSpace(model))
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return defaultContext
	}
	switch {
	case strings.HasSuffix(name, "1m"):
		return 1_000_000
	case strings.HasSuffix(name, "200k"):
		return 200_000
	case strings.HasSuffix(name, "128k"):
		return 128_000
	case strings.HasSuffix(name, "32k"):
		return 32_768
	}
	for _, m := range knownModelMax {
		if strings.HasPrefix(name, m.prefix) {
			return m.tokens
		}
	}
	return defaultContext
}

// HeadroomTokens is the safety margin kept free for tokenizer and message
// framing overhead: 5% of the context, at least 512 tokens.
func HeadroomTokens(model string) int {
	dyn := int(math.Ceil(float64(ModelContextTokens(model)) * 0.05))
	if dyn < 512 {
		return 512
	}
	return dyn
}

// RemainingContext is the input budget left after reserving output tokens,
// headroom and the prompt itself. It is never negative.
func RemainingContext(model string, reservedOutput, promptTokens int) int {
	if reservedOutput < 0 {
		reservedOutput = 0
	}
	rem := ModelContextTokens(model) - HeadroomTokens(model) - reservedOutput - promptTokens
	if rem < 0 {
		return 0
	}
	return rem
}

// FitRows returns how many of rows, taken in order, fit next to the fixed
// prompt text. Each row is counted with its trailing newline.
func FitRows(model string, reservedOutput int, fixed string, rows []string) int {
	left := RemainingContext(model, reservedOutput, EstimateTokens(fixed))
	for i, r := range rows {
		cost := EstimateTokens(r + "\n")
		if cost > left {
			return i
		}
		left -= cost
	}
	return len(rows)
}
