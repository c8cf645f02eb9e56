package report

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// KnownSections is the vocabulary headers are resolved against, in match
// priority order.
var KnownSections = []string{
	"Document Overview",
	"Key Insights",
	"Regional Insights",
	"Data Quality",
	"Patterns and Trends",
	"Patterns & Trends",
	"AI Summary",
	"Statistical Summary",
	"Column Statistics",
	"Distribution Analysis",
	"Comparative Statistics",
}

// IsKnownSection reports whether name is a vocabulary entry.
func IsKnownSection(name string) bool {
	for _, k := range KnownSections {
		if k == name {
			return true
		}
	}
	return false
}

// ResolveSectionName splits a raw header remainder into a section name and
// any content the model fused onto the same line. Matching gets looser at
// each step: exact prefix, whitespace-insensitive prefix, case-insensitive
// substring, first colon before MaxSectionName, and finally truncation.
func ResolveSectionName(raw string) (name, trailing string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	for _, k := range KnownSections {
		if strings.HasPrefix(raw, k) {
			return k, trimLead(raw[len(k):])
		}
	}
	for _, k := range KnownSections {
		if end, ok := collapsedPrefix(raw, k); ok {
			return k, trimLead(raw[end:])
		}
	}
	for _, k := range KnownSections {
		if i := indexFold(raw, k); i >= 0 {
			return k, trimLead(raw[i+len(k):])
		}
	}
	if i := strings.Index(raw, ":"); i > 0 && i < MaxSectionName {
		return strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+1:])
	}
	if utf8.RuneCountInString(raw) <= MaxSectionName {
		return raw, ""
	}
	cut := runeOffset(raw, MaxSectionName)
	return strings.TrimSpace(raw[:cut]), strings.TrimSpace(raw[cut:])
}

// collapsedPrefix reports whether raw starts with name when whitespace is
// ignored on both sides, and returns the byte offset in raw just past the
// matched name.
func collapsedPrefix(raw, name string) (int, bool) {
	i := 0
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		for i < len(raw) {
			c, size := utf8.DecodeRuneInString(raw[i:])
			if !unicode.IsSpace(c) {
				break
			}
			i += size
		}
		if i >= len(raw) {
			return 0, false
		}
		c, size := utf8.DecodeRuneInString(raw[i:])
		if c != r {
			return 0, false
		}
		i += size
	}
	return i, true
}

// trimLead drops the separator between a matched name and its fused content.
func trimLead(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), ":"))
}

// indexFold is a case-insensitive strings.Index for an ASCII needle.
func indexFold(s, needle string) int {
	for i := 0; i+len(needle) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

// runeOffset returns the byte offset of the n-th rune of s.
func runeOffset(s string, n int) int {
	count := 0
	for i := range s {
		if count == n {
			return i
		}
		count++
	}
	return len(s)
}
