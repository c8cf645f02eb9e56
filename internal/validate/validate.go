// Package validate checks parsed analysis reports against the section
// outline their category asks for.
package validate

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/goinsight/internal/report"
)

// Structure is the result of comparing a document's sections with an
// outline.
type Structure struct {
	// Present lists outline sections found, in outline order.
	Present []string `json:"present"`
	// Missing lists outline sections with no matching section.
	Missing []string `json:"missing"`
	// OutOfOrder lists present sections that appear before an earlier
	// outline entry.
	OutOfOrder []string `json:"outOfOrder"`
	// Empty lists present sections without any content or table.
	Empty []string `json:"empty"`
}

// OK reports whether every outline section is present.
func (s Structure) OK() bool { return len(s.Missing) == 0 }

// Warnings renders the findings as human-readable lines.
func (s Structure) Warnings() []string {
	out := []string{}
	for _, m := range s.Missing {
		out = append(out, fmt.Sprintf("missing section %q", m))
	}
	for _, m := range s.OutOfOrder {
		out = append(out, fmt.Sprintf("section %q is out of order", m))
	}
	for _, m := range s.Empty {
		out = append(out, fmt.Sprintf("section %q is empty", m))
	}
	return out
}

// CheckStructure matches each outline entry to a document section: an equal
// name (ignoring case) first, then a name containing the entry. Each
// document section satisfies at most one entry.
func CheckStructure(doc report.Document, outline []string) Structure {
	res := Structure{Present: []string{}, Missing: []string{}, OutOfOrder: []string{}, Empty: []string{}}
	used := make([]bool, len(doc.Sections))
	last := -1
	for _, want := range outline {
		idx := findSection(doc.Sections, used, want)
		if idx < 0 {
			res.Missing = append(res.Missing, want)
			continue
		}
		used[idx] = true
		res.Present = append(res.Present, want)
		if idx < last {
			res.OutOfOrder = append(res.OutOfOrder, want)
		} else {
			last = idx
		}
		if s := doc.Sections[idx]; len(s.Content) == 0 && len(s.Tables) == 0 {
			res.Empty = append(res.Empty, want)
		}
	}
	return res
}

func findSection(sections []report.Section, used []bool, want string) int {
	want = strings.TrimSpace(want)
	for i, s := range sections {
		if !used[i] && strings.EqualFold(strings.TrimSpace(s.Name), want) {
			return i
		}
	}
	lw := strings.ToLower(want)
	for i, s := range sections {
		if !used[i] && strings.Contains(strings.ToLower(s.Name), lw) {
			return i
		}
	}
	return -1
}

// ValidateStructure returns an error naming the outline sections missing
// from doc, or nil when all are present.
func ValidateStructure(doc report.Document, outline []string) error {
	s := CheckStructure(doc, outline)
	if s.OK() {
		return nil
	}
	return fmt.Errorf("report is missing %d of %d sections: %s", len(s.Missing), len(outline), strings.Join(s.Missing, ", "))
}

// HasSectionMarkers reports whether raw model output contains at least one
// "SECTION:" header line, the minimum for a structured parse.
func HasSectionMarkers(raw string) bool {
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "SECTION:") {
			return true
		}
	}
	return false
}
