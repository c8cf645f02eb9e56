package report

import (
	"regexp"
	"strings"
)

// maxRepairValue bounds a label value recovered from fused text; longer
// matches have run into unrelated text.
const maxRepairValue = 500

var (
	repairLabelRe  = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*):`)
	repairBulletRe = regexp.MustCompile(`- [^\n]+`)
	sectionMarkRe  = regexp.MustCompile(`(?i)SECTION:`)
)

// NeedsRepair reports whether a section looks like a mis-detected boundary:
// an oversized name or no content at all.
func NeedsRepair(s Section) bool {
	return len([]rune(s.Name)) > MaxSectionName || len(s.Content) == 0
}

// Repair re-derives the name of a suspicious section and backfills content
// from whatever text was fused into its name. Well-formed sections are
// returned unchanged and repairing twice equals repairing once.
func Repair(s Section) Section {
	if s.Name == "" || !NeedsRepair(s) {
		return s
	}
	name, residual := ResolveSectionName(s.Name)
	out := Section{
		Name:    name,
		Content: append([]Item(nil), s.Content...),
		Tables:  s.Tables,
	}
	if residual == "" {
		return out
	}

	labels := repairLabelRe.FindAllStringSubmatchIndex(residual, -1)
	seen := map[string]bool{}
	for i, m := range labels {
		key := strings.TrimSpace(residual[m[2]:m[3]])
		end := len(residual)
		if i+1 < len(labels) {
			end = labels[i+1][0]
		} else if loc := sectionMarkRe.FindStringIndex(residual[m[1]:]); loc != nil {
			end = m[1] + loc[0]
		}
		value := strings.TrimSpace(residual[m[1]:end])
		if key == "" || value == "" || len(value) > maxRepairValue {
			continue
		}
		if seen[key] || out.hasKey(key) {
			continue
		}
		seen[key] = true
		out.Content = append(out.Content, NewKeyValue(key, value))
	}

	for _, b := range repairBulletRe.FindAllString(residual, -1) {
		text := strings.TrimSpace(strings.TrimPrefix(b, "-"))
		if text == "" || out.hasText(text) {
			continue
		}
		out.Content = append(out.Content, NewBullet(text))
	}
	return out
}
