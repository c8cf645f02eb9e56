package extract

import (
	"regexp"
	"strings"

	"github.com/hyperifyio/goinsight/internal/report"
)

// Match strength of a raw-text chunk against a rule. A keyword in the chunk
// heading beats a keyword anywhere in the chunk, which beats the positional
// fallback.
const (
	noMatch = iota
	matchPosition
	matchBody
	matchHeading
)

// rule routes content about one topic into a named list or table.
type rule struct {
	field string
	// keywords are matched against the lowered raw chunk.
	keywords []string
	exclude  []string
	// position is the chunk index used when no chunk mentions a keyword.
	// Zero disables the fallback.
	position int
	// sections are matched against lowered section names in the
	// structured pass. Nil means keywords.
	sections []string
	// table rules parse pipe rows instead of bullets.
	table *rowLayout
}

// filter collects every bullet or item, from anywhere in the report, whose
// text matches re.
type filter struct {
	field string
	re    *regexp.Regexp
}

// rowLayout describes a fixed-column pipe-delimited row.
type rowLayout struct {
	width     int
	minFields int
	// header marks a header row when found in the lowered first cell.
	header string
}

// topicProfile is the per-category configuration of the engine.
type topicProfile struct {
	markers *regexp.Regexp
	rules   []rule
	filters []filter
}

// outcome holds everything the engine found, keyed by rule or filter field.
type outcome struct {
	lists map[string][]string
	rows  map[string][][]string
}

func (o outcome) list(field string) []string     { return o.lists[field] }
func (o outcome) table(field string) [][]string { return o.rows[field] }

// markerPattern compiles the SECTION: marker plus the given sub-topic labels
// into one case-insensitive alternation.
func markerPattern(labels ...string) *regexp.Regexp {
	parts := []string{`SECTION:`}
	for _, l := range labels {
		parts = append(parts, regexp.QuoteMeta(l))
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(parts, "|") + `)`)
}

// run applies the raw-text pass and then the structured pass.
func (p topicProfile) run(raw string, doc report.Document) outcome {
	out := outcome{lists: map[string][]string{}, rows: map[string][][]string{}}
	chunks := splitBefore(raw, p.markers)

	for _, r := range p.rules {
		for _, chunk := range r.pick(chunks) {
			if r.table != nil {
				for _, row := range pipeRows(chunk, *r.table) {
					out.addRow(r.field, row)
				}
				continue
			}
			for _, b := range bulletLines(chunk) {
				out.add(r.field, b)
			}
		}
	}
	for _, f := range p.filters {
		for _, b := range bulletLines(raw) {
			if f.re.MatchString(b) {
				out.add(f.field, b)
			}
		}
	}

	for _, s := range doc.Sections {
		name := strings.ToLower(s.Name)
		if r, ok := p.route(name); ok {
			for _, it := range s.Content {
				if r.table != nil {
					if row, ok := pipeRow(it.String(), *r.table); ok {
						out.addRow(r.field, row)
					}
					continue
				}
				out.add(r.field, it.Payload())
			}
		}
		for _, f := range p.filters {
			for _, it := range s.Content {
				if f.re.MatchString(it.Payload()) {
					out.add(f.field, it.Payload())
				}
			}
		}
	}
	return out
}

// route returns the first rule whose section keywords match a lowered
// section name.
func (p topicProfile) route(name string) (rule, bool) {
	for _, r := range p.rules {
		words := r.sections
		if words == nil {
			words = r.keywords
		}
		if containsAny(name, words) && !containsAny(name, r.exclude) {
			return r, true
		}
	}
	return rule{}, false
}

// pick selects the chunks a rule reads in the raw-text pass. Every chunk
// whose heading names the topic is used; otherwise the first chunk that
// mentions it; otherwise the chunk at the rule's position.
func (r rule) pick(chunks []string) []string {
	best := noMatch
	var picked []string
	for i, c := range chunks {
		level := r.strength(i, c)
		if level == noMatch || level < best {
			continue
		}
		if level > best {
			best, picked = level, nil
		}
		if level == matchHeading || len(picked) == 0 {
			picked = append(picked, c)
		}
	}
	return picked
}

func (r rule) strength(index int, chunk string) int {
	heading := strings.ToLower(firstLine(chunk))
	if containsAny(heading, r.keywords) && !containsAny(heading, r.exclude) {
		return matchHeading
	}
	lower := strings.ToLower(chunk)
	if containsAny(lower, r.keywords) && !containsAny(lower, r.exclude) {
		return matchBody
	}
	if r.position > 0 && index == r.position {
		return matchPosition
	}
	return noMatch
}

// add appends text to a list unless an equal entry exists.
func (o outcome) add(field, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	for _, existing := range o.lists[field] {
		if existing == text {
			return
		}
	}
	o.lists[field] = append(o.lists[field], text)
}

func (o outcome) addRow(field string, row []string) {
	key := strings.Join(row, "\x00")
	for _, existing := range o.rows[field] {
		if strings.Join(existing, "\x00") == key {
			return
		}
	}
	o.rows[field] = append(o.rows[field], row)
}

// splitBefore cuts text in front of every marker match. The first chunk is
// whatever precedes the first marker, possibly empty, so chunk indexes are
// stable whether or not the report starts with a marker.
func splitBefore(text string, re *regexp.Regexp) []string {
	if text == "" {
		return nil
	}
	marks := re.FindAllStringIndex(text, -1)
	out := make([]string, 0, len(marks)+1)
	prev := 0
	for _, m := range marks {
		out = append(out, text[prev:m[0]])
		prev = m[0]
	}
	return append(out, text[prev:])
}

var (
	bulletLineRe   = regexp.MustCompile(`(?m)^[ \t]*(?:-|•|\*)[ \t]+(.+?)[ \t]*$`)
	inlineBulletRe = regexp.MustCompile(`- ([^\n]+)`)
)

// bulletLines returns the text of every list line in s. Text that arrived as
// one unbroken line falls back to an unanchored scan.
func bulletLines(s string) []string {
	var out []string
	for _, m := range bulletLineRe.FindAllStringSubmatch(s, -1) {
		if t := strings.TrimSpace(m[1]); t != "" {
			out = append(out, t)
		}
	}
	if len(out) > 0 || strings.Contains(strings.TrimSpace(s), "\n") {
		return out
	}
	for _, m := range inlineBulletRe.FindAllStringSubmatch(s, -1) {
		if t := strings.TrimSpace(m[1]); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// pipeRows parses every line of s that fits the layout.
func pipeRows(s string, layout rowLayout) [][]string {
	var out [][]string
	for _, line := range strings.Split(s, "\n") {
		if row, ok := pipeRow(line, layout); ok {
			out = append(out, row)
		}
	}
	return out
}

var separatorCellRe = regexp.MustCompile(`^:?-{2,}:?$`)

// pipeRow splits one pipe-delimited line into exactly layout.width cells.
// Extra cells are folded into the last one and missing cells are empty.
func pipeRow(line string, layout rowLayout) ([]string, bool) {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "|") {
		return nil, false
	}
	line = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|"))
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	separator := true
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if !separatorCellRe.MatchString(p) {
			separator = false
		}
		cells = append(cells, p)
	}
	if separator || len(cells) < layout.minFields || cells[0] == "" {
		return nil, false
	}
	if layout.header != "" && strings.Contains(strings.ToLower(cells[0]), layout.header) {
		return nil, false
	}
	if len(cells) > layout.width {
		tail := strings.Join(cells[layout.width-1:], " | ")
		cells = append(cells[:layout.width-1], tail)
	}
	for len(cells) < layout.width {
		cells = append(cells, "")
	}
	return cells, true
}

// maxHeading bounds the heading of a chunk that arrived without line breaks.
const maxHeading = 60

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > maxHeading {
		s = s[:maxHeading]
	}
	return s
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(s, w) {
			return true
		}
	}
	return false
}
