package report

import (
	"regexp"
	"strings"
)

// LineKind tags one classified line of report text.
type LineKind int

const (
	LineText LineKind = iota
	LineSectionHeader
	LineMarkdownHeader
	LineBullet
	LineKeyValue
	LineSubsection
)

// Line is the result of classifying a single line. Text holds the header
// remainder, markdown header name, bullet text, subsection line or prose;
// Key and Value are set for key-value lines.
type Line struct {
	Kind  LineKind
	Text  string
	Key   string
	Value string
}

var (
	sectionPrefixRe  = regexp.MustCompile(`(?i)^SECTION:\s*`)
	markdownHeaderRe = regexp.MustCompile(`^\*\*([^*]+)\*\*:?\s*$`)
	bulletPrefixRe   = regexp.MustCompile(`^(?:-|\*|•)\s+`)
	numberedKeyRe    = regexp.MustCompile(`^\d+\.`)
)

// Classify tags one trimmed, non-empty line. inSection reports whether a
// section is open; heading-shaped key-value lines are only demoted to
// subsections inside a section.
func Classify(line string, inSection bool) Line {
	line = strings.TrimSpace(line)
	if loc := sectionPrefixRe.FindStringIndex(line); loc != nil {
		return Line{Kind: LineSectionHeader, Text: strings.TrimSpace(line[loc[1]:])}
	}
	if m := markdownHeaderRe.FindStringSubmatch(line); m != nil {
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[1]), ":"))
		return Line{Kind: LineMarkdownHeader, Text: name}
	}
	if loc := bulletPrefixRe.FindStringIndex(line); loc != nil {
		return Line{Kind: LineBullet, Text: strings.TrimSpace(line[loc[1]:])}
	}
	if line == "-" || line == "•" {
		return Line{Kind: LineBullet}
	}
	// Pipe rows stay whole so table readers see them verbatim.
	idx := strings.Index(line, ":")
	if idx < 0 || strings.Contains(line, "|") {
		return Line{Kind: LineText, Text: line}
	}
	key := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])
	switch {
	case key == "":
		return Line{Kind: LineText, Text: line}
	case value == "":
		return Line{Kind: LineSubsection, Text: line}
	case inSection && headingKey(key):
		return Line{Kind: LineSubsection, Text: line}
	}
	return Line{Kind: LineKeyValue, Key: key, Value: value}
}

// headingKey reports whether a key is a heading in disguise, e.g.
// "Customer Analysis (if applicable)" or "1. Revenue".
func headingKey(key string) bool {
	return strings.HasSuffix(key, "Summary") ||
		strings.HasSuffix(key, "Analysis") ||
		strings.Contains(key, "Customer Analysis") ||
		numberedKeyRe.MatchString(key)
}

// Item converts a classified content line into a section item. Header lines
// and empty bullets yield false.
func (l Line) Item() (Item, bool) {
	switch l.Kind {
	case LineBullet:
		if l.Text == "" {
			return Item{}, false
		}
		return NewBullet(l.Text), true
	case LineKeyValue:
		return NewKeyValue(l.Key, l.Value), true
	case LineSubsection:
		return NewSubsection(l.Text), true
	case LineText:
		if l.Text == "" {
			return Item{}, false
		}
		return NewText(l.Text), true
	}
	return Item{}, false
}

// IsHeader reports whether the line opens a section.
func (l Line) IsHeader() bool {
	return l.Kind == LineSectionHeader || l.Kind == LineMarkdownHeader
}
