package report

import (
	"regexp"
	"strings"
)

// minIntroChars is the length a prose line must exceed before a section
// opens to be taken as the document intro.
const minIntroChars = 20

var (
	sectionMarkerRe = regexp.MustCompile(`(?i)SECTION:`)
	boldLeadRe      = regexp.MustCompile(`^\*\*`)
)

// splitState is the accumulator threaded through the line fold.
type splitState struct {
	open     *Section
	sections []Section
	intro    string
}

// Parse converts report text into a Document. It never fails: empty input
// yields a document with no intro and no sections.
func Parse(text string) Document {
	st := splitState{sections: []Section{}}
	for _, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		st = st.step(line)
	}
	if st.open != nil {
		st.sections = append(st.sections, Repair(*st.open))
		st.open = nil
	}
	for i := range st.sections {
		st.sections[i] = Repair(st.sections[i])
	}

	doc := Document{IntroText: st.intro, Sections: st.sections}
	if !doc.HasIntro() && len(doc.Sections) > 0 && len(doc.Sections[0].Content) > 0 {
		doc.IntroText = doc.Sections[0].Content[0].String()
	}
	return doc
}

// step folds one trimmed, non-empty line into the state.
func (st splitState) step(line string) splitState {
	l := Classify(line, st.open != nil)
	if l.IsHeader() {
		if l.Text == "" {
			return st
		}
		name, trailing := ResolveSectionName(l.Text)
		if st.open != nil {
			st.sections = append(st.sections, *st.open)
		}
		st.open = &Section{Name: name}
		if trailing != "" {
			if it, ok := Classify(trailing, true).Item(); ok {
				st.open.Content = append(st.open.Content, it)
			}
		}
		return st
	}
	if st.open != nil {
		if it, ok := l.Item(); ok {
			st.open.Content = append(st.open.Content, it)
		}
		return st
	}
	if st.intro == "" && len(line) > minIntroChars && !boldLeadRe.MatchString(line) {
		st.intro = line
	}
	return st
}

// splitLines breaks text into lines. A single line carrying several
// SECTION: markers is broken before each marker instead.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	// A streamed single line often ends with a newline.
	text = strings.TrimRight(text, "\n")
	lines := strings.Split(text, "\n")
	if len(lines) != 1 {
		return lines
	}
	marks := sectionMarkerRe.FindAllStringIndex(text, -1)
	if len(marks) == 0 {
		return lines
	}
	out := make([]string, 0, len(marks)+1)
	prev := 0
	for _, m := range marks {
		if m[0] > prev {
			out = append(out, text[prev:m[0]])
		}
		prev = m[0]
	}
	return append(out, text[prev:])
}
