package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxSectionName is the longest section name kept as-is. Longer names are
// treated as a header fused with body text.
const MaxSectionName = 50

// Document is the structured form of one report text.
type Document struct {
	IntroText string    `json:"introText,omitempty"`
	Sections  []Section `json:"sections"`
}

// HasIntro reports whether an introductory line was captured or synthesized.
func (d Document) HasIntro() bool { return d.IntroText != "" }

// Find returns the first section whose lowered name contains any of the
// given lowercase needles.
func (d Document) Find(needles ...string) (Section, bool) {
	for _, s := range d.Sections {
		name := strings.ToLower(s.Name)
		for _, n := range needles {
			if strings.Contains(name, n) {
				return s, true
			}
		}
	}
	return Section{}, false
}

// Section is a named group of content items in appearance order.
type Section struct {
	Name    string  `json:"name"`
	Content []Item  `json:"content"`
	Tables  []Table `json:"tables"`
}

// Text joins the section content back into lines, one item per line.
func (s Section) Text() string {
	var b strings.Builder
	for i, it := range s.Content {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(it.String())
	}
	return b.String()
}

// hasText reports whether an item with the given text or value already exists.
func (s Section) hasText(text string) bool {
	for _, it := range s.Content {
		if it.Text == text || (it.Kind == KeyValue && it.Value == text) {
			return true
		}
	}
	return false
}

func (s Section) hasKey(key string) bool {
	for _, it := range s.Content {
		if it.Kind == KeyValue && it.Key == key {
			return true
		}
	}
	return false
}

// Kind tags a content item.
type Kind int

const (
	Text Kind = iota
	Bullet
	KeyValue
	Subsection
)

var kindNames = map[Kind]string{
	Text:       "text",
	Bullet:     "bullet",
	KeyValue:   "keyValue",
	Subsection: "subsection",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind with its wire name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText accepts the wire names produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("report: unknown item type %q", string(b))
}

// Item is one classified line of a section. KeyValue items carry Key and
// Value; every other kind carries Text.
type Item struct {
	Kind  Kind   `json:"type"`
	Text  string `json:"text,omitempty"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
}

// NewBullet, NewKeyValue, NewSubsection and NewText build items of each kind.
func NewBullet(text string) Item     { return Item{Kind: Bullet, Text: text} }
func NewSubsection(text string) Item { return Item{Kind: Subsection, Text: text} }
func NewText(text string) Item       { return Item{Kind: Text, Text: text} }
func NewKeyValue(key, value string) Item {
	return Item{Kind: KeyValue, Key: key, Value: value}
}

// String renders a key-value item as "key: value" and any other item as its text.
func (it Item) String() string {
	if it.Kind == KeyValue {
		return it.Key + ": " + it.Value
	}
	return it.Text
}

// Payload returns the part of an item that carries a fact: the value of a
// key-value item, the text otherwise.
func (it Item) Payload() string {
	if it.Kind == KeyValue {
		return it.Value
	}
	return it.Text
}

// Table is explicitly tabular content. Rows may be ragged.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Cell returns the cell at row r, column c, or "" when out of range.
func (t Table) Cell(r, c int) string {
	if r < 0 || r >= len(t.Rows) {
		return ""
	}
	row := t.Rows[r]
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}

// Column returns the index of the header equal (case-insensitively) to name.
func (t Table) Column(name string) int {
	for i, h := range t.Headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// MarshalJSON keeps empty slices as [] instead of null.
func (s Section) MarshalJSON() ([]byte, error) {
	type alias Section
	a := alias(s)
	if a.Content == nil {
		a.Content = []Item{}
	}
	if a.Tables == nil {
		a.Tables = []Table{}
	}
	return json.Marshal(a)
}
