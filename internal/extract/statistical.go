package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hyperifyio/goinsight/internal/report"
)

// StatNames are the summary statistics reported per column, in display order.
var StatNames = []string{
	"Mean", "Median", "Mode", "Std Dev", "Variance", "Min", "Max", "Range",
	"Q1 (25th Percentile)", "Q2 (50th Percentile)", "Q3 (75th Percentile)",
	"IQR", "Skewness", "Distribution Shape",
}

// statAliases maps alternative labels onto a canonical stat name. The
// "Statistic" header row only ends the previous value.
var statAliases = map[string]string{
	"standard deviation": "Std Dev",
	"std deviation":      "Std Dev",
	"minimum":            "Min",
	"maximum":            "Max",
	"q1":                 "Q1 (25th Percentile)",
	"q2":                 "Q2 (50th Percentile)",
	"q3":                 "Q3 (75th Percentile)",
	"25th percentile":    "Q1 (25th Percentile)",
	"50th percentile":    "Q2 (50th Percentile)",
	"75th percentile":    "Q3 (75th Percentile)",
	"statistic":          "",
}

// statLabelRe finds stat labels followed by a colon. Longer spellings come
// first so "Q1 (25th Percentile)" wins over "Q1".
var statLabelRe = func() *regexp.Regexp {
	labels := append([]string{}, StatNames...)
	for a := range statAliases {
		labels = append(labels, a)
	}
	sort.SliceStable(labels, func(i, j int) bool { return len(labels[i]) > len(labels[j]) })
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = regexp.QuoteMeta(l)
	}
	return regexp.MustCompile(`(?i)(?:^|[^A-Za-z0-9_])(` + strings.Join(quoted, "|") + `)\s*:`)
}()

// ColumnStats holds the statistics reported for one column.
type ColumnStats struct {
	Name  string            `json:"name"`
	Stats map[string]string `json:"stats"`
}

// OrderedStats returns the stat names present, canonical stats first in
// StatNames order, then the rest alphabetically.
func (c ColumnStats) OrderedStats() []string {
	var out []string
	seen := map[string]bool{}
	for _, n := range StatNames {
		if _, ok := c.Stats[n]; ok {
			out = append(out, n)
			seen[n] = true
		}
	}
	var rest []string
	for n := range c.Stats {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// StatisticalResult is the fact set of a statistical report.
type StatisticalResult struct {
	Columns      []ColumnStats `json:"columns"`
	Distribution []string      `json:"distributionAnalysis"`
	Comparative  []string      `json:"comparativeStats"`
}

// Empty reports whether nothing was extracted.
func (r StatisticalResult) Empty() bool {
	return len(r.Columns) == 0 && len(r.Distribution) == 0 && len(r.Comparative) == 0
}

// Column returns the stats of the named column.
func (r StatisticalResult) Column(name string) (ColumnStats, bool) {
	for _, c := range r.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnStats{}, false
}

// statCollector gathers stats per column; the first value seen wins.
type statCollector struct {
	ctx     Context
	columns []string
	// valueRes holds the "name: value" patterns of each column and its
	// aliases, in lookup order.
	valueRes map[string][]*regexp.Regexp
	stats    map[string]map[string]string
	dist     outcome
}

func newStatCollector(ctx Context) *statCollector {
	cols := ctx.NumericColumns()
	c := &statCollector{
		ctx:      ctx,
		columns:  cols,
		valueRes: make(map[string][]*regexp.Regexp, len(cols)),
		stats:    make(map[string]map[string]string, len(cols)),
		dist:     outcome{lists: map[string][]string{}},
	}
	for _, col := range cols {
		c.stats[col] = map[string]string{}
		for _, name := range append([]string{col}, ctx.aliases(col)...) {
			c.valueRes[col] = append(c.valueRes[col], columnValueRe(name))
		}
	}
	return c
}

func (c *statCollector) set(col, stat, value string) {
	value = strings.TrimSpace(value)
	if value == "" || stat == "" {
		return
	}
	m, ok := c.stats[col]
	if !ok {
		return
	}
	if _, exists := m[stat]; !exists {
		m[stat] = value
	}
}

// summary reads "Stat: Col: v, Col: v" blocks. A stat's values run until the
// next stat label.
func (c *statCollector) summary(body string) {
	labels := statLabelRe.FindAllStringSubmatchIndex(body, -1)
	for i, m := range labels {
		end := len(body)
		if i+1 < len(labels) {
			end = labels[i+1][2]
		}
		name := canonicalStat(body[m[2]:m[3]])
		if name == "" {
			continue
		}
		values := body[m[1]:end]
		for _, col := range c.columns {
			if v, ok := columnValue(values, c.valueRes[col]); ok {
				c.set(col, name, v)
			}
		}
	}
}

var (
	statLineRe  = regexp.MustCompile(`^(?:[-•*]\s*)?([^:]+?)\s*:\s*(.*)$`)
	inlineSepRe = regexp.MustCompile(`(?:^|\s)-\s+`)
)

// columnBlocks reads per-column blocks: a "Col:" line followed by
// "- stat: value" lines. "Col: - a: 1 - b: 2" on one line is accepted too.
func (c *statCollector) columnBlocks(body string) {
	current := ""
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		m := statLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		label, value := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		bullet := strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*")
		if col, ok := c.matchColumn(label); ok && !bullet {
			current = col
			if strings.HasPrefix(value, "-") {
				for _, part := range inlineSepRe.Split(value, -1) {
					if kv := statLineRe.FindStringSubmatch(strings.TrimSpace(part)); kv != nil {
						c.set(current, canonicalStat(kv[1]), kv[2])
					}
				}
			}
			continue
		}
		if value == "" {
			if !bullet {
				current = ""
			}
			continue
		}
		if current != "" {
			c.set(current, canonicalStat(label), value)
		}
	}
}

// matchColumn maps a block label onto a tracked column by equality, either
// directly or through the generic labels that resolve to it.
func (c *statCollector) matchColumn(label string) (string, bool) {
	n := normalizeColumn(label)
	for _, col := range c.columns {
		if normalizeColumn(col) == n {
			return col, true
		}
		for _, a := range c.ctx.aliases(col) {
			if normalizeColumn(a) == n {
				return col, true
			}
		}
	}
	return "", false
}

func (c *statCollector) result() StatisticalResult {
	res := StatisticalResult{
		Columns:      []ColumnStats{},
		Distribution: nonNil(c.dist.list("distribution")),
		Comparative:  nonNil(c.dist.list("comparative")),
	}
	for _, col := range c.columns {
		if len(c.stats[col]) > 0 {
			res.Columns = append(res.Columns, ColumnStats{Name: col, Stats: c.stats[col]})
		}
	}
	return res
}

var statSectionRe = markerPattern()

// Statistical extracts per-column summary statistics, per-column detail
// blocks and the distribution and comparison notes. Columns come from the
// dataset context, or the default template columns when it is unknown.
func Statistical(raw string, doc report.Document, ctx Context) StatisticalResult {
	c := newStatCollector(ctx)

	for _, chunk := range splitBefore(raw, statSectionRe) {
		head := strings.TrimSpace(chunk)
		if !strings.HasPrefix(strings.ToUpper(head), "SECTION:") {
			continue
		}
		head = strings.TrimSpace(head[len("SECTION:"):])
		first, rest := head, ""
		if i := strings.IndexByte(head, '\n'); i >= 0 {
			first, rest = head[:i], head[i+1:]
		}
		name, trailing := report.ResolveSectionName(first)
		c.section(strings.ToLower(name), strings.TrimSpace(trailing+"\n"+rest), nil)
	}
	for _, s := range doc.Sections {
		c.section(strings.ToLower(s.Name), s.Text(), s.Content)
	}
	return c.result()
}

// section dispatches one section body by name. Raw bodies come without
// items and keep their list markers; parsed sections pass their items.
func (c *statCollector) section(name, body string, items []report.Item) {
	switch {
	case strings.Contains(name, "statistical summary"):
		c.summary(body)
	case strings.Contains(name, "column statistics"):
		c.columnBlocks(body)
	case strings.Contains(name, "distribution analysis"):
		c.notes("distribution", body, items)
	case strings.Contains(name, "comparative statistics"):
		c.notes("comparative", body, items)
	}
}

// notes collects bullet lines from a raw body, or the items of a parsed
// section. Subsection labels are headings, not notes.
func (c *statCollector) notes(field, body string, items []report.Item) {
	if items == nil {
		for _, b := range bulletLines(body) {
			c.dist.add(field, b)
		}
		return
	}
	for _, it := range items {
		if it.Kind == report.Subsection {
			continue
		}
		c.dist.add(field, it.String())
	}
}

func canonicalStat(label string) string {
	label = strings.Join(strings.Fields(label), " ")
	if v, ok := statAliases[strings.ToLower(label)]; ok {
		return v
	}
	for _, n := range StatNames {
		if strings.EqualFold(n, label) {
			return n
		}
	}
	return label
}

// columnValue finds "col: value" inside a comma-separated value list, trying
// the column name first and then its aliases. A comma followed by three
// digits is a thousands separator, not the end of the value.
func columnValue(values string, res []*regexp.Regexp) (string, bool) {
	for _, re := range res {
		if m := re.FindStringSubmatch(values); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func columnValueRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[\s,;])` + regexp.QuoteMeta(name) + `\s*:\s*((?:,\d{3}|[^,\n])+)`)
}
