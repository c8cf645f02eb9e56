package extract

import (
	"regexp"
	"strings"

	"github.com/hyperifyio/goinsight/internal/report"
)

// NotAvailable marks a KPI the report did not state.
const NotAvailable = "N/A"

// Fact is one labelled value from the report.
type Fact struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RegionStat is one line of the regional breakdown.
type RegionStat struct {
	Region       string `json:"region"`
	Transactions string `json:"transactions"`
	Revenue      string `json:"revenue"`
	AvgRevenue   string `json:"avgRevenue"`
}

// ProductStat is a product named among the revenue highlights.
type ProductStat struct {
	Rank    string `json:"rank"`
	Product string `json:"product"`
	Revenue string `json:"revenue"`
}

// OverviewResult is the fact set of an overview report. KPI values are the
// raw strings the model wrote, or NotAvailable.
type OverviewResult struct {
	TotalTransactions string        `json:"totalTransactions"`
	TotalRevenue      string        `json:"totalRevenue"`
	AvgRevenue        string        `json:"avgRevenue"`
	TopRegion         string        `json:"topRegion"`
	Regions           []RegionStat  `json:"revenueByRegion"`
	Products          []ProductStat `json:"topProducts"`
	KeyFacts          []Fact        `json:"keyFacts"`
	Insights          []string      `json:"keyInsights"`
	Highlights        []string      `json:"highlights"`
	QualityNotes      []string      `json:"dataQuality"`
	Summary           string        `json:"summary,omitempty"`
}

// Empty reports whether nothing was extracted.
func (r OverviewResult) Empty() bool {
	for _, v := range []string{r.TotalTransactions, r.TotalRevenue, r.AvgRevenue, r.TopRegion} {
		if v != NotAvailable && v != "" {
			return false
		}
	}
	return len(r.Regions) == 0 && len(r.Products) == 0 && len(r.KeyFacts) == 0 &&
		len(r.Insights) == 0 && len(r.Highlights) == 0 && len(r.QualityNotes) == 0 && r.Summary == ""
}

// kpi is one overview field with its label tests and ordered fallback
// patterns. The first non-empty match wins and is never overwritten.
type kpi struct {
	// keys are lowercase fragments of a key-value label naming the field.
	keys []string
	// cut truncates a key-value value at this separator.
	cut      string
	patterns []*regexp.Regexp
}

// countPat and amountPat capture a number with optional thousands
// separators, so a list comma after the value is not swallowed.
const (
	countPat  = `(\d{1,3}(?:,\d{3})+|\d+)`
	amountPat = `\$?(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`
)

var (
	transactionsKPI = kpi{
		keys: []string{"total transactions", "rows"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)total\s+transactions[:\-]?\s*` + countPat),
			regexp.MustCompile(`(?i)\brows[:\-]?\s*` + countPat),
		},
	}
	revenueKPI = kpi{
		keys: []string{"total revenue"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)total\s+revenue[:\-]?\s*` + amountPat),
			regexp.MustCompile(`(?i)\brevenue[:\-]?\s*` + amountPat),
		},
	}
	avgRevenueKPI = kpi{
		keys: []string{"average revenue", "avg revenue"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)average\s+revenue\s+per\s+transaction[:\-]?\s*` + amountPat),
			regexp.MustCompile(`(?i)(?:avg|average)\s+revenue[:\-]?\s*` + amountPat),
			regexp.MustCompile(`(?i)revenue\s+per\s+transaction[:\-]?\s*` + amountPat),
		},
	}
	topRegionKPI = kpi{
		keys: []string{"most frequent region", "top region"},
		cut:  "(",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:most\s+frequent|top)\s+region[:\-]?\s*([^(\n]+)`),
		},
	}
)

// fromKey returns the value of a key-value pair whose label names the field.
func (k kpi) fromKey(key, value string) string {
	if !containsAny(strings.ToLower(key), k.keys) {
		return ""
	}
	if k.cut != "" {
		if i := strings.Index(value, k.cut); i >= 0 {
			value = value[:i]
		}
	}
	return strings.TrimSpace(value)
}

// fromText tries the fallback patterns in order.
func (k kpi) fromText(text string) string {
	for _, re := range k.patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

func setOnce(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

var (
	regionLineRe = regexp.MustCompile(`(?im)^[ \t]*(?:[-•*][ \t]+)?([A-Za-z][\w .&/'-]*?)[ \t]*:[ \t]*Transactions:\s*` + countPat + `([^\n]*)$`)
	regionRevRe  = regexp.MustCompile(`(?i)total\s+revenue:\s*` + amountPat)
	regionAvgRe  = regexp.MustCompile(`(?i)avg(?:erage)?\s+revenue(?:\s+per\s+transaction)?:\s*` + amountPat)
	regionTxRe   = regexp.MustCompile(`(?i)transactions:\s*` + countPat)
	productRe    = regexp.MustCompile(`(?im)\b(top|lowest)\s+revenue\s+product[:\-]?\s*([^\n$]+?)\s*[-–]\s*` + amountPat)
)

// Overview extracts the headline KPIs, the regional and product breakdowns
// and the descriptive sections of an overview report. Structured content is
// read before the raw text so a clean "Total Revenue: ..." line wins over a
// looser mention elsewhere.
func Overview(raw string, doc report.Document) OverviewResult {
	var res OverviewResult
	fields := []struct {
		dst *string
		k   kpi
	}{
		{&res.TotalTransactions, transactionsKPI},
		{&res.TotalRevenue, revenueKPI},
		{&res.AvgRevenue, avgRevenueKPI},
		{&res.TopRegion, topRegionKPI},
	}

	for _, s := range doc.Sections {
		for _, t := range s.Tables {
			for _, row := range t.Rows {
				if len(row) < 2 {
					continue
				}
				for _, f := range fields {
					setOnce(f.dst, f.k.fromKey(row[0], row[1]))
				}
			}
		}
		for _, it := range s.Content {
			for _, f := range fields {
				if it.Kind == report.KeyValue {
					setOnce(f.dst, f.k.fromKey(it.Key, it.Value))
					continue
				}
				setOnce(f.dst, f.k.fromText(it.Text))
			}
		}
	}
	for _, f := range fields {
		setOnce(f.dst, f.k.fromText(raw))
		setOnce(f.dst, NotAvailable)
	}

	res.Regions = regions(raw, doc)
	res.Products = products(raw, doc)
	res.KeyFacts = []Fact{}
	res.Insights = []string{}
	res.Highlights = []string{}
	res.QualityNotes = []string{}
	seenInsight, seenHighlight, seenQuality := map[string]bool{}, map[string]bool{}, map[string]bool{}
	for _, s := range doc.Sections {
		name := strings.ToLower(s.Name)
		for _, it := range s.Content {
			switch {
			case strings.Contains(name, "document overview"):
				if it.Kind == report.KeyValue {
					res.KeyFacts = append(res.KeyFacts, Fact{Key: it.Key, Value: it.Value})
				}
			case strings.Contains(name, "key insights"):
				res.Insights = appendUnique(res.Insights, it.String(), seenInsight)
			case strings.Contains(name, "patterns"):
				res.Highlights = appendUnique(res.Highlights, it.Payload(), seenHighlight)
			case strings.Contains(name, "data quality"):
				res.QualityNotes = appendUnique(res.QualityNotes, it.Payload(), seenQuality)
			}
		}
		if strings.Contains(name, "summary") && res.Summary == "" {
			var parts []string
			for _, it := range s.Content {
				parts = append(parts, it.String())
			}
			res.Summary = strings.Join(parts, " ")
		}
	}
	if res.Summary == "" && doc.HasIntro() && len(doc.Sections) == 0 {
		res.Summary = doc.IntroText
	}
	return res
}

func appendUnique(list []string, v string, seen map[string]bool) []string {
	v = strings.TrimSpace(v)
	if v == "" || seen[v] {
		return list
	}
	seen[v] = true
	return append(list, v)
}

// regions reads "Region: Transactions: n, Total Revenue: $x, Avg ...: $y"
// lines, from the Regional Insights section first and then the raw text.
func regions(raw string, doc report.Document) []RegionStat {
	out := []RegionStat{}
	seen := map[string]bool{}
	add := func(r RegionStat) {
		key := strings.ToLower(r.Region)
		if r.Region == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, r)
	}
	for _, s := range doc.Sections {
		if !strings.Contains(strings.ToLower(s.Name), "regional") {
			continue
		}
		for _, it := range s.Content {
			if it.Kind != report.KeyValue {
				continue
			}
			tx := regionTxRe.FindStringSubmatch(it.Value)
			if tx == nil {
				continue
			}
			add(RegionStat{
				Region:       it.Key,
				Transactions: tx[1],
				Revenue:      submatch(regionRevRe, it.Value),
				AvgRevenue:   submatch(regionAvgRe, it.Value),
			})
		}
	}
	for _, m := range regionLineRe.FindAllStringSubmatch(raw, -1) {
		rest := m[3]
		add(RegionStat{
			Region:       strings.TrimSpace(m[1]),
			Transactions: m[2],
			Revenue:      submatch(regionRevRe, rest),
			AvgRevenue:   submatch(regionAvgRe, rest),
		})
	}
	return out
}

// products reads the top and lowest revenue product lines.
func products(raw string, doc report.Document) []ProductStat {
	out := []ProductStat{}
	seen := map[string]bool{}
	add := func(text string) {
		for _, m := range productRe.FindAllStringSubmatch(text, -1) {
			rank := strings.ToLower(m[1])
			if seen[rank] {
				continue
			}
			seen[rank] = true
			out = append(out, ProductStat{Rank: rank, Product: strings.TrimSpace(m[2]), Revenue: m[3]})
		}
	}
	for _, s := range doc.Sections {
		for _, it := range s.Content {
			add(it.String())
		}
	}
	add(raw)
	return out
}

func submatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// RegionTable lays the regional breakdown out as a table.
func (r OverviewResult) RegionTable() report.Table {
	t := report.Table{Headers: []string{"Region", "Transactions", "Total Revenue", "Avg Revenue per Transaction"}}
	for _, reg := range r.Regions {
		t.Rows = append(t.Rows, []string{reg.Region, reg.Transactions, reg.Revenue, reg.AvgRevenue})
	}
	return t
}

// AttachTables returns a copy of doc whose regional section carries the
// regional breakdown as a table.
func AttachTables(doc report.Document, r OverviewResult) report.Document {
	if len(r.Regions) == 0 {
		return doc
	}
	out := report.Document{IntroText: doc.IntroText, Sections: make([]report.Section, len(doc.Sections))}
	copy(out.Sections, doc.Sections)
	for i, s := range out.Sections {
		if strings.Contains(strings.ToLower(s.Name), "regional") && len(s.Tables) == 0 {
			out.Sections[i].Tables = []report.Table{r.RegionTable()}
			break
		}
	}
	return out
}
