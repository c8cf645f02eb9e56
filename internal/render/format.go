package render

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hyperifyio/goinsight/internal/dataset"
	"github.com/hyperifyio/goinsight/internal/extract"
)

// Formatter prints numbers for one locale.
type Formatter struct {
	p *message.Printer
}

// NewFormatter returns a formatter for a BCP 47 locale such as "en-US" or
// "de". An unparseable locale falls back to English.
func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.English
	}
	return Formatter{p: message.NewPrinter(tag)}
}

// Amount reformats a money value the model wrote ("$12500", "12,500.5")
// with grouping and two decimals. Values that are not numbers, including
// extract.NotAvailable, are returned unchanged.
func (f Formatter) Amount(s string) string {
	v, ok := dataset.ParseNumber(s)
	if !ok {
		return s
	}
	prefix := ""
	if strings.HasPrefix(strings.TrimSpace(s), "$") {
		prefix = "$"
	}
	return prefix + f.p.Sprintf("%.2f", v)
}

// Count reformats an integer count with grouping.
func (f Formatter) Count(s string) string {
	v, ok := dataset.ParseNumber(s)
	if !ok || v != float64(int64(v)) {
		return s
	}
	return f.p.Sprintf("%d", int64(v))
}

// Money formats a bare number as an amount with a dollar sign.
func (f Formatter) Money(s string) string {
	if s == "" || s == extract.NotAvailable {
		return s
	}
	out := f.Amount(s)
	if _, ok := dataset.ParseNumber(s); ok && !strings.HasPrefix(out, "$") {
		return "$" + out
	}
	return out
}
