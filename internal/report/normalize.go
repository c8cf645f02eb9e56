package report

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// breakTags become line breaks when inline HTML is stripped.
var breakTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Normalize prepares model output for Parse: it drops inline HTML the model
// sometimes emits, unescapes entities, applies NFKC and turns non-breaking
// and zero-width characters into plain spaces or nothing.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	if strings.ContainsAny(text, "<&") {
		text = stripHTML(text)
	}
	text = norm.NFKC.String(text)
	text = strings.NewReplacer(
		"\u00a0", " ",
		"\u200b", "",
		"\ufeff", "",
		"\r\n", "\n",
	).Replace(text)
	return text
}

// stripHTML keeps text tokens, turns block-level tags into newlines and
// discards everything else. Text that does not tokenize is returned as-is.
func stripHTML(text string) string {
	z := html.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			if b.Len() == 0 {
				return html.UnescapeString(text)
			}
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if breakTags[string(name)] {
				b.WriteByte('\n')
			}
		}
	}
}
