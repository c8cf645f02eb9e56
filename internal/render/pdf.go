package render

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var (
	boldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe = regexp.MustCompile(`(?:^|\s)_([^_]+)_(?:$|\s)`)
	tableSep = regexp.MustCompile(`^\|(?:\s*:?-+:?\s*\|)+$`)
)

// PDF lays out Markdown produced by this package as a simple A4 document:
// headings, paragraphs, bullets and pipe tables. It does not implement
// general Markdown.
func PDF(w io.Writer, markdown string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	var table [][]string
	flush := func() {
		if len(table) > 0 {
			pdfTable(pdf, tr, table)
			table = nil
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(s, "|") {
			if !tableSep.MatchString(s) {
				table = append(table, splitRow(s))
			}
			continue
		}
		flush()
		switch {
		case s == "":
			pdf.Ln(3)
		case strings.HasPrefix(s, "#"):
			level := len(s) - len(strings.TrimLeft(s, "#"))
			text := strings.TrimSpace(s[level:])
			if text == "" {
				continue
			}
			size := 16.0
			switch level {
			case 2:
				size = 13
			case 3:
				size = 11.5
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.CellFormat(0, 8, tr(plain(text)), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
		case strings.HasPrefix(s, "- "):
			pdf.SetX(pdf.GetX() + 4)
			pdf.MultiCell(0, 5, tr("• "+plain(s[2:])), "", "L", false)
		default:
			pdf.MultiCell(0, 5, tr(plain(s)), "", "L", false)
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// pdfTable draws rows with equal column widths; the first row is the header.
func pdfTable(pdf *gofpdf.Fpdf, tr func(string) string, rows [][]string) {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	width := (pageW - left - right) / float64(cols)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetFont("Helvetica", "", 9)
	for i, r := range rows {
		if i == 0 {
			pdf.SetFont("Helvetica", "B", 9)
		}
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(r) {
				cell = fit(pdf, tr, plain(r[c]), width-2)
			}
			pdf.CellFormat(width, 6, cell, "1", 0, "L", i == 0, 0, "")
		}
		pdf.Ln(-1)
		if i == 0 {
			pdf.SetFont("Helvetica", "", 9)
		}
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.Ln(2)
}

// fit translates s and shortens it with an ellipsis until it fits width.
func fit(pdf *gofpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if out := tr(s); pdf.GetStringWidth(out) <= width {
		return out
	}
	r := []rune(s)
	for len(r) > 1 && pdf.GetStringWidth(tr(string(r)+"...")) > width {
		r = r[:len(r)-1]
	}
	return tr(string(r) + "...")
}

func splitRow(s string) []string {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "|"), "|")
	s = strings.ReplaceAll(s, `\|`, "\x00")
	parts := strings.Split(s, "|")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(strings.TrimSpace(p), "\x00", "|")
	}
	return parts
}

// plain drops inline emphasis markers.
func plain(s string) string {
	s = boldRe.ReplaceAllString(s, "$1")
	return italicRe.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ReplaceAll(m, "_", "")
	})
}
