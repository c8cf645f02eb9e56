package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// candidateDelimiters are tried in order; ties keep the earlier one.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// SniffDelimiter picks the delimiter that splits the first non-blank line
// into the most fields. Quoted sections are not counted.
func SniffDelimiter(firstLine string) rune {
	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		n := countUnquoted(firstLine, d)
		if n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func countUnquoted(line string, delim rune) int {
	n, quoted := 0, false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == delim && !quoted:
			n++
		}
	}
	return n
}

// peekSize bounds the prefix inspected for delimiter sniffing.
const peekSize = 64 * 1024

// ReadCSV reads delimited text, sniffing the delimiter from the first line.
func ReadCSV(r io.Reader, opts Options) (*Dataset, error) {
	br := bufio.NewReaderSize(r, peekSize)
	if bom, _ := br.Peek(3); string(bom) == "\ufeff" {
		_, _ = br.Discard(3)
	}
	head, err := br.Peek(peekSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	delim := SniffDelimiter(firstLine(string(head)))
	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = delim != '\t'
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	d := fromRecords(records, opts.NoHeader)
	d.Delimiter = delim
	return d, nil
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimRight(line, "\r"); strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}
