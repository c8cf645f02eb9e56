package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads one sheet of a workbook: the named sheet when opts.Sheet is
// set, otherwise the first one.
func ReadXLSX(r io.Reader, opts Options) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyDataset
	}
	sheet := sheets[0]
	if opts.Sheet != "" {
		found := false
		for _, sh := range sheets {
			if strings.EqualFold(sh, opts.Sheet) {
				sheet, found = sh, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("sheet %q not found (have %s)", opts.Sheet, strings.Join(sheets, ", "))
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRecords(rows, opts.NoHeader), nil
}
