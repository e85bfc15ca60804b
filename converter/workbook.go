package converter

import (
	"fmt"

	"github.com/beanhealth/nutridb-export/logging"
	"github.com/xuri/excelize/v2"
)

// sourceTable is the format-independent view of the databank: one header row
// and the data rows below it, every cell as a raw string.
type sourceTable struct {
	header []string
	rows   [][]string
}

// readWorkbook extracts the named sheet from an Excel workbook. excelize
// returns displayed cell values, so numbers arrive as the strings the
// spreadsheet shows.
func readWorkbook(path string, sheet string) (*sourceTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook %s: %w", ErrLoad, path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close workbook", "path", path, "error", err)
		}
	}()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q from %s: %w", ErrLoad, sheet, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q in %s has no header row", ErrLoad, sheet, path)
	}

	return &sourceTable{header: rows[0], rows: rows[1:]}, nil
}
