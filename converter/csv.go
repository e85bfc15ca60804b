package converter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV loads the databank from a CSV mirror. Some upstream dumps are
// ISO-8859-1 rather than UTF-8, so the content is sniffed first and decoded
// when needed.
func readCSV(path string) (*sourceTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrLoad, path, err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	// Check if it's valid UTF-8
	var reader io.Reader
	if utf8.Valid(raw) {
		reader = bytes.NewReader(raw)
	} else {
		reader = charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw))
	}

	cr := csv.NewReader(reader)
	// Ragged rows are handled by the cleaning step, not rejected here
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed CSV in %s: %w", ErrLoad, path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrLoad, path)
	}

	return &sourceTable{header: records[0], rows: records[1:]}, nil
}
