package converter

import "errors"

// Pipeline failures are classified by stage so callers can tell what went
// wrong without parsing messages. Every error returned by Convert wraps
// exactly one of these sentinels.
var (
	// ErrLoad covers source file problems: missing file, unreadable file,
	// corrupt workbook, missing sheet, malformed CSV.
	ErrLoad = errors.New("load error")
	// ErrSchema means the source table is missing one or more required columns.
	ErrSchema = errors.New("schema error")
	// ErrSerialization covers failures turning the cleaned records into JSON,
	// including non-finite values that have no JSON representation.
	ErrSerialization = errors.New("serialization error")
	// ErrWrite covers destination file problems.
	ErrWrite = errors.New("write error")
)
