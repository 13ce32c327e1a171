// Package importer parses campaign spreadsheets (CSV or XLSX) exported from
// back-office tools into validated campaigns. Bad rows are reported and
// skipped so one typo does not block a whole import.
package importer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Parse dispatches on the file extension
func Parse(filename string, content []byte) (*Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(content)
	case ".xlsx":
		return ParseXLSX(content)
	default:
		return nil, fmt.Errorf("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(filename))
	}
}
