package importer

import (
	"github.com/khighway/storefront-service/internal/pricing"
)

// RowError describes why one spreadsheet row was rejected
type RowError struct {
	Line    int     `json:"line"`             // 1-based line number in the source file
	Field   *string `json:"field,omitempty"`  // Offending column, when known
	Message string  `json:"message"`          // Human-readable reason
	Value   *string `json:"value,omitempty"`  // Original cell value
}

// Result is the outcome of parsing one campaign spreadsheet.
// Rejected rows never abort the import; they are reported alongside the
// campaigns that did parse.
type Result struct {
	TotalRows int                `json:"total_rows"`
	ValidRows int                `json:"valid_rows"`
	Campaigns []pricing.Campaign `json:"-"`
	Errors    []RowError         `json:"errors"`
}

func stringPtr(s string) *string {
	return &s
}
