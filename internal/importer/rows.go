package importer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/khighway/storefront-service/internal/pricing"
)

const invalidIndex = -1

// columnIndices holds the resolved column position per campaign field
type columnIndices struct {
	id       int
	name     int
	kind     int
	value    int
	status   int
	start    int
	end      int
	products int
}

// headerAliases accepts the header spellings seen across back-office
// exports. Matching is case-insensitive on the trimmed header.
var headerAliases = map[string][]string{
	"id":       {"id", "campaign_id", "campaign id"},
	"name":     {"name", "campaign", "campaign_name", "campaign name", "title"},
	"kind":     {"kind", "type", "discount_type", "discount type"},
	"value":    {"value", "amount", "discount", "discount_value", "discount value"},
	"status":   {"status", "state", "active"},
	"start":    {"start", "start_time", "start time", "starts", "start_date", "start date", "from"},
	"end":      {"end", "end_time", "end time", "ends", "end_date", "end date", "to", "until"},
	"products": {"products", "product_ids", "product ids", "skus"},
}

func matchHeader(header string, field string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	for _, alias := range headerAliases[field] {
		if h == alias {
			return true
		}
	}
	return false
}

// buildColumnIndices resolves header names to column positions. Name, kind,
// value, start and end are required; id, status and products are optional.
func buildColumnIndices(headers []string) (columnIndices, error) {
	idx := columnIndices{
		id:       invalidIndex,
		name:     invalidIndex,
		kind:     invalidIndex,
		value:    invalidIndex,
		status:   invalidIndex,
		start:    invalidIndex,
		end:      invalidIndex,
		products: invalidIndex,
	}

	for i, h := range headers {
		switch {
		case idx.id == invalidIndex && matchHeader(h, "id"):
			idx.id = i
		case idx.name == invalidIndex && matchHeader(h, "name"):
			idx.name = i
		case idx.kind == invalidIndex && matchHeader(h, "kind"):
			idx.kind = i
		case idx.value == invalidIndex && matchHeader(h, "value"):
			idx.value = i
		case idx.status == invalidIndex && matchHeader(h, "status"):
			idx.status = i
		case idx.start == invalidIndex && matchHeader(h, "start"):
			idx.start = i
		case idx.end == invalidIndex && matchHeader(h, "end"):
			idx.end = i
		case idx.products == invalidIndex && matchHeader(h, "products"):
			idx.products = i
		}
	}

	required := []struct {
		field string
		pos   int
	}{
		{"name", idx.name},
		{"kind", idx.kind},
		{"value", idx.value},
		{"start", idx.start},
		{"end", idx.end},
	}
	for _, r := range required {
		if r.pos == invalidIndex {
			return idx, fmt.Errorf("required column %q not found in headers", r.field)
		}
	}
	return idx, nil
}

// buildResult maps raw spreadsheet rows (headers first) into campaigns.
// Each bad row is reported and skipped; good rows still import.
func buildResult(rows [][]string) *Result {
	result := &Result{
		Campaigns: make([]pricing.Campaign, 0),
		Errors:    make([]RowError, 0),
	}

	if len(rows) == 0 {
		return result
	}

	indices, err := buildColumnIndices(rows[0])
	if err != nil {
		result.Errors = append(result.Errors, RowError{Line: 1, Message: err.Error()})
		result.TotalRows = len(rows) - 1
		return result
	}

	for i := 1; i < len(rows); i++ {
		line := i + 1
		if isEmptyRow(rows[i]) {
			continue
		}
		result.TotalRows++

		campaign, rowErrs := mapRow(rows[i], line, indices)
		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			continue
		}

		result.Campaigns = append(result.Campaigns, campaign)
		result.ValidRows++
	}
	return result
}

func mapRow(raw []string, line int, idx columnIndices) (pricing.Campaign, []RowError) {
	var errs []RowError

	cell := func(pos int) string {
		if pos == invalidIndex || pos >= len(raw) {
			return ""
		}
		return strings.TrimSpace(raw[pos])
	}

	c := pricing.Campaign{
		ID:     cell(idx.id),
		Name:   cell(idx.name),
		Status: pricing.StatusActive,
	}

	kindStr := cell(idx.kind)
	kind, err := pricing.ParseDiscountKind(normalizeKind(kindStr))
	if err != nil {
		errs = append(errs, RowError{
			Line:    line,
			Field:   stringPtr("kind"),
			Message: "Unknown discount kind",
			Value:   stringPtr(kindStr),
		})
	}
	c.Kind = kind

	valueStr := cell(idx.value)
	switch kind {
	case pricing.KindPercentage:
		percent, err := parsePercent(valueStr)
		if err != nil {
			errs = append(errs, RowError{
				Line:    line,
				Field:   stringPtr("value"),
				Message: "Invalid percentage value",
				Value:   stringPtr(valueStr),
			})
		}
		c.Value = percent
	case pricing.KindFixedAmount:
		amount, err := parseMoney(valueStr)
		if err != nil {
			errs = append(errs, RowError{
				Line:    line,
				Field:   stringPtr("value"),
				Message: "Invalid amount value",
				Value:   stringPtr(valueStr),
			})
		}
		c.Value = float64(amount)
	}

	if statusStr := cell(idx.status); statusStr != "" {
		switch strings.ToLower(statusStr) {
		case "active", "true", "yes", "1":
			c.Status = pricing.StatusActive
		case "inactive", "false", "no", "0":
			c.Status = pricing.StatusInactive
		default:
			errs = append(errs, RowError{
				Line:    line,
				Field:   stringPtr("status"),
				Message: "Unknown status",
				Value:   stringPtr(statusStr),
			})
		}
	}

	startStr := cell(idx.start)
	if start := parseDate(startStr); start != nil {
		c.StartTime = *start
	} else {
		errs = append(errs, RowError{
			Line:    line,
			Field:   stringPtr("start"),
			Message: "Invalid start date",
			Value:   stringPtr(startStr),
		})
	}

	endStr := cell(idx.end)
	if end := parseDate(endStr); end != nil {
		c.EndTime = *end
	} else {
		errs = append(errs, RowError{
			Line:    line,
			Field:   stringPtr("end"),
			Message: "Invalid end date",
			Value:   stringPtr(endStr),
		})
	}

	c.ProductIDs = splitProducts(cell(idx.products))

	if len(errs) > 0 {
		return pricing.Campaign{}, errs
	}

	if err := c.Validate(); err != nil {
		errs = append(errs, RowError{Line: line, Message: err.Error()})
		return pricing.Campaign{}, errs
	}
	return c, nil
}

// normalizeKind maps spreadsheet kind spellings to the stored labels
func normalizeKind(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percentage", "percent", "%":
		return "percentage"
	case "fixed", "fixed_amount", "fixed amount", "amount":
		return "fixed"
	default:
		return strings.ToLower(strings.TrimSpace(s))
	}
}

// splitProducts splits a product list cell on comma, semicolon or pipe
func splitProducts(s string) []string {
	ids := make([]string, 0)
	if s == "" {
		return ids
	}
	for _, part := range regexp.MustCompile(`[,;|]`).Split(s, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// parsePercent parses a percentage cell such as "20", "20%" or "12.5"
func parsePercent(value string) (float64, error) {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "%"))
	if cleaned == "" {
		return 0, fmt.Errorf("empty percentage value")
	}
	cleaned = strings.Replace(cleaned, ",", ".", 1)
	return strconv.ParseFloat(cleaned, 64)
}

// parseMoney parses a money cell to minor units.
// Handles "12.99", "12,99", "1.299,00" and currency symbols.
func parseMoney(value string) (int64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty amount value")
	}

	cleaned := regexp.MustCompile(`[€$£\s]`).ReplaceAllString(value, "")

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	if lastComma > lastDot {
		// European format: 1.234,56 uses comma as decimal
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else if lastDot > lastComma {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(parsed * 100)), nil
}

// parseDate parses a date cell, including Excel serial dates
func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	layouts := []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"2006/01/02",
		"02.01.2006",
		"02/01/2006",
		"02-01-2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}

	// Excel serial date: days since the 1900 epoch, off by one past
	// Feb 1900 because Excel treats 1900 as a leap year
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial >= 1 {
		adjusted := serial
		if serial > 59 {
			adjusted = serial - 1
		}
		epoch := time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
		t := epoch.Add(time.Duration(adjusted * 24 * float64(time.Hour)))
		return &t
	}

	return nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
