package importer

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/khighway/storefront-service/internal/pricing"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected rune
	}{
		{"comma", "name,kind,value\nSummer,percentage,20\n", ','},
		{"semicolon", "name;kind;value\nSummer;percentage;20\n", ';'},
		{"tab", "name\tkind\tvalue\nSummer\tpercentage\t20\n", '\t'},
		{"empty defaults to comma", "", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectDelimiter(tt.content))
		})
	}
}

func TestParseCSVCommaDelimited(t *testing.T) {
	content := []byte("name,kind,value,start,end,products\n" +
		"Summer Sale,percentage,20,2026-06-01,2026-06-30,hammer;saw\n" +
		"Clearance,fixed,5.00,2026-06-01,2026-07-31,drill\n")

	result, err := ParseCSV(content)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.ValidRows)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Campaigns, 2)

	summer := result.Campaigns[0]
	assert.Equal(t, "Summer Sale", summer.Name)
	assert.Equal(t, pricing.KindPercentage, summer.Kind)
	assert.Equal(t, 20.0, summer.Value)
	assert.Equal(t, pricing.StatusActive, summer.Status)
	assert.Equal(t, []string{"hammer", "saw"}, summer.ProductIDs)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), summer.StartTime)

	clearance := result.Campaigns[1]
	assert.Equal(t, pricing.KindFixedAmount, clearance.Kind)
	assert.Equal(t, 500.0, clearance.Value, "fixed amounts are stored in minor units")
}

func TestParseCSVSemicolonWithEuropeanAmounts(t *testing.T) {
	content := []byte("Name;Type;Amount;Start Date;End Date;Products\n" +
		"Winter Deal;fixed;12,50;01.12.2026;31.12.2026;shovel\n")

	result, err := ParseCSV(content)
	require.NoError(t, err)

	require.Equal(t, 1, result.ValidRows)
	assert.Equal(t, 1250.0, result.Campaigns[0].Value)
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), result.Campaigns[0].StartTime)
}

func TestParseCSVLegacyEncoding(t *testing.T) {
	// "Café Sale" with 0xE9 is Windows-1252, not valid UTF-8
	content := []byte("name,kind,value,start,end,products\n" +
		"Caf\xe9 Sale,percentage,10,2026-06-01,2026-06-30,mug\n")

	result, err := ParseCSV(content)
	require.NoError(t, err)

	require.Equal(t, 1, result.ValidRows)
	assert.Equal(t, "Café Sale", result.Campaigns[0].Name)
}

func TestParseCSVReportsBadRowsAndKeepsGoodOnes(t *testing.T) {
	content := []byte("name,kind,value,start,end,products\n" +
		"Good,percentage,20,2026-06-01,2026-06-30,hammer\n" +
		"Bad Kind,bogof,20,2026-06-01,2026-06-30,hammer\n" +
		"Bad Value,percentage,150,2026-06-01,2026-06-30,hammer\n" +
		"Bad Window,percentage,20,2026-06-30,2026-06-01,hammer\n" +
		",percentage,20,2026-06-01,2026-06-30,hammer\n")

	result, err := ParseCSV(content)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 1, result.ValidRows)
	assert.Len(t, result.Errors, 4)
	require.Len(t, result.Campaigns, 1)
	assert.Equal(t, "Good", result.Campaigns[0].Name)
}

func TestParseCSVMissingRequiredColumn(t *testing.T) {
	content := []byte("name,value,start,end\nSummer,20,2026-06-01,2026-06-30\n")

	result, err := ParseCSV(content)
	require.NoError(t, err)

	assert.Zero(t, result.ValidRows)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "kind")
}

func TestParseCSVInactiveStatus(t *testing.T) {
	content := []byte("name,kind,value,status,start,end,products\n" +
		"Paused,percentage,20,inactive,2026-06-01,2026-06-30,hammer\n")

	result, err := ParseCSV(content)
	require.NoError(t, err)

	require.Equal(t, 1, result.ValidRows)
	assert.Equal(t, pricing.StatusInactive, result.Campaigns[0].Status)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"name", "kind", "value", "start", "end", "products"},
		{"Sheet Sale", "percentage", 15, "2026-06-01", "2026-06-30", "hammer,saw"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	result, err := ParseXLSX(buf.Bytes())
	require.NoError(t, err)

	require.Equal(t, 1, result.ValidRows)
	campaign := result.Campaigns[0]
	assert.Equal(t, "Sheet Sale", campaign.Name)
	assert.Equal(t, 15.0, campaign.Value)
	assert.Equal(t, []string{"hammer", "saw"}, campaign.ProductIDs)
}

func TestParseDispatchesOnExtension(t *testing.T) {
	_, err := Parse("campaigns.pdf", []byte("x"))
	assert.Error(t, err)

	csvContent := []byte("name,kind,value,start,end,products\n" +
		"Summer,percentage,20,2026-06-01,2026-06-30,hammer\n")
	result, err := Parse("Campaigns.CSV", csvContent)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ValidRows)
}
