package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khighway/storefront-service/internal/database"
	"github.com/khighway/storefront-service/internal/importer"
)

var importDryRun bool

// importCmd bulk-imports campaigns from a spreadsheet
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk-import campaigns from a CSV or XLSX spreadsheet",
	Long: `Parse a campaign spreadsheet and upsert every valid row. Rejected rows are
reported with their line number and reason; they do not abort the import.

Encoding and CSV delimiter are detected automatically.`,
	Example: `  storefront-service campaigns import ./campaigns.csv
  storefront-service campaigns import ./campaigns.xlsx --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	campaignsCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and validate without writing")
}

func runImport(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	logger.Info().Str("file", filePath).Msg("Reading file")
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	result, err := importer.Parse(filePath, content)
	if err != nil {
		return err
	}

	for _, rowErr := range result.Errors {
		event := logger.Warn().Int("line", rowErr.Line).Str("reason", rowErr.Message)
		if rowErr.Field != nil {
			event = event.Str("field", *rowErr.Field)
		}
		if rowErr.Value != nil {
			event = event.Str("value", *rowErr.Value)
		}
		event.Msg("Rejected row")
	}

	if importDryRun {
		logger.Info().
			Int("total", result.TotalRows).
			Int("valid", result.ValidRows).
			Int("rejected", len(result.Errors)).
			Msg("Dry run, nothing written")
		return nil
	}

	imported, err := database.BulkUpsertCampaigns(context.Background(), result.Campaigns)
	if err != nil {
		return fmt.Errorf("failed to store campaigns: %w", err)
	}

	logger.Info().
		Int("total", result.TotalRows).
		Int("imported", imported).
		Int("rejected", len(result.Errors)).
		Msg("Import finished")
	return nil
}
