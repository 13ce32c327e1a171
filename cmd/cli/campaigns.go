package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/khighway/storefront-service/internal/database"
	"github.com/khighway/storefront-service/internal/pricing"
)

// campaignsCmd groups campaign administration subcommands
var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "Administer discount campaigns",
}

var (
	listLimit  int
	listOffset int
	listOutput string
)

var campaignsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns, newest start first",
	Example: `  storefront-service campaigns list
  storefront-service campaigns list --limit 10 --output json`,
	RunE: runCampaignsList,
}

var (
	createName     string
	createKind     string
	createValue    float64
	createStart    string
	createEnd      string
	createProducts string
	createInactive bool
)

var campaignsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign",
	Example: `  storefront-service campaigns create --name "Summer Sale" --kind percentage --value 20 \
    --start 2026-06-01 --end 2026-06-30 --products hammer,saw`,
	RunE: runCampaignsCreate,
}

var campaignsExpireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Flag active campaigns whose window has passed as inactive",
	RunE:  runCampaignsExpire,
}

func init() {
	rootCmd.AddCommand(campaignsCmd)
	campaignsCmd.AddCommand(campaignsListCmd)
	campaignsCmd.AddCommand(campaignsCreateCmd)
	campaignsCmd.AddCommand(campaignsExpireCmd)

	campaignsListCmd.Flags().IntVar(&listLimit, "limit", 50, "Number of campaigns to show")
	campaignsListCmd.Flags().IntVar(&listOffset, "offset", 0, "Number of campaigns to skip")
	campaignsListCmd.Flags().StringVar(&listOutput, "output", "table", "Output format: table or json")

	campaignsCreateCmd.Flags().StringVar(&createName, "name", "", "Campaign name (required)")
	campaignsCreateCmd.Flags().StringVar(&createKind, "kind", "", "Discount kind: percentage or fixed (required)")
	campaignsCreateCmd.Flags().Float64Var(&createValue, "value", 0, "Percent for percentage campaigns, minor units for fixed (required)")
	campaignsCreateCmd.Flags().StringVar(&createStart, "start", "", "Start date, YYYY-MM-DD (required)")
	campaignsCreateCmd.Flags().StringVar(&createEnd, "end", "", "End date, YYYY-MM-DD (required)")
	campaignsCreateCmd.Flags().StringVar(&createProducts, "products", "", "Comma-separated product IDs (required)")
	campaignsCreateCmd.Flags().BoolVar(&createInactive, "inactive", false, "Create the campaign flagged inactive")
	campaignsCreateCmd.MarkFlagRequired("name")
	campaignsCreateCmd.MarkFlagRequired("kind")
	campaignsCreateCmd.MarkFlagRequired("value")
	campaignsCreateCmd.MarkFlagRequired("start")
	campaignsCreateCmd.MarkFlagRequired("end")
	campaignsCreateCmd.MarkFlagRequired("products")
}

func runCampaignsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	campaigns, err := database.ListCampaigns(ctx, listLimit, listOffset)
	if err != nil {
		return fmt.Errorf("failed to list campaigns: %w", err)
	}

	if listOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(campaigns)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tVALUE\tSTATUS\tSTART\tEND\tPRODUCTS")
	for i := range campaigns {
		c := &campaigns[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%s\t%s\t%s\t%d\n",
			c.ID, c.Name, c.Kind.String(), c.Value, c.Status,
			c.StartTime.Format("2006-01-02"), c.EndTime.Format("2006-01-02"),
			len(c.ProductIDs))
	}
	return w.Flush()
}

func runCampaignsCreate(cmd *cobra.Command, args []string) error {
	kind, err := pricing.ParseDiscountKind(createKind)
	if err != nil {
		return err
	}

	start, err := time.Parse("2006-01-02", createStart)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", createEnd)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	productIDs := make([]string, 0)
	for _, id := range strings.Split(createProducts, ",") {
		if id = strings.TrimSpace(id); id != "" {
			productIDs = append(productIDs, id)
		}
	}

	status := pricing.StatusActive
	if createInactive {
		status = pricing.StatusInactive
	}

	campaign := &pricing.Campaign{
		Name:       createName,
		Kind:       kind,
		Value:      createValue,
		Status:     status,
		StartTime:  start,
		EndTime:    end,
		ProductIDs: productIDs,
	}
	if err := campaign.Validate(); err != nil {
		return err
	}

	if err := database.CreateCampaign(context.Background(), campaign); err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	logger.Info().Str("id", campaign.ID).Str("name", campaign.Name).Msg("Campaign created")
	fmt.Println(campaign.ID)
	return nil
}

func runCampaignsExpire(cmd *cobra.Command, args []string) error {
	deactivated, err := database.DeactivateEndedCampaigns(context.Background())
	if err != nil {
		return fmt.Errorf("failed to expire campaigns: %w", err)
	}

	logger.Info().Int("deactivated", deactivated).Msg("Expired ended campaigns")
	return nil
}
