package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khighway/storefront-service/internal/database"
	"github.com/khighway/storefront-service/internal/pricing"
)

var priceOutput string

// priceCmd resolves the current sell price for a product
var priceCmd = &cobra.Command{
	Use:   "price <productId>",
	Short: "Resolve the current sell price for a product",
	Long: `Fetches the product's list price and resolves it against in-effect
campaigns, exactly as the pricing endpoint would.`,
	Example: `  storefront-service price prd_0CL2KwaB3cD5eF7gH9iJ1k
  storefront-service price prd_0CL2KwaB3cD5eF7gH9iJ1k --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)

	priceCmd.Flags().StringVar(&priceOutput, "output", "table", "Output format: table or json")
}

func runPrice(cmd *cobra.Command, args []string) error {
	productID := args[0]
	ctx := context.Background()

	product, err := database.GetProductPricing(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to fetch product: %w", err)
	}

	cache := pricing.NewCampaignCache(database.Campaigns{}, 0, nil)
	resolver := pricing.NewResolver(cache, nil)

	outcome, err := resolver.Resolve(ctx, productID, product.ListPrice)
	if err != nil {
		return fmt.Errorf("failed to resolve price: %w", err)
	}

	if priceOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	fmt.Printf("Product:   %s (%s)\n", product.Name, productID)
	fmt.Printf("List:      %d\n", outcome.OriginalPrice)
	fmt.Printf("Final:     %d\n", outcome.FinalPrice)
	if outcome.HasDiscount {
		fmt.Printf("Discount:  %d (%s, campaign %s %q)\n",
			outcome.DiscountAmount, outcome.Kind.String(), outcome.CampaignID, outcome.CampaignName)
	} else {
		fmt.Println("Discount:  none")
	}
	if len(product.VariantPrices) > 0 {
		min, max, err := pricing.PriceRange(product.VariantPrices)
		if err == nil {
			fmt.Printf("Variants:  %d combinations, %d - %d\n", len(product.VariantPrices), min, max)
		}
	}
	return nil
}
