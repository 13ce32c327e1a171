package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khighway/storefront-service/internal/database"
	"github.com/khighway/storefront-service/internal/pricing"
)

var (
	campaignCache *pricing.CampaignCache
	priceResolver *pricing.Resolver
)

// InitPricing wires the shared campaign cache and resolver used by the
// pricing and campaign handlers. Must be called before the router starts.
func InitPricing(cache *pricing.CampaignCache, resolver *pricing.Resolver) {
	campaignCache = cache
	priceResolver = resolver
}

// AppliedCampaign describes the campaign behind a discounted price
type AppliedCampaign struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// PriceRange is the min/max across a product's variant combinations
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// ProductPricingResponse is the resolved sell price for one product
type ProductPricingResponse struct {
	ProductID      string           `json:"productId"`
	Name           string           `json:"name"`
	ListPrice      int64            `json:"listPrice"`
	FinalPrice     int64            `json:"finalPrice"`
	HasDiscount    bool             `json:"hasDiscount"`
	DiscountAmount int64            `json:"discountAmount"`
	Campaign       *AppliedCampaign `json:"campaign,omitempty"`
	PriceRange     *PriceRange      `json:"priceRange,omitempty"`
}

// GetProductPricing resolves the current sell price for a product
// @Summary Get product pricing
// @Description Resolves the product's sell price against in-effect campaigns, including the variant price range when the product has variants
// @Tags pricing
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} ProductPricingResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/pricing/{productId} [get]
func GetProductPricing(c *gin.Context) {
	productID := c.Param("productId")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId is required"})
		return
	}

	ctx := c.Request.Context()

	product, err := database.GetProductPricing(ctx, productID)
	if err != nil {
		if database.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	outcome, err := priceResolver.Resolve(ctx, productID, product.ListPrice)
	if err != nil {
		var invalid pricing.ErrInvalidInput
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve price"})
		return
	}

	response := ProductPricingResponse{
		ProductID:      productID,
		Name:           product.Name,
		ListPrice:      outcome.OriginalPrice,
		FinalPrice:     outcome.FinalPrice,
		HasDiscount:    outcome.HasDiscount,
		DiscountAmount: outcome.DiscountAmount,
	}
	if outcome.HasDiscount {
		response.Campaign = &AppliedCampaign{
			ID:   outcome.CampaignID,
			Name: outcome.CampaignName,
			Kind: outcome.Kind.String(),
		}
	}

	if len(product.VariantPrices) > 0 {
		min, max, err := pricing.PriceRange(product.VariantPrices)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute price range"})
			return
		}
		response.PriceRange = &PriceRange{Min: min, Max: max}
	}

	c.JSON(http.StatusOK, response)
}
