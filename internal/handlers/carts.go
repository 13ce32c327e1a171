package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khighway/storefront-service/internal/cart"
	"github.com/khighway/storefront-service/internal/database"
)

// CartItemPayload is one cart line in API requests and responses
type CartItemPayload struct {
	ProductID string `json:"id" binding:"required"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price" binding:"min=0"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CartRequest is the stored-cart write body
type CartRequest struct {
	Items []CartItemPayload `json:"items" binding:"required,dive"`
}

// CartResponse is a stored cart with its derived totals
type CartResponse struct {
	Identity string     `json:"identity"`
	Items    cart.Items `json:"items"`
	Total    int64      `json:"total"`
	Count    int        `json:"count"`
}

func toItems(payload []CartItemPayload) cart.Items {
	items := make(cart.Items, 0, len(payload))
	for _, p := range payload {
		items = append(items, cart.Item{
			ProductID: p.ProductID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Image:     p.Image,
			Quantity:  p.Quantity,
		})
	}
	return items
}

func toCartResponse(identity string, items cart.Items) CartResponse {
	return CartResponse{
		Identity: identity,
		Items:    items,
		Total:    items.Total(),
		Count:    items.Count(),
	}
}

// GetCart returns the stored cart for an identity
// @Summary Get cart
// @Tags carts
// @Produce json
// @Param identity path string true "Account identity"
// @Success 200 {object} CartResponse
// @Failure 404 {object} map[string]string "No cart stored for identity"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/carts/{identity} [get]
func GetCart(c *gin.Context) {
	identity := c.Param("identity")

	items, exists, err := database.GetCart(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "No cart stored for identity"})
		return
	}

	c.JSON(http.StatusOK, toCartResponse(identity, items))
}

// PutCart overwrites the stored cart for an identity
// @Summary Put cart
// @Description Replaces the whole cart document, last writer wins
// @Tags carts
// @Accept json
// @Produce json
// @Param identity path string true "Account identity"
// @Param cart body CartRequest true "Cart"
// @Success 200 {object} CartResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/carts/{identity} [put]
func PutCart(c *gin.Context) {
	identity := c.Param("identity")

	var req CartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := toItems(req.Items)
	if err := database.PutCart(c.Request.Context(), identity, items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store cart"})
		return
	}

	c.JSON(http.StatusOK, toCartResponse(identity, items))
}

// DeleteCart removes the stored cart for an identity
// @Summary Delete cart
// @Tags carts
// @Produce json
// @Param identity path string true "Account identity"
// @Success 204 "No content"
// @Failure 404 {object} map[string]string "No cart stored for identity"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/carts/{identity} [delete]
func DeleteCart(c *gin.Context) {
	identity := c.Param("identity")

	existed, err := database.DeleteCart(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete cart"})
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{"error": "No cart stored for identity"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ReconcileCartRequest carries the client's local cart at login
type ReconcileCartRequest struct {
	Items []CartItemPayload `json:"items" binding:"dive"`
}

// ReconcileCart resolves a client's local cart against the stored one
// @Summary Reconcile cart
// @Description Applies the login rule: the stored cart, even an empty one, replaces the local cart; with no stored cart the resolved cart is empty
// @Tags carts
// @Accept json
// @Produce json
// @Param identity path string true "Account identity"
// @Param cart body ReconcileCartRequest true "Local cart"
// @Success 200 {object} CartResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/carts/{identity}/reconcile [post]
func ReconcileCart(c *gin.Context) {
	identity := c.Param("identity")

	var req ReconcileCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	remote, exists, err := database.GetCart(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	resolved := cart.Reconcile(toItems(req.Items), remote, exists)
	c.JSON(http.StatusOK, toCartResponse(identity, resolved))
}
