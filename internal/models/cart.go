package models

import (
	"github.com/shopspring/decimal"

	"storefront-backend/internal/cart"
)

// CartItemRequest represents the request to add an item to cart
type CartItemRequest struct {
	ProductID  string            `json:"product_id" binding:"required"`
	VariantID  string            `json:"variant_id"`
	Name       string            `json:"name" binding:"required"`
	Image      string            `json:"image"`
	Price      *decimal.Decimal  `json:"price" binding:"required"`
	Attributes map[string]string `json:"attributes"`
	Quantity   int               `json:"quantity" binding:"omitempty,min=1"`
}

// CartItemUpdateRequest represents the request to update cart item quantity.
// A quantity of zero or less removes the line.
type CartItemUpdateRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartResponse represents the full cart with its unit count
type CartResponse struct {
	cart.State
	Count int `json:"count"`
}

// CartCountResponse represents the cart item count
type CartCountResponse struct {
	Count int `json:"count"`
}

// CartHashResponse reports the outcome of a catalog hash check
type CartHashResponse struct {
	Invalidated bool         `json:"invalidated"`
	CatalogHash string       `json:"catalog_hash"`
	Cart        CartResponse `json:"cart"`
}

func NewCartResponse(state cart.State) CartResponse {
	return CartResponse{State: state, Count: state.Count()}
}
