package models

import (
	"storefront-backend/internal/checkout"
)

// CheckoutFieldsRequest carries one or more form fields by wire name
type CheckoutFieldsRequest struct {
	Fields map[string]string `json:"fields" binding:"required"`
}

// CheckoutResponse is the full checkout view for a session
type CheckoutResponse struct {
	Form   checkout.Form   `json:"form"`
	Errors checkout.Errors `json:"errors"`
	Quote  checkout.Quote  `json:"quote"`
	Status checkout.Status `json:"status"`
	Cart   CartResponse    `json:"cart"`
	Error  string          `json:"error,omitempty"`
}

// CheckoutValidationResponse is returned by validate and by a rejected submit
type CheckoutValidationResponse struct {
	Valid  bool            `json:"valid"`
	Errors checkout.Errors `json:"errors"`
}

// PlaceOrderResponse is returned once an order has been placed
type PlaceOrderResponse struct {
	Receipt  checkout.Receipt `json:"receipt"`
	Redirect string           `json:"redirect"`
}
