package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status constants
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a placed order in the database
type Order struct {
	ID            string             `json:"id"`
	UserID        *int               `json:"user_id,omitempty"`
	SessionID     string             `json:"session_id"`
	FullName      string             `json:"full_name"`
	Email         string             `json:"email"`
	Phone         string             `json:"phone"`
	Address       string             `json:"address"`
	ZipCode       string             `json:"zip_code"`
	PaymentMethod string             `json:"payment_method"`
	UPIID         *string            `json:"upi_id,omitempty"`
	Status        string             `json:"status"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	ShippingCost  decimal.Decimal    `json:"shipping_cost"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Items         []OrderItem        `json:"items,omitempty"`
	History       []OrderStatusEvent `json:"history,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// OrderItem is a copy of a cart line taken when the order was placed
type OrderItem struct {
	ID         int               `json:"id"`
	OrderID    string            `json:"order_id"`
	LineID     string            `json:"line_id"`
	ProductID  string            `json:"product_id"`
	Name       string            `json:"name"`
	Image      string            `json:"image,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	UnitPrice  decimal.Decimal   `json:"unit_price"`
	Quantity   int               `json:"quantity"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	CreatedAt  time.Time         `json:"created_at"`
}

// OrderStatusEvent records one status transition
type OrderStatusEvent struct {
	ID        int       `json:"id"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderListResponse represents paginated order list response
type OrderListResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// OrderStatusUpdateRequest represents order status update request
type OrderStatusUpdateRequest struct {
	Status string  `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
	Note   *string `json:"note,omitempty"`
}
