package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/models"
)

// OrderPlaced is emitted once an order has been stored.
type OrderPlaced struct {
	EventType     string            `json:"eventType"`
	EventID       string            `json:"eventId"`
	OrderID       string            `json:"orderId"`
	SessionID     string            `json:"sessionId"`
	UserID        *int              `json:"userId,omitempty"`
	Items         []OrderPlacedItem `json:"items"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	Shipping      decimal.Decimal   `json:"shipping"`
	TotalAmount   decimal.Decimal   `json:"totalAmount"`
	PaymentMethod string            `json:"paymentMethod"`
	Timestamp     time.Time         `json:"timestamp"`
}

type OrderPlacedItem struct {
	LineID    string          `json:"lineId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func NewOrderPlaced(o *models.Order) OrderPlaced {
	ev := OrderPlaced{
		EventType:     "OrderPlaced",
		EventID:       uuid.NewString(),
		OrderID:       o.ID,
		SessionID:     o.SessionID,
		UserID:        o.UserID,
		Items:         make([]OrderPlacedItem, 0, len(o.Items)),
		Subtotal:      o.Subtotal,
		Shipping:      o.ShippingCost,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		Timestamp:     time.Now().UTC(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderPlacedItem{
			LineID:    it.LineID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return ev
}
