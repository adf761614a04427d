package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"storefront-backend/internal/checkout"
	"storefront-backend/internal/events"
	"storefront-backend/internal/models"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, ev events.OrderPlaced) error
}

// Service turns a checkout snapshot into a stored order.
type Service struct {
	repo      OrderRepository
	publisher EventPublisher
	delay     time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService wires the placer. publisher may be nil when no broker is
// configured. A non-zero delay holds every placement for that long.
func NewService(repo OrderRepository, publisher EventPublisher, delay time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		delay:     delay,
		logger:    logger.With().Str("component", "orders").Logger(),
		now:       time.Now,
	}
}

func (s *Service) PlaceOrder(ctx context.Context, snapshot checkout.Snapshot) (*checkout.Receipt, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	order := BuildOrder(snapshot, s.now().UTC())
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to store order: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, events.NewOrderPlaced(order)); err != nil {
			s.logger.Warn().Err(err).Str("order_id", order.ID).Msg("order stored but event not published")
		}
	}

	return &checkout.Receipt{
		OrderID:  order.ID,
		Total:    order.TotalAmount,
		PlacedAt: order.CreatedAt,
	}, nil
}

// BuildOrder copies a checkout snapshot into a pending order with a fresh id.
func BuildOrder(snapshot checkout.Snapshot, now time.Time) *models.Order {
	form := snapshot.Form
	order := &models.Order{
		ID:            uuid.NewString(),
		UserID:        snapshot.Owner.UserID,
		SessionID:     snapshot.Owner.SessionID,
		FullName:      strings.TrimSpace(form.FullName),
		Email:         strings.TrimSpace(form.Email),
		Phone:         strings.Join(strings.Fields(form.Phone), ""),
		Address:       strings.TrimSpace(form.Address),
		ZipCode:       strings.TrimSpace(form.ZipCode),
		PaymentMethod: string(form.PaymentMethod),
		Status:        models.OrderStatusPending,
		Subtotal:      snapshot.Subtotal,
		ShippingCost:  snapshot.Shipping,
		TotalAmount:   snapshot.Total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if form.PaymentMethod == checkout.PaymentUPI {
		upi := strings.TrimSpace(form.UPIID)
		order.UPIID = &upi
	}

	for _, it := range snapshot.Items {
		order.Items = append(order.Items, models.OrderItem{
			OrderID:    order.ID,
			LineID:     it.ID,
			ProductID:  it.ProductID,
			Name:       it.Name,
			Image:      it.Image,
			Attributes: it.Attributes,
			UnitPrice:  it.Price,
			Quantity:   it.Quantity,
			TotalPrice: it.Subtotal(),
			CreatedAt:  now,
		})
	}
	return order
}
