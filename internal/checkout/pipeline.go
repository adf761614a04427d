package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/cart"
)

var (
	ErrSubmissionInFlight = errors.New("order submission already in progress")
	ErrSubmissionClosed   = errors.New("order already placed")
	ErrValidation         = errors.New("checkout form is invalid")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrPlacementFailed    = errors.New("order placement failed")
	ErrNoReceipt          = errors.New("placer returned no receipt")
)

// Status is the lifecycle stage of a submission.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Owner identifies who is placing the order.
type Owner struct {
	SessionID string
	UserID    *int
}

// Snapshot is everything the placer needs, frozen at submission time.
type Snapshot struct {
	Owner    Owner
	Items    []cart.LineItem
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
	Form     Form
}

// Receipt confirms a placed order.
type Receipt struct {
	OrderID  string          `json:"order_id"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placed_at"`
}

// Placer hands a validated order to whatever fulfils it.
type Placer interface {
	PlaceOrder(ctx context.Context, snapshot Snapshot) (*Receipt, error)
}

// Cart is the slice of the cart store the pipeline reads and clears.
type Cart interface {
	State() cart.State
	Clear()
}

// Submission drives one checkout from the filled-in form to a placed order.
// A failed placement leaves the submission retryable; a successful one
// closes it for good.
type Submission struct {
	mu      sync.Mutex
	status  Status
	lastErr error
	receipt *Receipt

	form   *FormState
	cart   Cart
	placer Placer
	policy ShippingPolicy
	logger zerolog.Logger

	// OnComplete runs after the cart has been cleared.
	OnComplete func(*Receipt)
}

func NewSubmission(form *FormState, c Cart, placer Placer, policy ShippingPolicy, logger zerolog.Logger) *Submission {
	return &Submission{
		status: StatusIdle,
		form:   form,
		cart:   c,
		placer: placer,
		policy: policy,
		logger: logger.With().Str("component", "checkout").Logger(),
	}
}

func (s *Submission) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the reason for the last failed placement, if any.
func (s *Submission) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Submission) Receipt() *Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receipt
}

// Submit validates the form, prices the cart and places the order. While a
// placement is in flight further calls are rejected. A validation failure
// or an empty cart returns the submission to idle.
func (s *Submission) Submit(ctx context.Context, owner Owner) (*Receipt, error) {
	snapshot, err := s.begin(owner)
	if err != nil {
		return nil, err
	}

	log := s.logger.With().Str("session_id", owner.SessionID).Logger()
	log.Info().Str("total", snapshot.Total.StringFixed(2)).Int("lines", len(snapshot.Items)).Msg("placing order")

	receipt, err := s.placer.PlaceOrder(ctx, snapshot)
	if err == nil && receipt == nil {
		err = ErrNoReceipt
	}

	s.mu.Lock()
	if err != nil {
		s.status = StatusFailed
		s.lastErr = err
		s.mu.Unlock()
		log.Error().Err(err).Msg("order placement failed")
		return nil, fmt.Errorf("%w: %w", ErrPlacementFailed, err)
	}
	s.status = StatusSucceeded
	s.lastErr = nil
	s.receipt = receipt
	s.mu.Unlock()

	s.cart.Clear()
	log.Info().Str("order_id", receipt.OrderID).Msg("order placed")

	if s.OnComplete != nil {
		s.OnComplete(receipt)
	}
	return receipt, nil
}

func (s *Submission) begin(owner Owner) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusSubmitting, StatusValidating:
		return Snapshot{}, ErrSubmissionInFlight
	case StatusSucceeded:
		return Snapshot{}, ErrSubmissionClosed
	}

	s.status = StatusValidating
	if !s.form.Validate() {
		s.status = StatusIdle
		return Snapshot{}, ErrValidation
	}

	state := s.cart.State()
	if state.Empty() {
		s.status = StatusIdle
		return Snapshot{}, ErrEmptyCart
	}

	quote := s.policy.Quote(state.Total)
	s.status = StatusSubmitting
	return Snapshot{
		Owner:    owner,
		Items:    state.Items,
		Subtotal: quote.Subtotal,
		Shipping: quote.Shipping,
		Total:    quote.Total,
		Form:     s.form.Form(),
	}, nil
}
