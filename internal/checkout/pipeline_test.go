package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/cart"
)

type fakePlacer struct {
	mu        sync.Mutex
	calls     []Snapshot
	err       error
	release   chan struct{}
	started   chan struct{}
	startOnce sync.Once
}

func (f *fakePlacer) PlaceOrder(ctx context.Context, snapshot Snapshot) (*Receipt, error) {
	f.mu.Lock()
	f.calls = append(f.calls, snapshot)
	err := f.err
	f.mu.Unlock()

	if f.started != nil {
		f.startOnce.Do(func() { close(f.started) })
	}
	if f.release != nil {
		<-f.release
	}
	if err != nil {
		return nil, err
	}
	return &Receipt{OrderID: "order-1", Total: snapshot.Total, PlacedAt: time.Now()}, nil
}

func (f *fakePlacer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func filledForm(t *testing.T) *FormState {
	t.Helper()
	fs := NewFormState()
	f := validForm()
	require.NoError(t, fs.Set(FieldFullName, f.FullName))
	require.NoError(t, fs.Set(FieldPhone, f.Phone))
	require.NoError(t, fs.Set(FieldEmail, f.Email))
	require.NoError(t, fs.Set(FieldAddress, f.Address))
	require.NoError(t, fs.Set(FieldZipCode, f.ZipCode))
	return fs
}

func cartWith(total int64) *cart.Store {
	s := cart.NewStore()
	s.AddItem(cart.LineItem{ID: "p1", ProductID: "p1", Name: "Mug", Price: decimal.NewFromInt(total), Quantity: 1})
	return s
}

func TestSubmission_SuccessClearsCartAndCompletes(t *testing.T) {
	store := cartWith(150)
	placer := &fakePlacer{}
	sub := NewSubmission(filledForm(t), store, placer, DefaultShippingPolicy(), zerolog.Nop())

	var completed *Receipt
	sub.OnComplete = func(r *Receipt) { completed = r }

	receipt, err := sub.Submit(context.Background(), Owner{SessionID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, "order-1", receipt.OrderID)
	assert.Same(t, receipt, completed)
	assert.Equal(t, StatusSucceeded, sub.Status())
	assert.True(t, store.State().Empty())

	require.Len(t, placer.calls, 1)
	snap := placer.calls[0]
	assert.Equal(t, "s1", snap.Owner.SessionID)
	assert.Equal(t, "150.00", snap.Subtotal.StringFixed(2))
	assert.Equal(t, "25.00", snap.Shipping.StringFixed(2))
	assert.Equal(t, "175.00", snap.Total.StringFixed(2))
	assert.Equal(t, "Asha Rao", snap.Form.FullName)
	require.Len(t, snap.Items, 1)
}

func TestSubmission_FreeShippingAtThreshold(t *testing.T) {
	placer := &fakePlacer{}
	sub := NewSubmission(filledForm(t), cartWith(200), placer, DefaultShippingPolicy(), zerolog.Nop())

	receipt, err := sub.Submit(context.Background(), Owner{})
	require.NoError(t, err)
	assert.Equal(t, "200.00", receipt.Total.StringFixed(2))
	assert.True(t, placer.calls[0].Shipping.IsZero())
}

func TestSubmission_InvalidFormReturnsToIdle(t *testing.T) {
	store := cartWith(50)
	placer := &fakePlacer{}
	fs := NewFormState()
	sub := NewSubmission(fs, store, placer, DefaultShippingPolicy(), zerolog.Nop())

	_, err := sub.Submit(context.Background(), Owner{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StatusIdle, sub.Status())
	assert.Len(t, fs.Errors(), 5)
	assert.Zero(t, placer.callCount())
	assert.False(t, store.State().Empty())
}

func TestSubmission_EmptyCart(t *testing.T) {
	placer := &fakePlacer{}
	sub := NewSubmission(filledForm(t), cart.NewStore(), placer, DefaultShippingPolicy(), zerolog.Nop())

	_, err := sub.Submit(context.Background(), Owner{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StatusIdle, sub.Status())
	assert.Zero(t, placer.callCount())
}

func TestSubmission_RejectsWhileInFlight(t *testing.T) {
	placer := &fakePlacer{release: make(chan struct{}), started: make(chan struct{})}
	sub := NewSubmission(filledForm(t), cartWith(80), placer, DefaultShippingPolicy(), zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := sub.Submit(context.Background(), Owner{})
		done <- err
	}()

	<-placer.started
	assert.Equal(t, StatusSubmitting, sub.Status())

	_, err := sub.Submit(context.Background(), Owner{})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(placer.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, placer.callCount())
}

func TestSubmission_FailureAllowsRetry(t *testing.T) {
	store := cartWith(120)
	placer := &fakePlacer{err: errors.New("upstream unavailable")}
	sub := NewSubmission(filledForm(t), store, placer, DefaultShippingPolicy(), zerolog.Nop())

	_, err := sub.Submit(context.Background(), Owner{})
	assert.ErrorIs(t, err, ErrPlacementFailed)
	assert.Equal(t, StatusFailed, sub.Status())
	assert.EqualError(t, sub.Err(), "upstream unavailable")
	assert.False(t, store.State().Empty(), "cart must survive a failed placement")

	placer.mu.Lock()
	placer.err = nil
	placer.mu.Unlock()

	_, err = sub.Submit(context.Background(), Owner{})
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, sub.Status())
	assert.NoError(t, sub.Err())
	assert.Equal(t, 2, placer.callCount())
}

// receiptlessPlacer reports success without a receipt.
type receiptlessPlacer struct{}

func (receiptlessPlacer) PlaceOrder(ctx context.Context, snapshot Snapshot) (*Receipt, error) {
	return nil, nil
}

func TestSubmission_MissingReceiptIsAFailure(t *testing.T) {
	store := cartWith(120)
	completed := false
	sub := NewSubmission(filledForm(t), store, receiptlessPlacer{}, DefaultShippingPolicy(), zerolog.Nop())
	sub.OnComplete = func(*Receipt) { completed = true }

	receipt, err := sub.Submit(context.Background(), Owner{})
	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, ErrPlacementFailed)
	assert.ErrorIs(t, err, ErrNoReceipt)
	assert.Equal(t, StatusFailed, sub.Status())
	assert.False(t, store.State().Empty(), "cart must survive a missing receipt")
	assert.False(t, completed)
}

func TestSubmission_ClosedAfterSuccess(t *testing.T) {
	placer := &fakePlacer{}
	sub := NewSubmission(filledForm(t), cartWith(10), placer, DefaultShippingPolicy(), zerolog.Nop())

	_, err := sub.Submit(context.Background(), Owner{})
	require.NoError(t, err)

	_, err = sub.Submit(context.Background(), Owner{})
	assert.ErrorIs(t, err, ErrSubmissionClosed)
	assert.Equal(t, 1, placer.callCount())
}

func TestSubmission_UsesCurrentFormValues(t *testing.T) {
	placer := &fakePlacer{}
	fs := filledForm(t)
	require.NoError(t, fs.Set(FieldPaymentMethod, string(PaymentUPI)))
	sub := NewSubmission(fs, cartWith(10), placer, DefaultShippingPolicy(), zerolog.Nop())

	_, err := sub.Submit(context.Background(), Owner{})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "UPI ID is required", fs.Errors()[FieldUPIID])

	require.NoError(t, fs.Set(FieldUPIID, "asha@okbank"))
	_, err = sub.Submit(context.Background(), Owner{})
	require.NoError(t, err)
	assert.Equal(t, PaymentUPI, placer.calls[0].Form.PaymentMethod)
	assert.Equal(t, "asha@okbank", placer.calls[0].Form.UPIID)
}
