package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storefront-backend/internal/cart"
	"storefront-backend/internal/checkout"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/models"
)

// ShippingPolicySource resolves the shipping terms in force, falling back to
// the configured defaults.
type ShippingPolicySource interface {
	GetShippingPolicy(ctx context.Context, fallback checkout.ShippingPolicy) (checkout.ShippingPolicy, error)
}

// ProfileReader loads the profile used to prefill checkout.
type ProfileReader interface {
	GetUserProfile(ctx context.Context, userID int) (*models.UserProfile, error)
}

// checkoutSession is one browser session's form and submission. The
// shipping policy is fixed when the session starts so the quote shown is the
// quote charged.
type checkoutSession struct {
	form       *checkout.FormState
	submission *checkout.Submission
	policy     checkout.ShippingPolicy
	cart       *cart.Store
}

// CheckoutHandler handles the checkout form and order submission
type CheckoutHandler struct {
	carts    *cart.Registry
	placer   checkout.Placer
	policies ShippingPolicySource
	profiles ProfileReader
	fallback checkout.ShippingPolicy
	logger   zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*checkoutSession
}

func NewCheckoutHandler(carts *cart.Registry, placer checkout.Placer, policies ShippingPolicySource, profiles ProfileReader, fallback checkout.ShippingPolicy, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:    carts,
		placer:   placer,
		policies: policies,
		profiles: profiles,
		fallback: fallback,
		logger:   logger.With().Str("handler", "checkout").Logger(),
		sessions: make(map[string]*checkoutSession),
	}
}

func (h *CheckoutHandler) session(c *gin.Context) (*checkoutSession, bool) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No session found"})
		return nil, false
	}

	ctx := c.Request.Context()
	store := h.carts.Get(ctx, sessionID)

	h.mu.Lock()
	cs, ok := h.sessions[sessionID]
	h.mu.Unlock()

	// A different store means the cart was evicted and reloaded since the
	// form was started.
	if !ok || cs.cart != store {
		fresh := h.newSession(ctx, sessionID, store)
		h.mu.Lock()
		if cs, ok = h.sessions[sessionID]; !ok || cs.cart != store {
			cs = fresh
			h.sessions[sessionID] = cs
		}
		h.mu.Unlock()
	}

	if userID := middleware.GetUserID(c); userID != nil {
		h.prefill(ctx, cs.form, *userID, c.GetString("user_email"))
	}
	return cs, true
}

func (h *CheckoutHandler) newSession(ctx context.Context, sessionID string, store *cart.Store) *checkoutSession {
	policy, err := h.policies.GetShippingPolicy(ctx, h.fallback)
	if err != nil {
		h.logger.Warn().Err(err).Msg("shipping policy lookup failed, using defaults")
		policy = h.fallback
	}

	form := checkout.NewFormState()
	sub := checkout.NewSubmission(form, store, h.placer, policy, h.logger)
	sub.OnComplete = func(*checkout.Receipt) {
		h.Forget(sessionID)
	}

	return &checkoutSession{form: form, submission: sub, policy: policy, cart: store}
}

// Forget discards the checkout form for a session. It is registered as the
// cart registry's eviction hook.
func (h *CheckoutHandler) Forget(sessionID string) {
	h.mu.Lock()
	delete(h.sessions, sessionID)
	h.mu.Unlock()
}

// Len reports how many checkout sessions are held in memory.
func (h *CheckoutHandler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *CheckoutHandler) prefill(ctx context.Context, form *checkout.FormState, userID int, accountEmail string) {
	p := checkout.Prefill{Email: accountEmail}

	profile, err := h.profiles.GetUserProfile(ctx, userID)
	if err != nil {
		h.logger.Warn().Err(err).Int("user_id", userID).Msg("profile lookup failed, skipping prefill")
	} else if profile != nil {
		p.FullName = deref(profile.FullName)
		p.Phone = deref(profile.Phone)
		p.Address = deref(profile.Address)
		p.ZipCode = deref(profile.ZipCode)
		if email := deref(profile.ContactEmail); email != "" {
			p.Email = email
		}
	}

	form.Prefill(p)
}

func (cs *checkoutSession) view() models.CheckoutResponse {
	state := cs.cart.State()
	resp := models.CheckoutResponse{
		Form:   cs.form.Form(),
		Errors: cs.form.Errors(),
		Quote:  cs.policy.Quote(state.Total),
		Status: cs.submission.Status(),
		Cart:   models.NewCartResponse(state),
	}
	if err := cs.submission.Err(); err != nil {
		resp.Error = "Failed to place order"
	}
	return resp
}

// GetCheckout returns the form, its errors, the price quote and the
// submission status for the session.
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	cs, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cs.view())
}

// UpdateFields sets one or more form fields. Every name is checked before
// any value is stored.
func (h *CheckoutHandler) UpdateFields(c *gin.Context) {
	var req models.CheckoutFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := make(map[checkout.Field]string, len(req.Fields))
	for name, value := range req.Fields {
		field, err := checkout.ParseField(name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown field: " + name})
			return
		}
		fields[field] = value
	}

	cs, ok := h.session(c)
	if !ok {
		return
	}

	for field, value := range fields {
		if err := cs.form.Set(field, value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, cs.view())
}

// ValidateCheckout runs every form rule and reports the result
func (h *CheckoutHandler) ValidateCheckout(c *gin.Context) {
	cs, ok := h.session(c)
	if !ok {
		return
	}

	valid := cs.form.Validate()
	c.JSON(http.StatusOK, models.CheckoutValidationResponse{Valid: valid, Errors: cs.form.Errors()})
}

// GetQuote prices the current cart under the session's shipping policy
func (h *CheckoutHandler) GetQuote(c *gin.Context) {
	cs, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cs.policy.Quote(cs.cart.Total()))
}

// SubmitOrder places the order for the session's cart
func (h *CheckoutHandler) SubmitOrder(c *gin.Context) {
	cs, ok := h.session(c)
	if !ok {
		return
	}

	owner := checkout.Owner{
		SessionID: middleware.GetSessionID(c),
		UserID:    middleware.GetUserID(c),
	}

	receipt, err := cs.submission.Submit(c.Request.Context(), owner)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, models.PlaceOrderResponse{Receipt: *receipt, Redirect: "/"})
	case errors.Is(err, checkout.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, models.CheckoutValidationResponse{Valid: false, Errors: cs.form.Errors()})
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "Order is already being placed"})
	case errors.Is(err, checkout.ErrSubmissionClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "Order has already been placed"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "Failed to place order",
			"status": checkout.StatusFailed,
		})
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
