package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storefront-backend/internal/cart"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/models"
)

// CatalogVersioner reports the current catalog hash.
type CatalogVersioner interface {
	GetCatalogHash(ctx context.Context) (string, error)
}

// CartHandler handles cart-related requests
type CartHandler struct {
	carts   *cart.Registry
	catalog CatalogVersioner
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Registry, catalog CatalogVersioner, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// store resolves the session's cart or answers 400 when the request carries
// no session.
func (h *CartHandler) store(c *gin.Context) (*cart.Store, bool) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No session found"})
		return nil, false
	}
	return h.carts.Get(c.Request.Context(), sessionID), true
}

// GetCart returns the current cart contents
func (h *CartHandler) GetCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.NewCartResponse(store.State()))
}

// GetCartCount returns the number of units in the cart
func (h *CartHandler) GetCartCount(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.CartCountResponse{Count: store.Count()})
}

// AddToCart adds an item to the cart, merging it into an existing line for
// the same selection.
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req models.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
		return
	}

	store, ok := h.store(c)
	if !ok {
		return
	}

	store.AddItem(cart.LineItem{
		ID:         cart.LineID(req.ProductID, req.VariantID, req.Attributes),
		ProductID:  req.ProductID,
		Name:       req.Name,
		Image:      req.Image,
		Price:      *req.Price,
		Attributes: req.Attributes,
		Quantity:   req.Quantity,
	})

	c.JSON(http.StatusOK, models.NewCartResponse(store.State()))
}

// UpdateCartItem sets the quantity of a cart line. Unknown lines are ignored.
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req models.CartItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store, ok := h.store(c)
	if !ok {
		return
	}

	store.UpdateQuantity(c.Param("id"), *req.Quantity)
	c.JSON(http.StatusOK, models.NewCartResponse(store.State()))
}

// RemoveFromCart removes a line from the cart
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	store.RemoveItem(c.Param("id"))
	c.JSON(http.StatusOK, models.NewCartResponse(store.State()))
}

// ClearCart removes all lines from the cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	store.Clear()
	c.JSON(http.StatusOK, models.NewCartResponse(store.State()))
}

// ToggleCart flips the cart overlay open or closed
func (h *CartHandler) ToggleCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	store.ToggleOpen()
	c.JSON(http.StatusOK, models.NewCartResponse(store.State()))
}

// CloseCart hides the cart overlay
func (h *CartHandler) CloseCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	store.Close()
	c.JSON(http.StatusOK, models.NewCartResponse(store.State()))
}

// ValidateCatalogHash clears a cart that was filled against an older
// catalog version.
func (h *CartHandler) ValidateCatalogHash(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	hash, err := h.catalog.GetCatalogHash(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("catalog hash lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get catalog version"})
		return
	}

	invalidated := store.ValidateCatalogHash(hash)
	if invalidated {
		h.logger.Info().Str("session_id", middleware.GetSessionID(c)).Msg("cart cleared after catalog change")
	}

	c.JSON(http.StatusOK, models.CartHashResponse{
		Invalidated: invalidated,
		CatalogHash: hash,
		Cart:        models.NewCartResponse(store.State()),
	})
}
