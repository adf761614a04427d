package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"storefront-backend/internal/database"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/models"
)

// OrderStore reads and updates placed orders.
type OrderStore interface {
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID, page, limit int) (*models.OrderListResponse, error)
	ListOrders(ctx context.Context, page, limit int, userID *int, status string) (*models.OrderListResponse, error)
	UpdateOrderStatus(ctx context.Context, id, status string, note *string) error
}

type OrderHandler struct {
	orders OrderStore
	logger zerolog.Logger
}

func NewOrderHandler(orders OrderStore, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger.With().Str("handler", "order").Logger(),
	}
}

// GetOrder returns one order to the user who placed it, or to the browser
// session that placed it as a guest.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := h.orders.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		h.logger.Error().Err(err).Str("order_id", id).Msg("order lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order"})
		return
	}

	if userID := middleware.GetUserID(c); userID != nil && order.UserID != nil && *order.UserID == *userID {
		c.JSON(http.StatusOK, order)
		return
	}

	if sessionID := middleware.GetSessionID(c); sessionID != "" && order.SessionID == sessionID {
		c.JSON(http.StatusOK, order)
		return
	}

	c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
}

// GetUserOrders retrieves orders for the authenticated user
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	id, ok := requireUserID(c)
	if !ok {
		return
	}

	page, limit := pagination(c)

	orders, err := h.orders.GetOrdersByUserID(c.Request.Context(), id, page, limit)
	if err != nil {
		h.logger.Error().Err(err).Int("user_id", id).Msg("user orders lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
