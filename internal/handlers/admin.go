package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/database"
	"storefront-backend/internal/models"
)

// SettingsStore reads and writes site settings.
type SettingsStore interface {
	GetAllSettings(ctx context.Context) ([]models.SiteSetting, error)
	UpdateSetting(ctx context.Context, key, value string) error
	BumpCatalogHash(ctx context.Context) (string, error)
	GetMaintenanceMode(ctx context.Context) (bool, error)
}

type AdminHandler struct {
	orders   OrderStore
	settings SettingsStore
	logger   zerolog.Logger
}

func NewAdminHandler(orders OrderStore, settings SettingsStore, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		orders:   orders,
		settings: settings,
		logger:   logger.With().Str("handler", "admin").Logger(),
	}
}

// ListOrders lists orders, optionally filtered by status or user
func (h *AdminHandler) ListOrders(c *gin.Context) {
	page, limit := pagination(c)
	status := c.Query("status")
	if status != "" && !models.ValidOrderStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var userID *int
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		userID = &id
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), page, limit, userID, status)
	if err != nil {
		h.logger.Error().Err(err).Msg("order list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// UpdateOrderStatus moves an order to a new status and records the change
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req models.OrderStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.orders.UpdateOrderStatus(c.Request.Context(), id, req.Status, req.Note); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		h.logger.Error().Err(err).Str("order_id", id).Msg("order status update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	h.logger.Info().Str("order_id", id).Str("status", req.Status).Msg("order status updated")
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully"})
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.GetAllSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get settings"})
		return
	}

	c.JSON(http.StatusOK, models.SiteSettingsResponse{Settings: settings})
}

// UpdateSetting changes one setting. Shipping amounts must be non-negative
// decimals and the maintenance flag must be a boolean.
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")

	var req models.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	value := req.Value
	switch key {
	case models.SettingFreeShippingThreshold, models.SettingShippingFee:
		d, err := decimal.NewFromString(value)
		if err != nil || d.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Value must be a non-negative amount"})
			return
		}
		value = d.StringFixed(2)
	case models.SettingMaintenanceMode:
		on, err := strconv.ParseBool(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Value must be true or false"})
			return
		}
		value = strconv.FormatBool(on)
	case models.SettingCatalogHash:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Use the catalog bump endpoint to change the catalog hash"})
		return
	}

	if err := h.settings.UpdateSetting(c.Request.Context(), key, value); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Setting not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update setting"})
		return
	}

	h.logger.Info().Str("key", key).Str("value", value).Msg("setting updated")
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// BumpCatalogHash rotates the catalog version. Carts filled against the old
// version are cleared the next time they are validated.
func (h *AdminHandler) BumpCatalogHash(c *gin.Context) {
	hash, err := h.settings.BumpCatalogHash(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("catalog hash bump failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update catalog version"})
		return
	}

	h.logger.Info().Str("catalog_hash", hash).Msg("catalog hash bumped")
	c.JSON(http.StatusOK, gin.H{"catalog_hash": hash})
}

// GetMaintenanceStatus is public so the storefront can show a banner
func (h *AdminHandler) GetMaintenanceStatus(c *gin.Context) {
	on, err := h.settings.GetMaintenanceMode(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get maintenance status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"maintenance_mode": on})
}
