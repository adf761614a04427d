package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storefront-backend/internal/models"
)

type MaintenanceChecker interface {
	GetMaintenanceMode(ctx context.Context) (bool, error)
}

// MaintenanceMiddleware answers 503 to non-admin API clients while the site
// is in maintenance mode. Admin and auth routes stay reachable.
func MaintenanceMiddleware(checker MaintenanceChecker, jwtSecret string, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/admin") ||
			strings.HasPrefix(path, "/api/auth") ||
			path == "/api/maintenance-status" ||
			path == "/health" {
			c.Next()
			return
		}

		on, err := checker.GetMaintenanceMode(c.Request.Context())
		if err != nil {
			// Fail open so a settings outage cannot lock the site
			logger.Warn().Err(err).Msg("maintenance check failed")
			c.Next()
			return
		}
		if !on {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader {
			if claims, err := accessClaims(token, jwtSecret); err == nil && claims.Role == models.RoleAdmin {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":            "Site is under maintenance",
			"maintenance_mode": true,
		})
		c.Abort()
	}
}
