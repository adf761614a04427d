package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/models"
)

func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}

		claims, err := accessClaims(tokenString, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		setUser(c, claims)
		c.Next()
	}
}

func AdminMiddleware(jwtSecret string) gin.HandlerFunc {
	authenticate := AuthMiddleware(jwtSecret)
	return func(c *gin.Context) {
		authenticate(c)
		if c.IsAborted() {
			return
		}

		if c.GetString("user_role") != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuthMiddleware extracts user info from a JWT if one is present.
// Guests and bad tokens continue without user context.
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString != "" {
			if claims, err := accessClaims(tokenString, jwtSecret); err == nil {
				setUser(c, claims)
			}
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's id, or nil for guests.
func GetUserID(c *gin.Context) *int {
	v, ok := c.Get("user_id")
	if !ok {
		return nil
	}
	id, ok := v.(int)
	if !ok {
		return nil
	}
	return &id
}

func accessClaims(tokenString, jwtSecret string) (*auth.Claims, error) {
	claims, err := auth.ValidateToken(tokenString, jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType == auth.TokenTypeRefresh {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

func setUser(c *gin.Context, claims *auth.Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("user_email", claims.Email)
	c.Set("user_role", claims.Role)
}
