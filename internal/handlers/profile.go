package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/models"
)

type ProfileHandler struct {
	profiles ProfileStore
}

func NewProfileHandler(profiles ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetProfile retrieves the user's purchaser profile, creating an empty one
// on first access.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, ok := requireUserID(c)
	if !ok {
		return
	}

	profile, err := h.profiles.GetUserProfile(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates the fields present in the request
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	id, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.UserProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profiles.UpdateUserProfile(c.Request.Context(), id, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
