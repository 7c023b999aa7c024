package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sixywin-backend/internal/services"
)

type UserHandler struct {
	store      *services.Store
	jwtService *services.JWTService
}

func NewUserHandler(store *services.Store, jwtService *services.JWTService) *UserHandler {
	return &UserHandler{
		store:      store,
		jwtService: jwtService,
	}
}

// GetBalance returns the caller's wallet, creating it with the starting
// spendable balance on first access.
func (h *UserHandler) GetBalance(c *gin.Context) {
	userID := c.GetInt64("user_id")

	wallet, err := h.store.GetWallet(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"wallet":  wallet,
	})
}

type tokenRequest struct {
	UserID int64 `json:"user_id" binding:"required,gt=0"`
}

// IssueToken exchanges a user ID for a signed JWT. There is no identity
// provider in front of this service; the platform gateway is expected to sit
// upstream in production.
func (h *UserHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	token, err := h.jwtService.GenerateToken(req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
	})
}
