package delivery

import (
	"errors"
	"net/http"

	authdomain "remind-candles/internal/auth/domain"
	authdto "remind-candles/internal/auth/dto"
	"remind-candles/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication and push registration requests
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	vapidKey    string
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, vapidKey string) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, vapidKey: vapidKey}
}

// Register creates an email/password account
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req authdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authUsecase.Register(&req)
	if err != nil {
		if errors.Is(err, authdomain.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login authenticates with email and password
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req authdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authUsecase.Login(&req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GoogleSignIn exchanges a Firebase ID token for API tokens
// POST /api/auth/google
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req authdto.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authUsecase.GoogleSignIn(c.Request.Context(), req.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RefreshToken issues a new token pair
// POST /api/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req authdto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authUsecase.RefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout revokes a refresh token
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req authdto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authUsecase.Logout(req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, _ := c.Get("user")
	c.JSON(http.StatusOK, user)
}

// PushConfig returns what a web client needs to obtain a push token
// GET /api/push/config
func (h *AuthHandler) PushConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"vapid_key": h.vapidKey,
		"enabled":   h.vapidKey != "",
	})
}

// RegisterPushToken stores the caller's push token
// POST /api/push/tokens
func (h *AuthHandler) RegisterPushToken(c *gin.Context) {
	userID := c.GetString("userID")

	var req authdto.RegisterPushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authUsecase.RegisterPushToken(c.Request.Context(), userID, &req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Push token registered"})
}

// DeactivatePushToken keeps the token but stops deliveries to it
// POST /api/push/tokens/:token/deactivate
func (h *AuthHandler) DeactivatePushToken(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.authUsecase.DeactivatePushToken(c.Request.Context(), userID, c.Param("token")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push token deactivated"})
}

// DeletePushToken removes the token
// DELETE /api/push/tokens/:token
func (h *AuthHandler) DeletePushToken(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.authUsecase.DeletePushToken(c.Request.Context(), userID, c.Param("token")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push token deleted"})
}
