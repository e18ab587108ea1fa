package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"remind-candles/internal/notification"
	"remind-candles/internal/notification/domain"
	"remind-candles/pkg/fcm"

	"github.com/gin-gonic/gin"
)

// NotificationService is what the settings endpoints need from the notification service
type NotificationService interface {
	GetSettings(userID string) (*domain.NotificationSettings, error)
	UpdateSettings(settings *domain.NotificationSettings) error
	SendTestNotification(ctx context.Context, userID string) (int, error)
	CheckUser(ctx context.Context, userID string, now time.Time) (*notification.CheckSummary, error)
}

// SettingsHandler serves notification settings and manual triggers
type SettingsHandler struct {
	notifications NotificationService
}

func NewSettingsHandler(notifications NotificationService) *SettingsHandler {
	return &SettingsHandler{notifications: notifications}
}

// UpdateNotificationSettingsRequest only changes the fields that are set
type UpdateNotificationSettingsRequest struct {
	Sound       *string `json:"sound,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
	AdvanceDays *int    `json:"advance_days,omitempty"`
}

// GetNotificationSettings returns the caller's settings, defaults if never saved
// GET /api/settings/notifications
func (h *SettingsHandler) GetNotificationSettings(c *gin.Context) {
	settings, err := h.notifications.GetSettings(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateNotificationSettings validates and stores settings
// PUT /api/settings/notifications
func (h *SettingsHandler) UpdateNotificationSettings(c *gin.Context) {
	var req UpdateNotificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.notifications.GetSettings(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if req.Sound != nil {
		settings.Sound = domain.Sound(*req.Sound)
	}
	if req.Enabled != nil {
		settings.Enabled = *req.Enabled
	}
	if req.AdvanceDays != nil {
		settings.AdvanceDays = *req.AdvanceDays
	}

	if err := h.notifications.UpdateSettings(settings); err != nil {
		if errors.Is(err, domain.ErrInvalidSettings) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// SendTestNotification pushes a test message to the caller's devices
// POST /api/notifications/test
func (h *SettingsHandler) SendTestNotification(c *gin.Context) {
	reached, err := h.notifications.SendTestNotification(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		switch {
		case errors.Is(err, fcm.ErrNoTokens):
			c.JSON(http.StatusNotFound, gin.H{"error": "No registered devices"})
		case errors.Is(err, fcm.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Test notification sent", "devices": reached})
}

// CheckNow runs the birthday check for the caller immediately
// POST /api/notifications/check
func (h *SettingsHandler) CheckNow(c *gin.Context) {
	summary, err := h.notifications.CheckUser(c.Request.Context(), c.GetString("userID"), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
