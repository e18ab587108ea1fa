package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	authdomain "remind-candles/internal/auth/domain"
	bdomain "remind-candles/internal/birthday/domain"
	"remind-candles/internal/wishing"

	"github.com/gin-gonic/gin"
)

// BirthdayGetter loads a birthday with an ownership check
type BirthdayGetter interface {
	GetBirthday(userID, id string) (*bdomain.Birthday, error)
}

// Wisher sends or prepares birthday wishes
type Wisher interface {
	SendBirthdayWish(ctx context.Context, owner wishing.Owner, b *bdomain.Birthday, now time.Time) (*wishing.Result, error)
	WishLink(ownerID string, b *bdomain.Birthday) (wishing.Link, bool)
}

// WishingHandler serves manual wishes
type WishingHandler struct {
	birthdays BirthdayGetter
	wisher    Wisher
}

func NewWishingHandler(birthdays BirthdayGetter, wisher Wisher) *WishingHandler {
	return &WishingHandler{birthdays: birthdays, wisher: wisher}
}

func (h *WishingHandler) loadBirthday(c *gin.Context) (*bdomain.Birthday, bool) {
	b, err := h.birthdays.GetBirthday(c.GetString("userID"), c.Param("id"))
	switch {
	case err == nil:
		return b, true
	case errors.Is(err, bdomain.ErrBirthdayNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Birthday not found"})
	case errors.Is(err, bdomain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
	return nil, false
}

// GetWishLink returns the WhatsApp or mailto link that sends the prepared wish
// GET /api/birthdays/:id/wish-link
func (h *WishingHandler) GetWishLink(c *gin.Context) {
	b, ok := h.loadBirthday(c)
	if !ok {
		return
	}

	link, ok := h.wisher.WishLink(c.GetString("userID"), b)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Birthday has no phone or email", "message": link.Message})
		return
	}
	c.JSON(http.StatusOK, link)
}

// SendWish sends the birthday wish now through the channel chain
// POST /api/birthdays/:id/wish
func (h *WishingHandler) SendWish(c *gin.Context) {
	b, ok := h.loadBirthday(c)
	if !ok {
		return
	}

	owner := wishing.Owner{ID: c.GetString("userID")}
	if u, exists := c.Get("user"); exists {
		if user, ok := u.(*authdomain.User); ok {
			owner.Name = user.Name
			owner.Email = user.Email
		}
	}

	result, err := h.wisher.SendBirthdayWish(c.Request.Context(), owner, b, time.Now())
	switch {
	case errors.Is(err, wishing.ErrAlreadyWished):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, wishing.ErrNoApplicableChannel):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "result": result})
	case errors.Is(err, wishing.ErrAllChannelsFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "result": result})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, result)
	}
}
