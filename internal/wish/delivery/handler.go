package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"remind-candles/internal/wish/domain"
	"remind-candles/internal/wish/dto"
	"remind-candles/internal/wish/usecase"

	"github.com/gin-gonic/gin"
)

// WishHandler handles wish library HTTP requests
type WishHandler struct {
	wishUsecase usecase.WishUsecase
}

// NewWishHandler creates a new WishHandler
func NewWishHandler(wishUsecase usecase.WishUsecase) *WishHandler {
	return &WishHandler{wishUsecase: wishUsecase}
}

// GetWishes returns the user's wish library
// GET /api/wishes
func (h *WishHandler) GetWishes(c *gin.Context) {
	wishes, err := h.wishUsecase.ListWishes(c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishes": wishes})
}

// GetDefaultWish returns the wish used when a birthday has none
// GET /api/wishes/default
func (h *WishHandler) GetDefaultWish(c *gin.Context) {
	wish, err := h.wishUsecase.DefaultWish(c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wish)
}

// CreateWish adds a wish to the library
// POST /api/wishes
func (h *WishHandler) CreateWish(c *gin.Context) {
	var req dto.CreateWishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wish, err := h.wishUsecase.AddWish(c.GetString("userID"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wish)
}

// UpdateWish edits a wish
// PUT /api/wishes/:id
func (h *WishHandler) UpdateWish(c *gin.Context) {
	var req dto.UpdateWishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wish, err := h.wishUsecase.UpdateWish(c.GetString("userID"), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wish)
}

// DeleteWish removes a wish
// DELETE /api/wishes/:id
func (h *WishHandler) DeleteWish(c *gin.Context) {
	if err := h.wishUsecase.DeleteWish(c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Wish deleted successfully"})
}

// SetDefaultWish makes a wish the default
// PUT /api/wishes/:id/default
func (h *WishHandler) SetDefaultWish(c *gin.Context) {
	wish, err := h.wishUsecase.SetDefault(c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wish)
}

// GetDeliveries returns the wish delivery log of a birthday
// GET /api/birthdays/:id/deliveries?limit=50
func (h *WishHandler) GetDeliveries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	deliveries, err := h.wishUsecase.ListDeliveries(c.GetString("userID"), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deliveries": deliveries})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidWish):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCannotDeleteDefault):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrWishNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Wish not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
