package delivery

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"remind-candles/internal/birthday/domain"
	"remind-candles/internal/birthday/dto"
	"remind-candles/internal/birthday/usecase"

	"github.com/gin-gonic/gin"
)

const defaultUpcomingDays = 30

// BirthdayHandler handles birthday-related HTTP requests
type BirthdayHandler struct {
	birthdayUsecase usecase.BirthdayUsecase
	location        *time.Location
}

// NewBirthdayHandler creates a new BirthdayHandler. Day arithmetic uses loc.
func NewBirthdayHandler(birthdayUsecase usecase.BirthdayUsecase, loc *time.Location) *BirthdayHandler {
	if loc == nil {
		loc = time.Local
	}
	return &BirthdayHandler{
		birthdayUsecase: birthdayUsecase,
		location:        loc,
	}
}

func (h *BirthdayHandler) today() time.Time {
	return time.Now().In(h.location)
}

// GetBirthdays returns all birthdays for the authenticated user
// GET /api/birthdays
func (h *BirthdayHandler) GetBirthdays(c *gin.Context) {
	userID := c.GetString("userID")

	birthdays, err := h.birthdayUsecase.ListBirthdays(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"birthdays": dto.NewBirthdayResponses(birthdays, h.today()),
		"total":     len(birthdays),
	})
}

// GetBirthdayByID returns a specific birthday
// GET /api/birthdays/:id
func (h *BirthdayHandler) GetBirthdayByID(c *gin.Context) {
	userID := c.GetString("userID")

	birthday, err := h.birthdayUsecase.GetBirthday(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBirthdayResponse(birthday, h.today()))
}

// CreateBirthday adds a birthday
// POST /api/birthdays
func (h *BirthdayHandler) CreateBirthday(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.CreateBirthdayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	birthday, err := h.birthdayUsecase.AddBirthday(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewBirthdayResponse(birthday, h.today()))
}

// UpdateBirthday applies a partial update
// PUT /api/birthdays/:id
func (h *BirthdayHandler) UpdateBirthday(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.UpdateBirthdayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	birthday, err := h.birthdayUsecase.UpdateBirthday(userID, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBirthdayResponse(birthday, h.today()))
}

// DeleteBirthday deletes a birthday
// DELETE /api/birthdays/:id
func (h *BirthdayHandler) DeleteBirthday(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.birthdayUsecase.DeleteBirthday(userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Birthday deleted successfully"})
}

// GetUpcoming returns birthdays in the next N days, soonest first
// GET /api/birthdays/upcoming?days=30
func (h *BirthdayHandler) GetUpcoming(c *gin.Context) {
	userID := c.GetString("userID")

	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultUpcomingDays)))
	if err != nil || days < 0 || days > 366 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 0 and 366"})
		return
	}

	today := h.today()
	birthdays, err := h.birthdayUsecase.Upcoming(userID, today, days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"birthdays": dto.NewBirthdayResponses(birthdays, today)})
}

// GetOnDate returns birthdays celebrated on a calendar day
// GET /api/birthdays/calendar?date=2025-03-15
func (h *BirthdayHandler) GetOnDate(c *gin.Context) {
	userID := c.GetString("userID")

	date := h.today()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, raw, h.location)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	birthdays, err := h.birthdayUsecase.OnDate(userID, date.Year(), date.Month(), date.Day())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":      date.Format(time.DateOnly),
		"birthdays": dto.NewBirthdayResponses(birthdays, date),
	})
}

// SearchBirthdays fuzzy-searches name, email and phone
// GET /api/birthdays/search?q=alice&limit=20
func (h *BirthdayHandler) SearchBirthdays(c *gin.Context) {
	userID := c.GetString("userID")

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	scored, err := h.birthdayUsecase.Search(userID, query, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	today := h.today()
	results := make([]dto.SearchResult, 0, len(scored))
	for _, s := range scored {
		results = append(results, dto.SearchResult{
			BirthdayResponse: dto.NewBirthdayResponse(s.Birthday, today),
			Score:            s.Score,
		})
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func respondError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": validationErr.Fields})
	case errors.Is(err, domain.ErrBirthdayNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Birthday not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
