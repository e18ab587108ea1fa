package dto

import (
	"time"

	"remind-candles/internal/birthday/domain"
)

// CreateBirthdayRequest is the body of POST /api/birthdays.
// BirthDate is YYYY-MM-DD, or MM-DD when the year is unknown.
type CreateBirthdayRequest struct {
	Name       string `json:"name"`
	BirthDate  string `json:"birth_date"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	CustomWish string `json:"custom_wish"`
	WishID     string `json:"wish_id"`
}

// UpdateBirthdayRequest only changes the fields that are set
type UpdateBirthdayRequest struct {
	Name       *string `json:"name,omitempty"`
	BirthDate  *string `json:"birth_date,omitempty"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	CustomWish *string `json:"custom_wish,omitempty"`
	WishID     *string `json:"wish_id,omitempty"`
}

type BirthdayResponse struct {
	*domain.Birthday
	BirthDate      string `json:"birth_date"`
	NextOccurrence string `json:"next_occurrence"`
	DaysUntil      int    `json:"days_until"`
	Age            *int   `json:"age,omitempty"` // Age reached at the next occurrence
}

// NewBirthdayResponse decorates a birthday with values relative to today
func NewBirthdayResponse(b *domain.Birthday, today time.Time) BirthdayResponse {
	resp := BirthdayResponse{
		Birthday:       b,
		BirthDate:      FormatBirthDate(b),
		NextOccurrence: b.NextOccurrence(today).Format(time.DateOnly),
		DaysUntil:      b.DaysUntil(today),
	}
	if age, ok := b.UpcomingAge(today); ok {
		resp.Age = &age
	}
	return resp
}

func NewBirthdayResponses(birthdays []*domain.Birthday, today time.Time) []BirthdayResponse {
	out := make([]BirthdayResponse, 0, len(birthdays))
	for _, b := range birthdays {
		out = append(out, NewBirthdayResponse(b, today))
	}
	return out
}

// FormatBirthDate is the inverse of the accepted input formats
func FormatBirthDate(b *domain.Birthday) string {
	if !b.YearKnown {
		return b.BirthDate.Format("01-02")
	}
	return b.BirthDate.Format(time.DateOnly)
}

type SearchResult struct {
	BirthdayResponse
	Score float64 `json:"score"`
}
