package usecase

import (
	"time"

	"remind-candles/internal/birthday/domain"
	"remind-candles/internal/birthday/dto"
)

// BirthdayUsecase defines the interface for birthday business logic
type BirthdayUsecase interface {
	// AddBirthday validates and stores a new birthday
	AddBirthday(userID string, req *dto.CreateBirthdayRequest) (*domain.Birthday, error)

	// GetBirthday retrieves a birthday by ID (with ownership check)
	GetBirthday(userID, id string) (*domain.Birthday, error)

	// ListBirthdays returns all birthdays of a user ordered by name
	ListBirthdays(userID string) ([]*domain.Birthday, error)

	// UpdateBirthday applies a partial update and re-validates the result
	UpdateBirthday(userID, id string, req *dto.UpdateBirthdayRequest) (*domain.Birthday, error)

	// DeleteBirthday deletes a birthday
	DeleteBirthday(userID, id string) error

	// Upcoming returns birthdays celebrated within the next days, soonest first
	Upcoming(userID string, today time.Time, days int) ([]*domain.Birthday, error)

	// OnDate returns birthdays celebrated on the given calendar day of year
	OnDate(userID string, year int, month time.Month, day int) ([]*domain.Birthday, error)

	// Search ranks birthdays by fuzzy match on name, email and phone
	Search(userID, query string, limit int) ([]ScoredBirthday, error)
}

type ScoredBirthday struct {
	Birthday *domain.Birthday
	Score    float64
}
