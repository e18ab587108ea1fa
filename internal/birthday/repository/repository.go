package repository

import "remind-candles/internal/birthday/domain"

// BirthdayRepository defines the interface for birthday data access
type BirthdayRepository interface {
	Create(birthday *domain.Birthday) error

	// FindByID returns nil, nil when the birthday does not exist
	FindByID(id string) (*domain.Birthday, error)

	// FindByUserID returns all birthdays of a user ordered by name
	FindByUserID(userID string) ([]*domain.Birthday, error)

	// FindByMonthDay returns a user's birthdays born on month/day, any year
	FindByMonthDay(userID string, month, day int) ([]*domain.Birthday, error)

	Update(birthday *domain.Birthday) error

	Delete(id string) error
}
