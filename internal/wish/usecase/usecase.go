package usecase

import (
	"remind-candles/internal/wish/domain"
	"remind-candles/internal/wish/dto"
)

// WishUsecase manages a user's wish library and the delivery log
type WishUsecase interface {
	// ListWishes seeds the default wishes on first access
	ListWishes(userID string) ([]*domain.WishTemplate, error)

	GetWish(userID, id string) (*domain.WishTemplate, error)

	// DefaultWish falls back to the first wish when none is flagged
	DefaultWish(userID string) (*domain.WishTemplate, error)

	// AddWish never makes the new wish the default
	AddWish(userID string, req *dto.CreateWishRequest) (*domain.WishTemplate, error)

	UpdateWish(userID, id string, req *dto.UpdateWishRequest) (*domain.WishTemplate, error)

	// DeleteWish refuses to delete the default wish or the only wish
	DeleteWish(userID, id string) error

	SetDefault(userID, id string) (*domain.WishTemplate, error)

	RecordDelivery(delivery *domain.WishDelivery) error

	ListDeliveries(userID, birthdayID string, limit int) ([]*domain.WishDelivery, error)
}
