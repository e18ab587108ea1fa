package repository

import "remind-candles/internal/wish/domain"

// WishRepository defines the interface for wish template data access
type WishRepository interface {
	// FindByUserID returns the user's wishes, default first
	FindByUserID(userID string) ([]*domain.WishTemplate, error)

	// FindByID returns nil, nil when the wish does not exist
	FindByID(id string) (*domain.WishTemplate, error)

	CountByUserID(userID string) (int64, error)

	// CreateBatch inserts several wishes in one transaction
	CreateBatch(wishes []*domain.WishTemplate) error

	Create(wish *domain.WishTemplate) error

	Update(wish *domain.WishTemplate) error

	Delete(id string) error

	// SetDefault makes id the only default wish of userID
	SetDefault(userID, id string) error
}

// DeliveryRepository stores the wish delivery log
type DeliveryRepository interface {
	Create(delivery *domain.WishDelivery) error

	// FindByBirthday returns the attempts for a birthday, newest first
	FindByBirthday(userID, birthdayID string, limit int) ([]*domain.WishDelivery, error)
}
