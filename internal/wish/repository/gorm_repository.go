package repository

import (
	"errors"
	"time"

	"remind-candles/internal/wish/domain"

	"gorm.io/gorm"
)

// gormWishRepository implements WishRepository using GORM
type gormWishRepository struct {
	db *gorm.DB
}

// NewGormWishRepository creates a new GORM-based wish repository
func NewGormWishRepository(db *gorm.DB) WishRepository {
	return &gormWishRepository{db: db}
}

func (r *gormWishRepository) FindByUserID(userID string) ([]*domain.WishTemplate, error) {
	var wishes []*domain.WishTemplate
	err := r.db.Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at ASC").
		Find(&wishes).Error
	return wishes, err
}

func (r *gormWishRepository) FindByID(id string) (*domain.WishTemplate, error) {
	var wish domain.WishTemplate
	if err := r.db.Where("id = ?", id).First(&wish).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &wish, nil
}

func (r *gormWishRepository) CountByUserID(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.WishTemplate{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *gormWishRepository) CreateBatch(wishes []*domain.WishTemplate) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(wishes).Error
	})
}

func (r *gormWishRepository) Create(wish *domain.WishTemplate) error {
	return r.db.Create(wish).Error
}

func (r *gormWishRepository) Update(wish *domain.WishTemplate) error {
	return r.db.Save(wish).Error
}

func (r *gormWishRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&domain.WishTemplate{}).Error
}

func (r *gormWishRepository) SetDefault(userID, id string) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.WishTemplate{}).
			Where("user_id = ? AND is_default = ?", userID, true).
			Updates(map[string]interface{}{"is_default": false, "updated_at": now}).Error; err != nil {
			return err
		}
		res := tx.Model(&domain.WishTemplate{}).
			Where("user_id = ? AND id = ?", userID, id).
			Updates(map[string]interface{}{"is_default": true, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrWishNotFound
		}
		return nil
	})
}

// gormDeliveryRepository implements DeliveryRepository using GORM
type gormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GORM-based delivery log repository
func NewGormDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &gormDeliveryRepository{db: db}
}

func (r *gormDeliveryRepository) Create(delivery *domain.WishDelivery) error {
	return r.db.Create(delivery).Error
}

func (r *gormDeliveryRepository) FindByBirthday(userID, birthdayID string, limit int) ([]*domain.WishDelivery, error) {
	var deliveries []*domain.WishDelivery
	query := r.db.Where("user_id = ? AND birthday_id = ?", userID, birthdayID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&deliveries).Error
	return deliveries, err
}
