package repository

import (
	"errors"

	"remind-candles/internal/birthday/domain"

	"gorm.io/gorm"
)

// gormBirthdayRepository implements BirthdayRepository using GORM
type gormBirthdayRepository struct {
	db *gorm.DB
}

// NewGormBirthdayRepository creates a new GORM-based birthday repository
func NewGormBirthdayRepository(db *gorm.DB) BirthdayRepository {
	return &gormBirthdayRepository{db: db}
}

func (r *gormBirthdayRepository) Create(birthday *domain.Birthday) error {
	return r.db.Create(birthday).Error
}

func (r *gormBirthdayRepository) FindByID(id string) (*domain.Birthday, error) {
	var birthday domain.Birthday
	if err := r.db.Where("id = ?", id).First(&birthday).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &birthday, nil
}

func (r *gormBirthdayRepository) FindByUserID(userID string) ([]*domain.Birthday, error) {
	var birthdays []*domain.Birthday
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&birthdays).Error
	return birthdays, err
}

func (r *gormBirthdayRepository) FindByMonthDay(userID string, month, day int) ([]*domain.Birthday, error) {
	var birthdays []*domain.Birthday
	err := r.db.Where("user_id = ? AND birth_month = ? AND birth_day = ?", userID, month, day).
		Order("name ASC").
		Find(&birthdays).Error
	return birthdays, err
}

func (r *gormBirthdayRepository) Update(birthday *domain.Birthday) error {
	return r.db.Save(birthday).Error
}

func (r *gormBirthdayRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&domain.Birthday{}).Error
}
