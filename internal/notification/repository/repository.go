package repository

import (
	"errors"
	"time"

	"remind-candles/internal/notification/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository stores notification settings
type SettingsRepository interface {
	// Get returns nil, nil when the user never saved settings
	Get(userID string) (*domain.NotificationSettings, error)
	Save(settings *domain.NotificationSettings) error
}

// ReminderLogRepository deduplicates reminders per user, birthday and day
type ReminderLogRepository interface {
	// Claim reports false when the reminder was already claimed
	Claim(userID, birthdayID, date string) (bool, error)
	Release(userID, birthdayID, date string) error
	// Prune removes entries older than before
	Prune(before time.Time) error
}

type gormSettingsRepository struct {
	db *gorm.DB
}

func NewGormSettingsRepository(db *gorm.DB) SettingsRepository {
	return &gormSettingsRepository{db: db}
}

func (r *gormSettingsRepository) Get(userID string) (*domain.NotificationSettings, error) {
	var settings domain.NotificationSettings
	if err := r.db.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *gormSettingsRepository) Save(settings *domain.NotificationSettings) error {
	settings.UpdatedAt = time.Now()
	return r.db.Save(settings).Error
}

type gormReminderLogRepository struct {
	db *gorm.DB
}

func NewGormReminderLogRepository(db *gorm.DB) ReminderLogRepository {
	return &gormReminderLogRepository{db: db}
}

func (r *gormReminderLogRepository) Claim(userID, birthdayID, date string) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&domain.ReminderLog{
		UserID:     userID,
		BirthdayID: birthdayID,
		Date:       date,
		CreatedAt:  time.Now(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *gormReminderLogRepository) Release(userID, birthdayID, date string) error {
	return r.db.Where("user_id = ? AND birthday_id = ? AND date = ?", userID, birthdayID, date).
		Delete(&domain.ReminderLog{}).Error
}

func (r *gormReminderLogRepository) Prune(before time.Time) error {
	return r.db.Where("created_at < ?", before).Delete(&domain.ReminderLog{}).Error
}
