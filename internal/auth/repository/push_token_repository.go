package repository

import (
	"context"
	"time"

	authdomain "remind-candles/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pushTokenRepository implements PushTokenRepository on SQL
type pushTokenRepository struct {
	db *gorm.DB
}

// NewPushTokenRepository creates a new instance of pushTokenRepository
func NewPushTokenRepository(db *gorm.DB) PushTokenRepository {
	return &pushTokenRepository{
		db: db,
	}
}

// SaveToken saves or re-activates a push token for a user (atomic upsert)
func (r *pushTokenRepository) SaveToken(ctx context.Context, userID, token string, device authdomain.DeviceInfo) error {
	if userID == "" || token == "" {
		return authdomain.ErrPushTokenRequired
	}

	now := time.Now()
	pushToken := &authdomain.PushToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		Platform:  device.Platform,
		UserAgent: device.UserAgent,
		Language:  device.Language,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// A token moves to whichever user registered it last
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "user_agent", "language", "is_active", "updated_at"}),
	}).Create(pushToken).Error
}

func (r *pushTokenRepository) GetActiveTokens(ctx context.Context, userID string) ([]authdomain.PushToken, error) {
	var tokens []authdomain.PushToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("updated_at DESC").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *pushTokenRepository) DeactivateToken(ctx context.Context, userID, token string) error {
	return r.db.WithContext(ctx).Model(&authdomain.PushToken{}).
		Where("user_id = ? AND token = ?", userID, token).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		}).Error
}

func (r *pushTokenRepository) DeleteToken(ctx context.Context, userID, token string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&authdomain.PushToken{}).Error
}

func (r *pushTokenRepository) DeleteTokensByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&authdomain.PushToken{}).Error
}
