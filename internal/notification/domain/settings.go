package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sound played by clients when a reminder arrives
type Sound string

const (
	SoundSoftChime    Sound = "soft-chime"
	SoundBirthdayTune Sound = "birthday-tune"
	SoundLoudAlert    Sound = "loud-alert"
)

var ErrInvalidSettings = errors.New("invalid notification settings")

// AllowedAdvanceDays are the supported reminder lead times
var AllowedAdvanceDays = []int{0, 1, 3}

// NotificationSettings are a user's reminder preferences
type NotificationSettings struct {
	UserID      string    `json:"user_id" gorm:"primaryKey"`
	Sound       Sound     `json:"sound"`
	Enabled     bool      `json:"enabled" gorm:"index"`
	AdvanceDays int       `json:"advance_days"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultSettings is what a user has before saving anything
func DefaultSettings(userID string) *NotificationSettings {
	return &NotificationSettings{
		UserID:      userID,
		Sound:       SoundBirthdayTune,
		Enabled:     false,
		AdvanceDays: 0,
	}
}

func (s *NotificationSettings) Validate() error {
	switch s.Sound {
	case SoundSoftChime, SoundBirthdayTune, SoundLoudAlert:
	default:
		return fmt.Errorf("%w: unknown sound %q", ErrInvalidSettings, s.Sound)
	}

	for _, d := range AllowedAdvanceDays {
		if s.AdvanceDays == d {
			return nil
		}
	}
	return fmt.Errorf("%w: advance_days must be one of %v", ErrInvalidSettings, AllowedAdvanceDays)
}

// ReminderLog records that a reminder went out, one row per user, birthday and day
type ReminderLog struct {
	UserID     string `gorm:"primaryKey"`
	BirthdayID string `gorm:"primaryKey"`
	Date       string `gorm:"primaryKey"` // YYYY-MM-DD
	CreatedAt  time.Time
}
