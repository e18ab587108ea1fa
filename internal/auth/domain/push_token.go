package domain

import (
	"errors"
	"time"
)

var ErrPushTokenRequired = errors.New("userId and push token are required")

// PushToken is a messaging registration token for one browser or device
// installation of a user.
type PushToken struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"` // Don't expose token in JSON
	Platform  string    `json:"platform"`
	UserAgent string    `json:"user_agent"`
	Language  string    `json:"language"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeviceInfo is what a client reports about itself when registering.
type DeviceInfo struct {
	Platform  string `json:"platform"`
	UserAgent string `json:"user_agent"`
	Language  string `json:"language"`
}
