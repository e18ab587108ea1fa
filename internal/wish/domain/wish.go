package domain

import (
	"errors"
	"time"
)

// DefaultWishMessage is sent when neither the birthday nor the user supplies one
const DefaultWishMessage = "Happy Birthday 🎉 Wishing you lots of happiness and success!"

var (
	ErrWishNotFound        = errors.New("wish not found")
	ErrCannotDeleteDefault = errors.New("cannot delete the default wish or the only wish")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidWish         = errors.New("wish name and content are required")
)

// WishTemplate is a reusable birthday message
type WishTemplate struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeliveryStatus is the outcome of one channel attempt
type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
	DeliverySkipped DeliveryStatus = "skipped"
)

// WishDelivery logs one attempt to deliver a birthday wish
type WishDelivery struct {
	ID         string         `json:"id" gorm:"primaryKey"`
	UserID     string         `json:"user_id" gorm:"index;not null"`
	BirthdayID string         `json:"birthday_id" gorm:"index;not null"`
	Channel    string         `json:"channel"`
	Status     DeliveryStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	WishDate   string         `json:"wish_date" gorm:"index"` // YYYY-MM-DD in the check time zone
	CreatedAt  time.Time      `json:"created_at"`
}
