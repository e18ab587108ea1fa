package repository

import (
	"context"

	authdomain "remind-candles/internal/auth/domain"
)

// UserRepository defines persistence for users and refresh tokens
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByEmail(email string) (*authdomain.User, error)
	FindByID(id string) (*authdomain.User, error)
	Update(user *authdomain.User) error
	ListIDs() ([]string, error)
	SaveRefreshToken(token *authdomain.RefreshToken) error
	FindRefreshToken(token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(token string) error
}

// PushTokenRepository defines the interface for push token operations
type PushTokenRepository interface {
	SaveToken(ctx context.Context, userID, token string, device authdomain.DeviceInfo) error
	GetActiveTokens(ctx context.Context, userID string) ([]authdomain.PushToken, error)
	DeactivateToken(ctx context.Context, userID, token string) error
	DeleteToken(ctx context.Context, userID, token string) error
	DeleteTokensByUserID(ctx context.Context, userID string) error
}
