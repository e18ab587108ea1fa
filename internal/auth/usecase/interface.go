package usecase

import (
	"context"

	authdomain "remind-candles/internal/auth/domain"
	authdto "remind-candles/internal/auth/dto"

	"firebase.google.com/go/v4/auth"
)

// AuthUsecase defines authentication and device registration logic
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	GoogleSignIn(ctx context.Context, idToken string) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*authdomain.User, error)

	RegisterPushToken(ctx context.Context, userID string, req *authdto.RegisterPushTokenRequest) error
	DeactivatePushToken(ctx context.Context, userID, token string) error
	DeletePushToken(ctx context.Context, userID, token string) error
}

// IDTokenVerifier is satisfied by the Firebase auth client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}
