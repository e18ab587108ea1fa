package dto

import authdomain "remind-candles/internal/auth/domain"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

// GoogleSignInRequest carries a Firebase ID token obtained by the client
// after Google (or any Firebase) sign-in.
type GoogleSignInRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	User         *authdomain.User `json:"user"`
}

type RegisterPushTokenRequest struct {
	Token     string `json:"token" binding:"required"`
	Platform  string `json:"platform"`
	UserAgent string `json:"user_agent"`
	Language  string `json:"language"`
}
