package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	authdomain "remind-candles/internal/auth/domain"
	authdto "remind-candles/internal/auth/dto"
	"remind-candles/internal/auth/repository"
	"remind-candles/pkg/config"
	"remind-candles/pkg/database"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVerifier struct {
	token *auth.Token
	err   error
}

func (f *fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	return f.token, f.err
}

func newTestUsecase(t *testing.T, verifier IDTokenVerifier) (AuthUsecase, repository.PushTokenRepository) {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &authdomain.PushToken{}))

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
	tokenRepo := repository.NewPushTokenRepository(db)
	return NewAuthUsecase(repository.NewUserRepository(db), tokenRepo, verifier, cfg, zap.NewNop()), tokenRepo
}

func TestRegisterLoginValidate(t *testing.T) {
	uc, _ := newTestUsecase(t, nil)

	resp, err := uc.Register(&authdto.RegisterRequest{Email: "alice@example.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	_, err = uc.Register(&authdto.RegisterRequest{Email: "alice@example.com", Password: "secret1", Name: "Alice"})
	assert.ErrorIs(t, err, authdomain.ErrEmailTaken)

	_, err = uc.Login(&authdto.LoginRequest{Email: "alice@example.com", Password: "wrong!!"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	login, err := uc.Login(&authdto.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := uc.ValidateToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = uc.ValidateToken("garbage")
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)
}

func TestRefreshTokenRotates(t *testing.T) {
	uc, _ := newTestUsecase(t, nil)

	resp, err := uc.Register(&authdto.RegisterRequest{Email: "bob@example.com", Password: "secret1", Name: "Bob"})
	require.NoError(t, err)

	next, err := uc.RefreshToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, next.RefreshToken)

	_, err = uc.RefreshToken(resp.RefreshToken)
	assert.Error(t, err, "a refresh token cannot be reused")

	require.NoError(t, uc.Logout(next.RefreshToken))
	_, err = uc.RefreshToken(next.RefreshToken)
	assert.Error(t, err)
}

func TestGoogleSignIn(t *testing.T) {
	verifier := &fakeVerifier{token: &auth.Token{
		UID: "firebase-uid",
		Claims: map[string]interface{}{
			"email":          "carol@example.com",
			"email_verified": true,
			"name":           "Carol",
			"picture":        "https://example.com/carol.png",
		},
	}}
	uc, _ := newTestUsecase(t, verifier)

	resp, err := uc.GoogleSignIn(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, authdomain.ProviderGoogle, resp.User.Provider)
	assert.Equal(t, "Carol", resp.User.Name)

	// Second sign-in updates the same account
	again, err := uc.GoogleSignIn(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, again.User.ID)

	_, err = uc.Login(&authdto.LoginRequest{Email: "carol@example.com", Password: "whatever"})
	assert.Error(t, err)
}

func TestGoogleSignInRejects(t *testing.T) {
	uc, _ := newTestUsecase(t, nil)
	_, err := uc.GoogleSignIn(context.Background(), "id-token")
	assert.Error(t, err)

	uc, _ = newTestUsecase(t, &fakeVerifier{err: errors.New("expired")})
	_, err = uc.GoogleSignIn(context.Background(), "id-token")
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	uc, _ = newTestUsecase(t, &fakeVerifier{token: &auth.Token{Claims: map[string]interface{}{
		"email": "dave@example.com", "email_verified": false,
	}}})
	_, err = uc.GoogleSignIn(context.Background(), "id-token")
	assert.Error(t, err)
}

func TestPushTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	uc, tokens := newTestUsecase(t, nil)

	require.NoError(t, uc.RegisterPushToken(ctx, "u1", &authdto.RegisterPushTokenRequest{Token: "tok", Platform: "web"}))
	active, err := tokens.GetActiveTokens(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, uc.DeactivatePushToken(ctx, "u1", "tok"))
	active, err = tokens.GetActiveTokens(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, uc.DeletePushToken(ctx, "u1", "tok"))
	assert.Error(t, uc.RegisterPushToken(ctx, "", &authdto.RegisterPushTokenRequest{Token: "tok"}))
}
