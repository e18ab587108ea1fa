package repository

import (
	"context"
	"testing"
	"time"

	authdomain "remind-candles/internal/auth/domain"
	"remind-candles/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &authdomain.PushToken{}))
	return db
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user := &authdomain.User{Email: "alice@example.com", Name: "Alice", Provider: authdomain.ProviderEmail}
	require.NoError(t, repo.Create(user))
	require.NotEmpty(t, user.ID)

	found, err := repo.FindByEmail("alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing, err := repo.FindByID("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	found.Name = "Alice B"
	require.NoError(t, repo.Update(found))
	again, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", again.Name)

	ids, err := repo.ListIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{user.ID}, ids)
}

func TestRefreshTokensDropExpiredOnSave(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	require.NoError(t, repo.SaveRefreshToken(&authdomain.RefreshToken{Token: "old", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, repo.SaveRefreshToken(&authdomain.RefreshToken{Token: "new", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}))

	old, err := repo.FindRefreshToken("old")
	require.NoError(t, err)
	assert.Nil(t, old)

	current, err := repo.FindRefreshToken("new")
	require.NoError(t, err)
	require.NotNil(t, current)

	require.NoError(t, repo.DeleteRefreshToken("new"))
	gone, err := repo.FindRefreshToken("new")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestPushTokenRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPushTokenRepository(newTestDB(t))

	assert.ErrorIs(t, repo.SaveToken(ctx, "", "tok", authdomain.DeviceInfo{}), authdomain.ErrPushTokenRequired)

	require.NoError(t, repo.SaveToken(ctx, "u1", "tok-a", authdomain.DeviceInfo{Platform: "Linux x86_64", Language: "en-US"}))
	require.NoError(t, repo.SaveToken(ctx, "u1", "tok-b", authdomain.DeviceInfo{Platform: "iPhone"}))

	tokens, err := repo.GetActiveTokens(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, tokens, 2)

	require.NoError(t, repo.DeactivateToken(ctx, "u1", "tok-a"))
	tokens, err = repo.GetActiveTokens(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "tok-b", tokens[0].Token)

	// Re-registering reactivates and may move the token to another user
	require.NoError(t, repo.SaveToken(ctx, "u2", "tok-a", authdomain.DeviceInfo{Platform: "Android"}))
	tokens, err = repo.GetActiveTokens(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "Android", tokens[0].Platform)

	require.NoError(t, repo.DeleteToken(ctx, "u1", "tok-b"))
	tokens, err = repo.GetActiveTokens(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, tokens)

	require.NoError(t, repo.DeleteTokensByUserID(ctx, "u2"))
	tokens, err = repo.GetActiveTokens(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}
