package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"remind-candles/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:             "0",
		Env:              "test",
		DBDriver:         "sqlite",
		DBDSN:            filepath.Join(t.TempDir(), "remind-candles.db"),
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: time.Hour,
		TokenStore:       "sql",
		CheckHour:        9,
		Location:         time.UTC,
		WishChannels:     []string{"push", "whatsapp", "email"},
	}
}

func TestBuildClosesResourcesOnFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.RedisURL = "not-a-redis-url"

	a := &app{cfg: cfg, log: zap.NewNop()}
	closed := false
	a.onClose(func() error {
		closed = true
		return nil
	})

	got, err := build(context.Background(), a)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, closed)

	// the database opened before the failure is closed too
	require.NotNil(t, a.db)
	sqlDB, err := a.db.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
}

func TestBuildWiresLocalMode(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.close()

	assert.NotNil(t, a.handler)
	assert.NotNil(t, a.notifications)
	assert.NotNil(t, a.scheduler)
	assert.Nil(t, a.bus)
}
