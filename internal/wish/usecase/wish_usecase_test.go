package usecase

import (
	"testing"
	"time"

	"remind-candles/internal/wish/domain"
	"remind-candles/internal/wish/dto"
	"remind-candles/internal/wish/repository"
	"remind-candles/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestUsecase(t *testing.T) WishUsecase {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.WishTemplate{}, &domain.WishDelivery{}))
	return NewWishUsecase(repository.NewGormWishRepository(db), repository.NewGormDeliveryRepository(db), zap.NewNop())
}

func countDefaults(wishes []*domain.WishTemplate) int {
	n := 0
	for _, w := range wishes {
		if w.IsDefault {
			n++
		}
	}
	return n
}

func TestSeedsDefaultsOnce(t *testing.T) {
	uc := newTestUsecase(t)

	wishes, err := uc.ListWishes("u1")
	require.NoError(t, err)
	require.Len(t, wishes, 3)
	assert.Equal(t, "Default Wish", wishes[0].Name)
	assert.Equal(t, 1, countDefaults(wishes))

	wishes, err = uc.ListWishes("u1")
	require.NoError(t, err)
	assert.Len(t, wishes, 3)

	def, err := uc.DefaultWish("u1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultWishMessage, def.Content)
}

func TestAddUpdateSetDefault(t *testing.T) {
	uc := newTestUsecase(t)

	_, err := uc.AddWish("u1", &dto.CreateWishRequest{Name: " ", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidWish)

	added, err := uc.AddWish("u1", &dto.CreateWishRequest{Name: "Poem", Content: "Roses are red"})
	require.NoError(t, err)
	assert.False(t, added.IsDefault)

	wishes, err := uc.ListWishes("u1")
	require.NoError(t, err)
	assert.Len(t, wishes, 4)

	content := "Roses are red, candles are bright"
	updated, err := uc.UpdateWish("u1", added.ID, &dto.UpdateWishRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, content, updated.Content)

	_, err = uc.UpdateWish("u2", added.ID, &dto.UpdateWishRequest{Content: &content})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	def, err := uc.SetDefault("u1", added.ID)
	require.NoError(t, err)
	assert.True(t, def.IsDefault)

	wishes, err = uc.ListWishes("u1")
	require.NoError(t, err)
	assert.Equal(t, 1, countDefaults(wishes))
	assert.Equal(t, added.ID, wishes[0].ID)

	_, err = uc.SetDefault("u1", "missing")
	assert.ErrorIs(t, err, domain.ErrWishNotFound)
}

func TestDeleteRules(t *testing.T) {
	uc := newTestUsecase(t)

	wishes, err := uc.ListWishes("u1")
	require.NoError(t, err)

	assert.ErrorIs(t, uc.DeleteWish("u1", wishes[0].ID), domain.ErrCannotDeleteDefault)
	require.NoError(t, uc.DeleteWish("u1", wishes[1].ID))
	require.NoError(t, uc.DeleteWish("u1", wishes[2].ID))

	// Only the default is left
	remaining, err := uc.ListWishes("u1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.ErrorIs(t, uc.DeleteWish("u1", remaining[0].ID), domain.ErrCannotDeleteDefault)

	assert.ErrorIs(t, uc.DeleteWish("u1", "missing"), domain.ErrWishNotFound)
}

func TestDeliveries(t *testing.T) {
	uc := newTestUsecase(t)

	base := time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)
	require.NoError(t, uc.RecordDelivery(&domain.WishDelivery{UserID: "u1", BirthdayID: "b1", Channel: "push", Status: domain.DeliveryFailed, Error: "no tokens", WishDate: "2025-03-15", CreatedAt: base}))
	require.NoError(t, uc.RecordDelivery(&domain.WishDelivery{UserID: "u1", BirthdayID: "b1", Channel: "email", Status: domain.DeliverySent, WishDate: "2025-03-15", CreatedAt: base.Add(time.Second)}))
	require.NoError(t, uc.RecordDelivery(&domain.WishDelivery{UserID: "u1", BirthdayID: "b2", Channel: "email", Status: domain.DeliverySent, WishDate: "2025-03-15"}))

	deliveries, err := uc.ListDeliveries("u1", "b1", 10)
	require.NoError(t, err)
	require.Len(t, deliveries, 2)
	assert.Equal(t, "email", deliveries[0].Channel)
	assert.NotEmpty(t, deliveries[0].ID)

	deliveries, err = uc.ListDeliveries("u2", "b1", 10)
	require.NoError(t, err)
	assert.Empty(t, deliveries)
}
