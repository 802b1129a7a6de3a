package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
)

func TestMerchantRepository_CreateAndLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := f.merchants()

	require.NotZero(t, f.merchant.ID)

	byName, err := repo.GetByUsername(ctx, "tokobudi")
	require.NoError(t, err)
	assert.Equal(t, f.merchant.ID, byName.ID)
	assert.True(t, byName.Verified)

	byHash, err := repo.GetByAPIKeyHash(ctx, f.merchant.APIKeyHash)
	require.NoError(t, err)
	assert.Equal(t, "tokobudi@example.com", byHash.Email)

	_, err = repo.GetByAPIKeyHash(ctx, entity.HashAPIKey("nope"))
	assert.ErrorIs(t, err, errs.ErrMerchantNotFound)

	_, err = repo.GetByID(ctx, f.merchant.ID+100)
	assert.ErrorIs(t, err, errs.ErrMerchantNotFound)
}

func TestMerchantRepository_DuplicateUsername(t *testing.T) {
	f := newFixture(t)

	dup, _, err := entity.NewMerchant("tokobudi", "other@example.com", f.clock)
	require.NoError(t, err)

	err = f.merchants().Create(context.Background(), dup)
	assert.ErrorIs(t, err, errs.ErrDuplicateMerchant)
}

func TestMerchantRepository_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := f.merchants()

	m, err := repo.GetByID(ctx, f.merchant.ID)
	require.NoError(t, err)

	m.Telegram = entity.TelegramSettings{BotToken: "123:abc", ChatID: "42"}
	m.Store = entity.StoreProfile{Name: "Toko Budi", LogoURL: "https://cdn.example.com/logo.png"}
	m.NotifyEmail = false
	m.DailyRequestLimit = 0
	require.NoError(t, repo.Update(ctx, m))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Telegram, got.Telegram)
	assert.Equal(t, m.Store, got.Store)
	assert.False(t, got.NotifyEmail)
	assert.Zero(t, got.DailyRequestLimit)

	missing := *m
	missing.ID = m.ID + 100
	assert.ErrorIs(t, repo.Update(ctx, &missing), errs.ErrMerchantNotFound)
}

func TestMerchantRepository_ListIDs(t *testing.T) {
	f := newFixture(t)
	second := f.createMerchant(t, "warungsari")

	ids, err := f.merchants().ListIDs(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{f.merchant.ID, second.ID}, ids)
}
