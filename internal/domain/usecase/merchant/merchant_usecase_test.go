package merchant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
)

var testNow = time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store  *memStore
	quota  *mockQuota
	lookup *mockLookup
	logger *recordingLogger
	uc     *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  newMemStore(),
		quota:  &mockQuota{},
		lookup: &mockLookup{},
		logger: &recordingLogger{},
	}
	f.uc = NewMerchantUseCase(f.store, f.quota, f.lookup, fixedClock{now: testNow}, f.logger, Config{LookupTimeout: time.Second})
	t.Cleanup(func() {
		f.quota.AssertExpectations(t)
		f.lookup.AssertExpectations(t)
	})
	return f
}

func (f *fixture) register(t *testing.T, username string, verified bool) (*entity.Merchant, string) {
	t.Helper()
	m, key, err := f.uc.RegisterMerchant(context.Background(), username, username+"@example.com", verified)
	require.NoError(t, err)
	return m, key
}

func TestRegisterMerchant(t *testing.T) {
	ctx := context.Background()

	t.Run("creates merchant and summary", func(t *testing.T) {
		f := newFixture(t)
		m, key, err := f.uc.RegisterMerchant(ctx, " TokoBudi ", "budi@example.com", true)
		require.NoError(t, err)

		assert.NotZero(t, m.ID)
		assert.Equal(t, "tokobudi", m.Username)
		assert.Len(t, key, 48)
		assert.Equal(t, entity.HashAPIKey(key), m.APIKeyHash)
		require.Contains(t, f.store.summaries, m.ID)
		assert.Equal(t, m.ID, f.store.summaries[m.ID].MerchantID)
	})

	t.Run("rejects taken username", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "tokobudi", true)

		_, _, err := f.uc.RegisterMerchant(ctx, "tokobudi", "x@example.com", false)
		assert.ErrorIs(t, err, errs.ErrDuplicateMerchant)
	})

	t.Run("rejects bad username", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := f.uc.RegisterMerchant(ctx, "no spaces!", "", false)
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid key", func(t *testing.T) {
		f := newFixture(t)
		m, key := f.register(t, "tokobudi", true)
		f.quota.On("Consume", mock.Anything, m.ID, int64(0)).Return(int64(0), nil).Once()

		got, err := f.uc.Authenticate(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)
	})

	t.Run("missing and unknown keys", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Authenticate(ctx, "  ")
		assert.ErrorIs(t, err, errs.ErrMissingAPIKey)

		_, err = f.uc.Authenticate(ctx, "deadbeef")
		assert.ErrorIs(t, err, errs.ErrInvalidAPIKey)
	})

	t.Run("unverified merchant", func(t *testing.T) {
		f := newFixture(t)
		_, key := f.register(t, "tokobudi", false)

		_, err := f.uc.Authenticate(ctx, key)
		assert.ErrorIs(t, err, errs.ErrMerchantNotVerified)
	})

	t.Run("quota exhausted", func(t *testing.T) {
		f := newFixture(t)
		m, key := f.register(t, "tokobudi", true)
		f.quota.On("Consume", mock.Anything, m.ID, int64(0)).Return(int64(0), errs.ErrQuotaExhausted).Once()

		_, err := f.uc.Authenticate(ctx, key)
		assert.ErrorIs(t, err, errs.ErrQuotaExhausted)
	})

	t.Run("quota backend down lets the call through", func(t *testing.T) {
		f := newFixture(t)
		m, key := f.register(t, "tokobudi", true)
		f.quota.On("Consume", mock.Anything, m.ID, int64(0)).Return(int64(0), errors.New("redis down")).Once()

		got, err := f.uc.Authenticate(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)
		assert.Contains(t, f.logger.Warnings(), "Quota check failed, allowing request")
	})

	t.Run("rotated key replaces the old one", func(t *testing.T) {
		f := newFixture(t)
		m, oldKey := f.register(t, "tokobudi", true)

		newKey, err := f.uc.RotateAPIKey(ctx, m.ID)
		require.NoError(t, err)
		assert.NotEqual(t, oldKey, newKey)

		_, err = f.uc.Authenticate(ctx, oldKey)
		assert.ErrorIs(t, err, errs.ErrInvalidAPIKey)

		f.quota.On("Consume", mock.Anything, m.ID, int64(0)).Return(int64(0), nil).Once()
		_, err = f.uc.Authenticate(ctx, newKey)
		assert.NoError(t, err)
	})
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m, _ := f.register(t, "tokobudi", true)

	updated, err := f.uc.UpdateTelegram(ctx, m.ID, usecase.TelegramInput{
		BotToken: "123456789:ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		ChatID:   " 42 ",
	})
	require.NoError(t, err)
	assert.True(t, updated.Telegram.Enabled())
	assert.Equal(t, "42", updated.Telegram.ChatID)

	_, err = f.uc.UpdateTelegram(ctx, m.ID, usecase.TelegramInput{BotToken: "short", ChatID: "42"})
	var vErr *errs.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "token_bot", vErr.Field)

	updated, err = f.uc.UpdateStore(ctx, m.ID, usecase.StoreInput{Name: "Toko Budi"})
	require.NoError(t, err)
	assert.True(t, updated.Store.Enabled())

	_, err = f.uc.UpdateStore(ctx, m.ID, usecase.StoreInput{Name: "x", LogoURL: "not a url"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.uc.UpdateStore(ctx, 999, usecase.StoreInput{Name: "x"})
	assert.ErrorIs(t, err, errs.ErrMerchantNotFound)
}

func TestCreateDefaultMerchants(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.uc.CreateDefaultMerchants(ctx, "demo-key")
	require.NoError(t, err)
	assert.Equal(t, "demo-key", first.APIKey)
	assert.Equal(t, entity.HashAPIKey("demo-key"), first.Merchant.APIKeyHash)
	assert.True(t, first.Merchant.Verified)

	methods, err := f.uc.ListEnabledMethods(ctx, first.Merchant.ID)
	require.NoError(t, err)
	assert.Len(t, methods[entity.CategoryBank], 1)
	assert.Len(t, methods[entity.CategoryEwallet], 1)
	assert.Len(t, methods[entity.CategoryQRIS], 1)

	again, err := f.uc.CreateDefaultMerchants(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, again.APIKey)
	assert.Equal(t, first.Merchant.ID, again.Merchant.ID)
}

func TestAccountLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("bank account", func(t *testing.T) {
		f := newFixture(t)
		holder := &gateway.AccountHolder{Provider: "bca", AccountNumber: "123", AccountName: "BUDI"}
		f.lookup.On("CheckBankAccount", mock.Anything, "bca", "123").Return(holder, nil).Once()

		got, err := f.uc.CheckBankAccount(ctx, " bca ", "123")
		require.NoError(t, err)
		assert.Equal(t, "BUDI", got.AccountName)
	})

	t.Run("missing input never reaches the provider", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.CheckBankAccount(ctx, "", "123")
		assert.ErrorIs(t, err, errs.ErrValidation)
		_, err = f.uc.CheckEwalletAccount(ctx, "dana", "")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("provider failure is an upstream error", func(t *testing.T) {
		f := newFixture(t)
		f.lookup.On("CheckEwalletAccount", mock.Anything, "dana", "0812").Return(nil, errors.New("timeout")).Once()

		_, err := f.uc.CheckEwalletAccount(ctx, "DANA", "0812")
		assert.ErrorIs(t, err, errs.ErrUpstream)
		assert.Contains(t, f.logger.Warnings(), "Account lookup failed")
	})

	t.Run("bank list", func(t *testing.T) {
		f := newFixture(t)
		f.lookup.On("ListBanks", mock.Anything).Return([]gateway.Bank{{Code: "bca", Name: "BCA"}}, nil).Once()

		banks, err := f.uc.ListBanks(ctx)
		require.NoError(t, err)
		assert.Len(t, banks, 1)
	})
}
