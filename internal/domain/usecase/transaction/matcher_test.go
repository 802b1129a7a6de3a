package transaction

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
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    int64
		wantErr bool
	}{
		{"rupiah with dots", "Pembayaran masuk sebesar Rp 52.500 dari Budi.", 52500, false},
		{"commas", "You received IDR 1,250,301 from DANA", 1250301, false},
		{"plain digits", "Transfer 20301 berhasil", 20301, false},
		{"first run wins", "Rp 52.500 saldo 1.000.000", 52500, false},
		{"trailing separator", "Total: 15.000.", 15000, false},
		{"no digits", "Pembayaran diterima", 0, true},
		{"empty", "", 0, true},
		{"overflow", "99999999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractAmount(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrNoAmountFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newMatcherFixture(t *testing.T) (*ledgerFixture, *NotificationMatcher, *mockNotifier) {
	t.Helper()
	f := newLedgerFixture(t, &seqRandom{values: []int64{41, 99}}, DisambiguatorConfig{})
	notifier := new(mockNotifier)
	dispatcher := NewNotificationDispatcher(f.clock, f.logger, coreport.Second, notifier)
	return f, NewNotificationMatcher(f.store, f.ledger, dispatcher, f.logger), notifier
}

func TestNotificationMatcher_Match(t *testing.T) {
	ctx := context.Background()

	t.Run("settles the matching transaction and notifies", func(t *testing.T) {
		f, matcher, notifier := newMatcherFixture(t)
		tx, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.NoError(t, err)
		notifier.On("NotifyPaymentReceived", mock.Anything, mock.Anything, mock.MatchedBy(func(paid *entity.Transaction) bool {
			return paid.TransactionID == tx.TransactionID && paid.Status == entity.StatusSukses
		})).Return(nil).Once()

		result, err := matcher.Match(ctx, f.merchant, "macrodroid", "Pembayaran masuk sebesar Rp 52.542 dari Budi.")
		require.NoError(t, err)
		assert.True(t, result.Matched)
		assert.True(t, result.Updated)
		assert.False(t, result.AlreadyFinalized)
		assert.Equal(t, int64(52542), result.Amount)
		assert.Equal(t, entity.StatusSukses, f.store.tx(tx.TransactionID).Status)
		notifier.AssertExpectations(t)
	})

	t.Run("no amount is not an error", func(t *testing.T) {
		f, matcher, notifier := newMatcherFixture(t)

		result, err := matcher.Match(ctx, f.merchant, "sms", "Selamat pagi")
		require.NoError(t, err)
		assert.False(t, result.Matched)
		assert.False(t, result.AmountFound)
		assert.Zero(t, result.Amount)
		notifier.AssertNotCalled(t, "NotifyPaymentReceived", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no pending transaction with the amount", func(t *testing.T) {
		f, matcher, _ := newMatcherFixture(t)
		_, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.NoError(t, err)

		result, err := matcher.Match(ctx, f.merchant, "sms", "Rp 52.543 masuk")
		require.NoError(t, err)
		assert.False(t, result.Matched)
		assert.True(t, result.AmountFound)
		assert.Equal(t, int64(52543), result.Amount)
		assert.Equal(t, int64(1), f.store.summary(f.merchant.ID).Pending)
	})

	t.Run("zero amount is found but unmatched", func(t *testing.T) {
		f, matcher, notifier := newMatcherFixture(t)

		result, err := matcher.Match(ctx, f.merchant, "sms", "Saldo masuk Rp 0")
		require.NoError(t, err)
		assert.True(t, result.AmountFound)
		assert.Zero(t, result.Amount)
		assert.False(t, result.Matched)
		notifier.AssertNotCalled(t, "NotifyPaymentReceived", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("repeated notification is idempotent", func(t *testing.T) {
		f, matcher, notifier := newMatcherFixture(t)
		_, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.NoError(t, err)
		notifier.On("NotifyPaymentReceived", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		_, err = matcher.Match(ctx, f.merchant, "sms", "Rp 52.542")
		require.NoError(t, err)

		// the transaction is no longer pending, so nothing matches
		result, err := matcher.Match(ctx, f.merchant, "sms", "Rp 52.542")
		require.NoError(t, err)
		assert.False(t, result.Matched)
		assert.Equal(t, int64(1), f.store.summary(f.merchant.ID).Sukses)
		notifier.AssertNumberOfCalls(t, "NotifyPaymentReceived", 1)
	})

	t.Run("notifier failure is swallowed", func(t *testing.T) {
		f, matcher, notifier := newMatcherFixture(t)
		_, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.NoError(t, err)
		notifier.On("NotifyPaymentReceived", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("telegram unreachable")).Once()

		result, err := matcher.Match(ctx, f.merchant, "sms", "Rp 52.542")
		require.NoError(t, err)
		assert.True(t, result.Updated)
		assert.Contains(t, f.logger.Warnings(), "Payment notification failed")
	})

	t.Run("several candidates pick the earliest and warn", func(t *testing.T) {
		f, matcher, notifier := newMatcherFixture(t)
		notifier.On("NotifyPaymentReceived", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.store.uniqueIndex = false

		base := f.clock.Now()
		for i, id := range []string{"TRX-late", "TRX-early"} {
			tx := &entity.Transaction{
				MerchantID:    f.merchant.ID,
				TransactionID: id,
				BaseAmount:    50000,
				FeeAmount:     2500,
				UniqueNumber:  42,
				Amount:        52542,
				Status:        entity.StatusPending,
				PaymentMethod: "bca",
				Category:      entity.CategoryBank,
				CreatedAt:     base.Add(-time.Duration(i) * time.Minute),
				ExpiredAt:     base.Add(10 * time.Minute),
			}
			require.NoError(t, f.store.GetTransactionRepository(ctx).Create(ctx, tx))
		}

		result, err := matcher.Match(ctx, f.merchant, "sms", "Rp 52.542")
		require.NoError(t, err)
		assert.Equal(t, "TRX-early", result.Transaction.TransactionID)
		assert.Equal(t, entity.StatusPending, f.store.tx("TRX-late").Status)
		assert.Contains(t, f.logger.Warnings(), "Several pending transactions share a notification amount")
	})

	t.Run("expired but still pending transaction is settled before the sweep", func(t *testing.T) {
		f, matcher, notifier := newMatcherFixture(t)
		notifier.On("NotifyPaymentReceived", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		reaper := NewExpiryReaper(f.store, f.ledger, f.clock, f.logger, ReaperConfig{Owner: "test"})

		tx, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.NoError(t, err)

		f.clock.Advance(entity.DefaultTransactionTTL + 59*time.Second)
		result, err := matcher.Match(ctx, f.merchant, "sms", "Rp 52.542")
		require.NoError(t, err)
		assert.True(t, result.Updated)

		f.clock.Advance(time.Second)
		expired, err := reaper.Sweep(ctx)
		require.NoError(t, err)
		assert.Zero(t, expired)
		assert.Equal(t, entity.StatusSukses, f.store.tx(tx.TransactionID).Status)

		sum := f.store.summary(f.merchant.ID)
		assert.Equal(t, int64(1), sum.Sukses)
		assert.Equal(t, int64(0), sum.Gagal)
	})
}
