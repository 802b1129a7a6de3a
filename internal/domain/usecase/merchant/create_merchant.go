package merchant

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
)

// DemoMerchant is the username seeded for local development
const DemoMerchant = "demo"

// SeedResult reports what CreateDefaultMerchants did
type SeedResult struct {
	Merchant *entity.Merchant
	APIKey   string // empty when the merchant already existed
}

// CreateDefaultMerchants creates a verified demo merchant with one method
// per category. A non-empty apiKey replaces the generated key so local
// clients can use a fixed one. Running it again leaves an existing demo
// merchant untouched.
func (u *UseCase) CreateDefaultMerchants(ctx context.Context, apiKey string) (*SeedResult, error) {
	existing, err := u.uow.GetMerchantRepository(ctx).GetByUsername(ctx, DemoMerchant)
	if err == nil {
		u.logger.Info("Default merchant already exists", map[string]any{
			"merchant_id": existing.ID,
			"username":    existing.Username,
		})
		return &SeedResult{Merchant: existing}, nil
	}
	if !errors.Is(err, errs.ErrMerchantNotFound) {
		return nil, err
	}

	merchant, generated, err := entity.NewMerchant(DemoMerchant, "demo@example.com", u.timeProvider)
	if err != nil {
		return nil, err
	}
	if apiKey = strings.TrimSpace(apiKey); apiKey != "" {
		merchant.APIKeyHash = entity.HashAPIKey(apiKey)
	} else {
		apiKey = generated
	}
	merchant.Verified = true
	merchant.Store = entity.StoreProfile{Name: "Toko Demo"}

	now := u.timeProvider.Now()
	methods := []*entity.PaymentMethod{
		{
			ID:            "bca",
			Name:          "Bank BCA",
			Category:      entity.CategoryBank,
			AccountNumber: "1234567890",
			AccountName:   "Toko Demo",
			Fee:           decimal.Zero,
			FeeType:       entity.FeeFixed,
			MinAmount:     10000,
			Enabled:       true,
		},
		{
			ID:            "dana",
			Name:          "DANA",
			Category:      entity.CategoryEwallet,
			AccountNumber: "081234567890",
			AccountName:   "Toko Demo",
			Fee:           decimal.NewFromInt(1000),
			FeeType:       entity.FeeFixed,
			Enabled:       true,
		},
		{
			ID:         "qris",
			Name:       "QRIS",
			Category:   entity.CategoryQRIS,
			QRISName:   "TOKO DEMO",
			QRISString: "00020101021126570011ID.DANA.WWW011893600915300000000102090000000010303UMI51440014ID.CO.QRIS.WWW0215ID10200000000010303UMI5204481453033605802ID5909TOKO DEMO6013Kota Jakarta61051234562070703A0163044D2B",
			Fee:        decimal.RequireFromString("0.7"),
			FeeType:    entity.FeePersen,
			Enabled:    true,
		},
	}

	err = u.uow.Do(ctx, func(ctx context.Context) error {
		if err := u.create(ctx, merchant); err != nil {
			return err
		}
		repo := u.uow.GetPaymentMethodRepository(ctx)
		for _, m := range methods {
			m.MerchantID = merchant.ID
			m.CreatedAt = now
			m.UpdatedAt = now
			if err := repo.Create(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		u.logger.Error("Failed to create default merchant", map[string]any{"error": err.Error()})
		return nil, err
	}

	u.logger.Info("Default merchant created", map[string]any{
		"merchant_id": merchant.ID,
		"methods":     len(methods),
	})
	return &SeedResult{Merchant: merchant, APIKey: apiKey}, nil
}
