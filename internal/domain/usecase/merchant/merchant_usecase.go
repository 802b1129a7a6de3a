package merchant

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
)

// DefaultLookupTimeout bounds account lookup calls
const DefaultLookupTimeout = 10 * time.Second

// Config holds merchant usecase settings
type Config struct {
	LookupTimeout time.Duration
	DailyLimit    int64 // request quota given to new merchants, 0 is unlimited
}

// UseCase handles merchant accounts, payment methods and settings
type UseCase struct {
	uow           persistence.UnitOfWork
	quota         gateway.QuotaLimiter
	lookup        gateway.AccountLookup
	timeProvider  coreport.TimeProvider
	logger        coreport.Logger
	validate      *validator.Validate
	lookupTimeout time.Duration
	dailyLimit    int64
}

var _ usecase.MerchantUseCase = (*UseCase)(nil)

// NewMerchantUseCase creates a new merchant usecase
func NewMerchantUseCase(
	uow persistence.UnitOfWork,
	quota gateway.QuotaLimiter,
	lookup gateway.AccountLookup,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *UseCase {
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = DefaultLookupTimeout
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &UseCase{
		uow:           uow,
		quota:         quota,
		lookup:        lookup,
		timeProvider:  timeProvider,
		logger:        logger.Named("merchant"),
		validate:      validate,
		lookupTimeout: cfg.LookupTimeout,
		dailyLimit:    cfg.DailyLimit,
	}
}

// Authenticate resolves an API key to a verified merchant and counts the call
// against its daily quota. Quota backend failures let the call through.
func (u *UseCase) Authenticate(ctx context.Context, apiKey string) (*entity.Merchant, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errs.ErrMissingAPIKey
	}

	merchant, err := u.uow.GetMerchantRepository(ctx).GetByAPIKeyHash(ctx, entity.HashAPIKey(apiKey))
	if err != nil {
		if errors.Is(err, errs.ErrMerchantNotFound) {
			return nil, errs.ErrInvalidAPIKey
		}
		return nil, err
	}

	if err := merchant.CanUseAPI(); err != nil {
		return nil, err
	}

	if u.quota != nil {
		if _, err := u.quota.Consume(ctx, merchant.ID, merchant.DailyRequestLimit); err != nil {
			if errors.Is(err, errs.ErrQuotaExhausted) {
				return nil, err
			}
			u.logger.Warn("Quota check failed, allowing request", map[string]any{
				"merchant_id": merchant.ID,
				"error":       err.Error(),
			})
		}
	}

	return merchant, nil
}

// RegisterMerchant creates a merchant with an empty summary and returns its plain API key
func (u *UseCase) RegisterMerchant(ctx context.Context, username, email string, verified bool) (*entity.Merchant, string, error) {
	merchant, apiKey, err := entity.NewMerchant(username, email, u.timeProvider)
	if err != nil {
		return nil, "", err
	}
	merchant.Verified = verified
	merchant.DailyRequestLimit = u.dailyLimit

	if err := u.create(ctx, merchant); err != nil {
		return nil, "", err
	}

	u.logger.Info("Merchant registered", map[string]any{
		"merchant_id": merchant.ID,
		"username":    merchant.Username,
		"verified":    verified,
	})
	return merchant, apiKey, nil
}

func (u *UseCase) create(ctx context.Context, merchant *entity.Merchant) error {
	return u.uow.Do(ctx, func(ctx context.Context) error {
		merchants := u.uow.GetMerchantRepository(ctx)

		if _, err := merchants.GetByUsername(ctx, merchant.Username); err == nil {
			return errs.ErrDuplicateMerchant
		} else if !errors.Is(err, errs.ErrMerchantNotFound) {
			return err
		}

		if err := merchants.Create(ctx, merchant); err != nil {
			return err
		}
		summary := entity.NewTransactionSummary(merchant.ID, u.timeProvider.Now())
		return u.uow.GetSummaryRepository(ctx).Create(ctx, summary)
	})
}

// RotateAPIKey issues a new API key; the old one stops working immediately
func (u *UseCase) RotateAPIKey(ctx context.Context, merchantID uint64) (string, error) {
	var apiKey string
	err := u.uow.Do(ctx, func(ctx context.Context) error {
		merchants := u.uow.GetMerchantRepository(ctx)
		merchant, err := merchants.GetByID(ctx, merchantID)
		if err != nil {
			return err
		}
		apiKey, err = merchant.RotateAPIKey(u.timeProvider)
		if err != nil {
			return err
		}
		return merchants.Update(ctx, merchant)
	})
	if err != nil {
		return "", err
	}

	u.logger.Info("API key rotated", map[string]any{"merchant_id": merchantID})
	return apiKey, nil
}

// GetMerchant returns a merchant by ID
func (u *UseCase) GetMerchant(ctx context.Context, merchantID uint64) (*entity.Merchant, error) {
	return u.uow.GetMerchantRepository(ctx).GetByID(ctx, merchantID)
}

// UpdateTelegram stores the Telegram notifier settings. Empty values disable it.
func (u *UseCase) UpdateTelegram(ctx context.Context, merchantID uint64, input usecase.TelegramInput) (*entity.Merchant, error) {
	if err := u.validateInput(input); err != nil {
		return nil, err
	}
	return u.updateMerchant(ctx, merchantID, func(m *entity.Merchant) {
		m.Telegram = entity.TelegramSettings{
			BotToken: strings.TrimSpace(input.BotToken),
			ChatID:   strings.TrimSpace(input.ChatID),
		}
	})
}

// UpdateStore stores the public store profile. An empty name closes the store.
func (u *UseCase) UpdateStore(ctx context.Context, merchantID uint64, input usecase.StoreInput) (*entity.Merchant, error) {
	if err := u.validateInput(input); err != nil {
		return nil, err
	}
	return u.updateMerchant(ctx, merchantID, func(m *entity.Merchant) {
		m.Store = entity.StoreProfile{
			Name:    strings.TrimSpace(input.Name),
			LogoURL: strings.TrimSpace(input.LogoURL),
		}
	})
}

func (u *UseCase) updateMerchant(ctx context.Context, merchantID uint64, apply func(*entity.Merchant)) (*entity.Merchant, error) {
	var updated *entity.Merchant
	err := u.uow.Do(ctx, func(ctx context.Context) error {
		merchants := u.uow.GetMerchantRepository(ctx)
		merchant, err := merchants.GetByID(ctx, merchantID)
		if err != nil {
			return err
		}
		apply(merchant)
		merchant.UpdatedAt = u.timeProvider.Now()
		if err := merchants.Update(ctx, merchant); err != nil {
			return err
		}
		updated = merchant
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// validateInput runs the struct tags and reports the first failing field
func (u *UseCase) validateInput(input any) error {
	err := u.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errs.NewValidationError(fe.Field(), describeTag(fe), nil)
	}
	return errs.NewValidationError("", err.Error(), nil)
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "max":
		return "is too long"
	case "min":
		return "is too short"
	case "url":
		return "must be a valid URL"
	case "numeric":
		return "must be a number"
	case "gte":
		return "cannot be negative"
	default:
		return "is invalid"
	}
}
