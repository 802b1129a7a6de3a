package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/model"
)

// MerchantRepository implements persistence.MerchantRepository using GORM
type MerchantRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewMerchantRepository creates a new MerchantRepository instance
func NewMerchantRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *MerchantRepository {
	return &MerchantRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func merchantToModel(m *entity.Merchant) model.Merchant {
	return model.Merchant{
		ID:                m.ID,
		Username:          m.Username,
		Email:             m.Email,
		APIKeyHash:        m.APIKeyHash,
		Verified:          m.Verified,
		DailyRequestLimit: m.DailyRequestLimit,
		NotifyEmail:       m.NotifyEmail,
		TelegramBotToken:  m.Telegram.BotToken,
		TelegramChatID:    m.Telegram.ChatID,
		StoreName:         m.Store.Name,
		StoreLogoURL:      m.Store.LogoURL,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func merchantToEntity(m *model.Merchant) *entity.Merchant {
	return &entity.Merchant{
		ID:                m.ID,
		Username:          m.Username,
		Email:             m.Email,
		APIKeyHash:        m.APIKeyHash,
		Verified:          m.Verified,
		DailyRequestLimit: m.DailyRequestLimit,
		NotifyEmail:       m.NotifyEmail,
		Telegram:          entity.TelegramSettings{BotToken: m.TelegramBotToken, ChatID: m.TelegramChatID},
		Store:             entity.StoreProfile{Name: m.StoreName, LogoURL: m.StoreLogoURL},
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// GetByID retrieves a merchant by ID
func (r *MerchantRepository) GetByID(ctx context.Context, id uint64) (*entity.Merchant, error) {
	return r.first(ctx, "get merchant", "id = ?", id)
}

// GetByAPIKeyHash retrieves the merchant owning an API key
func (r *MerchantRepository) GetByAPIKeyHash(ctx context.Context, hash string) (*entity.Merchant, error) {
	return r.first(ctx, "get merchant by api key", "api_key_hash = ?", hash)
}

// GetByUsername retrieves a merchant by username
func (r *MerchantRepository) GetByUsername(ctx context.Context, username string) (*entity.Merchant, error) {
	return r.first(ctx, "get merchant by username", "username = ?", username)
}

func (r *MerchantRepository) first(ctx context.Context, op string, query string, arg any) (*entity.Merchant, error) {
	var row model.Merchant
	if err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, errs.ErrMerchantNotFound
		}
		r.logger.Error("Failed to load merchant", map[string]any{
			"operation": op,
			"error":     err.Error(),
		})
		return nil, r.errorClassifier.wrap(op, err)
	}
	return merchantToEntity(&row), nil
}

// Create creates a new merchant and sets its ID
func (r *MerchantRepository) Create(ctx context.Context, merchant *entity.Merchant) error {
	row := merchantToModel(merchant)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = r.timeProvider.Now()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			return errs.ErrDuplicateMerchant
		}
		r.logger.Error("Failed to create merchant", map[string]any{
			"username": merchant.Username,
			"error":    err.Error(),
		})
		return r.errorClassifier.wrap("create merchant", err)
	}

	merchant.ID = row.ID
	merchant.CreatedAt = row.CreatedAt
	merchant.UpdatedAt = row.UpdatedAt
	r.logger.Info("Merchant created", map[string]any{
		"merchant_id": row.ID,
		"username":    row.Username,
	})
	return nil
}

// Update updates merchant settings
func (r *MerchantRepository) Update(ctx context.Context, merchant *entity.Merchant) error {
	row := merchantToModel(merchant)
	row.UpdatedAt = r.timeProvider.Now()

	result := r.db.WithContext(ctx).Model(&model.Merchant{}).
		Where("id = ?", merchant.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&row)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			return errs.ErrDuplicateMerchant
		}
		r.logger.Error("Failed to update merchant", map[string]any{
			"merchant_id": merchant.ID,
			"error":       result.Error.Error(),
		})
		return r.errorClassifier.wrap("update merchant", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrMerchantNotFound
	}

	merchant.UpdatedAt = row.UpdatedAt
	return nil
}

// ListIDs returns the IDs of every merchant ordered by ID
func (r *MerchantRepository) ListIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	if err := r.db.WithContext(ctx).Model(&model.Merchant{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, r.errorClassifier.wrap("list merchants", err)
	}
	return ids, nil
}
