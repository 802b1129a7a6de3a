package repository

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/model"
)

// PaymentMethodRepository implements persistence.PaymentMethodRepository using GORM
type PaymentMethodRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewPaymentMethodRepository creates a new PaymentMethodRepository instance
func NewPaymentMethodRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *PaymentMethodRepository {
	return &PaymentMethodRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func methodToModel(m *entity.PaymentMethod) (model.PaymentMethod, error) {
	templates := m.NotificationTemplates
	if templates == nil {
		templates = []string{}
	}
	raw, err := json.Marshal(templates)
	if err != nil {
		return model.PaymentMethod{}, err
	}

	return model.PaymentMethod{
		MerchantID:            m.MerchantID,
		MethodID:              m.ID,
		Name:                  m.Name,
		Category:              string(m.Category),
		AccountNumber:         m.AccountNumber,
		AccountName:           m.AccountName,
		QRISName:              m.QRISName,
		QRISURL:               m.QRISURL,
		QRISString:            m.QRISString,
		IconURL:               m.IconURL,
		MinAmount:             m.MinAmount,
		MaxAmount:             m.MaxAmount,
		Fee:                   m.Fee,
		FeeType:               string(m.FeeType),
		NotificationTemplates: datatypes.JSON(raw),
		Enabled:               m.Enabled,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}, nil
}

func methodToEntity(m *model.PaymentMethod) *entity.PaymentMethod {
	var templates []string
	if len(m.NotificationTemplates) > 0 {
		// a corrupt column only loses the templates, never the method
		_ = json.Unmarshal(m.NotificationTemplates, &templates)
	}

	return &entity.PaymentMethod{
		MerchantID:            m.MerchantID,
		ID:                    m.MethodID,
		Name:                  m.Name,
		Category:              entity.PaymentCategory(m.Category),
		AccountNumber:         m.AccountNumber,
		AccountName:           m.AccountName,
		QRISName:              m.QRISName,
		QRISURL:               m.QRISURL,
		QRISString:            m.QRISString,
		IconURL:               m.IconURL,
		MinAmount:             m.MinAmount,
		MaxAmount:             m.MaxAmount,
		Fee:                   m.Fee,
		FeeType:               entity.FeeType(m.FeeType),
		NotificationTemplates: templates,
		Enabled:               m.Enabled,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// List returns all methods of a merchant ordered by category and id
func (r *PaymentMethodRepository) List(ctx context.Context, merchantID uint64) ([]*entity.PaymentMethod, error) {
	var rows []model.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("category").Order("method_id").
		Find(&rows).Error
	if err != nil {
		return nil, r.errorClassifier.wrap("list payment methods", err)
	}

	methods := make([]*entity.PaymentMethod, 0, len(rows))
	for i := range rows {
		methods = append(methods, methodToEntity(&rows[i]))
	}
	return methods, nil
}

// Get returns a single method
func (r *PaymentMethodRepository) Get(ctx context.Context, merchantID uint64, methodID string) (*entity.PaymentMethod, error) {
	var row model.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND method_id = ?", merchantID, methodID).
		First(&row).Error
	if err != nil {
		if isNotFound(err) {
			return nil, errs.ErrMethodNotFound
		}
		return nil, r.errorClassifier.wrap("get payment method", err)
	}
	return methodToEntity(&row), nil
}

// Create stores a new method
func (r *PaymentMethodRepository) Create(ctx context.Context, method *entity.PaymentMethod) error {
	row, err := methodToModel(method)
	if err != nil {
		return errs.NewValidationError("notificationTemplates", "cannot be encoded", nil)
	}
	now := r.timeProvider.Now()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			return errs.ErrDuplicateMethod
		}
		r.logger.Error("Failed to create payment method", map[string]any{
			"merchant_id": method.MerchantID,
			"method_id":   method.ID,
			"error":       err.Error(),
		})
		return r.errorClassifier.wrap("create payment method", err)
	}

	method.CreatedAt = row.CreatedAt
	method.UpdatedAt = row.UpdatedAt
	return nil
}

// Update replaces a method
func (r *PaymentMethodRepository) Update(ctx context.Context, method *entity.PaymentMethod) error {
	row, err := methodToModel(method)
	if err != nil {
		return errs.NewValidationError("notificationTemplates", "cannot be encoded", nil)
	}
	row.UpdatedAt = r.timeProvider.Now()

	result := r.db.WithContext(ctx).Model(&model.PaymentMethod{}).
		Where("merchant_id = ? AND method_id = ?", method.MerchantID, method.ID).
		Select("*").
		Omit("merchant_id", "method_id", "created_at").
		Updates(&row)
	if result.Error != nil {
		return r.errorClassifier.wrap("update payment method", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrMethodNotFound
	}

	method.UpdatedAt = row.UpdatedAt
	return nil
}

// Delete removes a method
func (r *PaymentMethodRepository) Delete(ctx context.Context, merchantID uint64, methodID string) error {
	result := r.db.WithContext(ctx).
		Where("merchant_id = ? AND method_id = ?", merchantID, methodID).
		Delete(&model.PaymentMethod{})
	if result.Error != nil {
		return r.errorClassifier.wrap("delete payment method", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrMethodNotFound
	}

	r.logger.Info("Payment method deleted", map[string]any{
		"merchant_id": merchantID,
		"method_id":   methodID,
	})
	return nil
}
