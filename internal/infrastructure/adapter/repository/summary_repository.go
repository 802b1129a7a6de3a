package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/model"
)

// SummaryRepository implements persistence.SummaryRepository using GORM
type SummaryRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewSummaryRepository creates a new SummaryRepository instance
func NewSummaryRepository(db *gorm.DB, logger coreport.Logger) *SummaryRepository {
	return &SummaryRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func summaryToModel(s *entity.TransactionSummary) model.TransactionSummary {
	return model.TransactionSummary{
		MerchantID:         s.MerchantID,
		Sukses:             s.Sukses,
		Pending:            s.Pending,
		Gagal:              s.Gagal,
		Total:              s.Total,
		UangPending:        s.UangPending,
		UangSuksesHariIni:  s.UangSuksesHariIni,
		UangSuksesKemarin:  s.UangSuksesKemarin,
		UangSuksesBulanIni: s.UangSuksesBulanIni,
		UangSuksesTotal:    s.UangSuksesTotal,
		OmsetTotal:         s.OmsetTotal,
		DayAnchor:          s.DayAnchor,
		MonthAnchor:        s.MonthAnchor,
		UpdatedAt:          s.UpdatedAt,
	}
}

func summaryToEntity(m *model.TransactionSummary) *entity.TransactionSummary {
	return &entity.TransactionSummary{
		MerchantID:         m.MerchantID,
		Sukses:             m.Sukses,
		Pending:            m.Pending,
		Gagal:              m.Gagal,
		Total:              m.Total,
		UangPending:        m.UangPending,
		UangSuksesHariIni:  m.UangSuksesHariIni,
		UangSuksesKemarin:  m.UangSuksesKemarin,
		UangSuksesBulanIni: m.UangSuksesBulanIni,
		UangSuksesTotal:    m.UangSuksesTotal,
		OmsetTotal:         m.OmsetTotal,
		DayAnchor:          m.DayAnchor,
		MonthAnchor:        m.MonthAnchor,
		UpdatedAt:          m.UpdatedAt,
	}
}

// Get reads the summary without locking
func (r *SummaryRepository) Get(ctx context.Context, merchantID uint64) (*entity.TransactionSummary, error) {
	return r.load(ctx, r.db.WithContext(ctx), merchantID)
}

// GetForUpdate reads the summary with SELECT ... FOR UPDATE.
// The row stays locked until the surrounding transaction ends.
func (r *SummaryRepository) GetForUpdate(ctx context.Context, merchantID uint64) (*entity.TransactionSummary, error) {
	return r.load(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), merchantID)
}

func (r *SummaryRepository) load(ctx context.Context, db *gorm.DB, merchantID uint64) (*entity.TransactionSummary, error) {
	var row model.TransactionSummary
	if err := db.Where("merchant_id = ?", merchantID).First(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, errs.ErrMerchantNotFound
		}
		r.logger.Error("Failed to load summary", map[string]any{
			"merchant_id": merchantID,
			"error":       err.Error(),
		})
		return nil, r.errorClassifier.wrap("get summary", err)
	}
	return summaryToEntity(&row), nil
}

// Create inserts the initial summary of a merchant
func (r *SummaryRepository) Create(ctx context.Context, summary *entity.TransactionSummary) error {
	row := summaryToModel(summary)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return r.errorClassifier.wrap("create summary", err)
	}
	return nil
}

// Save writes every counter of the summary
func (r *SummaryRepository) Save(ctx context.Context, summary *entity.TransactionSummary) error {
	row := summaryToModel(summary)
	result := r.db.WithContext(ctx).Model(&model.TransactionSummary{}).
		Where("merchant_id = ?", summary.MerchantID).
		Select("*").
		Omit("merchant_id", clause.Associations).
		Updates(&row)
	if result.Error != nil {
		r.logger.Error("Failed to save summary", map[string]any{
			"merchant_id": summary.MerchantID,
			"error":       result.Error.Error(),
		})
		return r.errorClassifier.wrap("save summary", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrMerchantNotFound
	}
	return nil
}
