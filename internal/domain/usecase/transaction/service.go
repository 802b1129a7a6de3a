package transaction

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
)

// Listing bounds
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// DefaultUpstreamTimeout bounds QR generation and upload
const DefaultUpstreamTimeout = 15 * time.Second

// ServiceConfig holds the settings of the payment service
type ServiceConfig struct {
	PublicBaseURL   string // prefix of payment links, e.g. https://pay.example.com
	UpstreamTimeout time.Duration
	CreateTimeout   time.Duration // bounds a queued create, zero waits for the caller
}

// Service implements usecase.PaymentUseCase on top of the ledger and the matcher
type Service struct {
	uow             persistence.UnitOfWork
	ledger          *Ledger
	matcher         *NotificationMatcher
	manager         *TransactionManager
	validator       *RequestValidator
	links           gateway.LinkCodec
	qr              gateway.QRGenerator
	uploader        gateway.ImageUploader
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	publicBaseURL   string
	upstreamTimeout time.Duration
	createTimeout   time.Duration
}

var _ usecase.PaymentUseCase = (*Service)(nil)

// NewPaymentService creates a new payment service
func NewPaymentService(
	uow persistence.UnitOfWork,
	ledger *Ledger,
	matcher *NotificationMatcher,
	manager *TransactionManager,
	links gateway.LinkCodec,
	qr gateway.QRGenerator,
	uploader gateway.ImageUploader,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg ServiceConfig,
) *Service {
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = DefaultUpstreamTimeout
	}
	return &Service{
		uow:             uow,
		ledger:          ledger,
		matcher:         matcher,
		manager:         manager,
		validator:       NewRequestValidator(),
		links:           links,
		qr:              qr,
		uploader:        uploader,
		timeProvider:    timeProvider,
		logger:          logger.Named("payment"),
		publicBaseURL:   strings.TrimRight(cfg.PublicBaseURL, "/"),
		upstreamTimeout: cfg.UpstreamTimeout,
		createTimeout:   cfg.CreateTimeout,
	}
}

// HandleNotification settles the transaction matching a notification text
func (s *Service) HandleNotification(
	ctx context.Context,
	merchant *entity.Merchant,
	req usecase.NotificationRequest,
) (*usecase.NotificationResult, error) {
	if err := s.validator.ValidateNotification(req); err != nil {
		return nil, err
	}
	return s.matcher.Match(ctx, merchant, req.App, req.Text)
}

// GetStatus returns the status of a transaction owned by the merchant
func (s *Service) GetStatus(ctx context.Context, merchant *entity.Merchant, transactionID string) (*entity.PaymentStatusResponse, error) {
	tx, err := s.uow.GetTransactionRepository(ctx).GetForMerchant(ctx, merchant.ID, strings.TrimSpace(transactionID))
	if err != nil {
		return nil, err
	}
	resp := entity.TransactionToStatusResponse(tx)
	return &resp, nil
}

// GetStatusByToken returns the status behind a payment link token
func (s *Service) GetStatusByToken(ctx context.Context, token string) (*entity.PaymentStatusResponse, error) {
	tx, err := s.transactionForToken(ctx, token)
	if err != nil {
		return nil, err
	}
	resp := entity.TransactionToStatusResponse(tx)
	return &resp, nil
}

// GetPaymentPage returns what the public payment page shows
func (s *Service) GetPaymentPage(ctx context.Context, token string) (*entity.PaymentPageResponse, error) {
	tx, err := s.transactionForToken(ctx, token)
	if err != nil {
		return nil, err
	}

	method, err := s.uow.GetPaymentMethodRepository(ctx).Get(ctx, tx.MerchantID, tx.PaymentMethod)
	if err != nil {
		if !errors.Is(err, errs.ErrMethodNotFound) {
			return nil, err
		}
		method = nil
	}

	merchant, err := s.uow.GetMerchantRepository(ctx).GetByID(ctx, tx.MerchantID)
	if err != nil {
		return nil, err
	}

	page := entity.TransactionToPaymentPage(tx, method, merchant)
	page.Expired = tx.IsPending() && tx.IsExpired(s.timeProvider.Now())
	return &page, nil
}

func (s *Service) transactionForToken(ctx context.Context, token string) (*entity.Transaction, error) {
	transactionID, ok := s.links.Decode(strings.TrimSpace(token))
	if !ok {
		return nil, errs.ErrInvalidPaymentLink
	}
	tx, err := s.uow.GetTransactionRepository(ctx).GetByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, errs.ErrTransactionNotFound) {
			return nil, errs.ErrInvalidPaymentLink
		}
		return nil, err
	}
	return tx, nil
}

// UpdateStatus is the manual status edit of a merchant
func (s *Service) UpdateStatus(
	ctx context.Context,
	merchantID uint64,
	transactionID string,
	status entity.TransactionStatus,
) (*entity.Transaction, error) {
	target, err := s.validator.ValidateManualStatus(transactionID, string(status))
	if err != nil {
		return nil, err
	}
	return s.ledger.UpdateStatus(ctx, merchantID, strings.TrimSpace(transactionID), target)
}

// ListTransactions pages through the merchant history
func (s *Service) ListTransactions(
	ctx context.Context,
	merchantID uint64,
	filter persistence.TransactionFilter,
) ([]*entity.Transaction, int64, error) {
	if filter.Status != "" && !entity.IsValidStatus(filter.Status) {
		return nil, 0, errs.NewValidationError("status", "is unknown", errs.ErrInvalidStatus)
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.uow.GetTransactionRepository(ctx).ListByMerchant(ctx, merchantID, filter)
}

// GetSummary returns the merchant counters with the day and month buckets
// rolled forward to now. The stored row is left to the reconciler.
func (s *Service) GetSummary(ctx context.Context, merchantID uint64) (*entity.TransactionSummary, error) {
	summary, err := s.uow.GetSummaryRepository(ctx).Get(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	summary.Rollover(s.timeProvider.Now())
	return summary, nil
}

// Shutdown drains the create queues
func (s *Service) Shutdown() {
	s.manager.Shutdown()
}

// HTTPStatus maps a usecase error to the response status
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, errs.ErrMissingAPIKey), errors.Is(err, errs.ErrInvalidAPIKey):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrMerchantNotVerified):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrQuotaExhausted):
		return http.StatusTooManyRequests
	case errors.Is(err, errs.ErrAlreadyFinalized):
		return http.StatusConflict
	case errors.Is(err, errs.ErrInvalidPaymentLink):
		return http.StatusBadRequest
	case errs.IsValidationError(err), errs.IsMethodError(err):
		return http.StatusBadRequest
	case errs.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrResourceLocked):
		return http.StatusServiceUnavailable
	case errs.IsUpstreamError(err):
		return http.StatusBadGateway
	case errors.Is(err, errs.ErrDatabaseConnection):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to API callers. Server side
// failures never expose their cause.
func PublicMessage(err error) string {
	var upstream *errs.UpstreamError
	switch {
	case errors.As(err, &upstream):
		return upstream.PublicMessage()
	case errors.Is(err, errs.ErrAllocationFailure):
		return errs.ErrAllocationFailure.Error()
	case errors.Is(err, errs.ErrDatabaseConnection), errors.Is(err, errs.ErrResourceLocked):
		return "service temporarily unavailable, please try again"
	}
	if HTTPStatus(err) >= http.StatusInternalServerError {
		return errs.ErrInternalServer.Error()
	}
	return err.Error()
}
