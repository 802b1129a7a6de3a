package transaction

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
)

// CreatePayment creates a pending transaction for an authenticated merchant.
// The steps are:
// 1. Validate the request and resolve an available method of the category
// 2. Queue the create behind earlier creates of the same merchant
// 3. Let the ledger allocate the amount and write the transaction
func (s *Service) CreatePayment(
	ctx context.Context,
	merchant *entity.Merchant,
	req usecase.CreatePaymentRequest,
) (*entity.CreatedPaymentResponse, error) {
	if err := merchant.CanUseAPI(); err != nil {
		return nil, err
	}
	return s.create(ctx, merchant, req)
}

// CreateStorePayment creates a pending transaction from the public store of a
// merchant. The category follows the chosen method.
func (s *Service) CreateStorePayment(
	ctx context.Context,
	username string,
	req usecase.CreatePaymentRequest,
) (*entity.CreatedPaymentResponse, error) {
	merchant, err := s.uow.GetMerchantRepository(ctx).GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, errs.ErrMerchantNotFound) {
			return nil, errs.ErrStoreNotFound
		}
		return nil, err
	}
	if !merchant.Store.Enabled() {
		return nil, errs.ErrStoreNotFound
	}
	if err := merchant.CanUseAPI(); err != nil {
		return nil, errs.ErrStoreNotFound
	}

	method, err := s.uow.GetPaymentMethodRepository(ctx).Get(ctx, merchant.ID, entity.SanitizeMethodID(req.MethodID))
	if err != nil {
		return nil, err
	}
	req.Category = method.Category
	if strings.TrimSpace(req.Description) == "" {
		req.Description = "Pembelian di " + merchant.Store.Name
	}

	return s.create(ctx, merchant, req)
}

func (s *Service) create(
	ctx context.Context,
	merchant *entity.Merchant,
	req usecase.CreatePaymentRequest,
) (*entity.CreatedPaymentResponse, error) {
	if err := s.validator.ValidateCreate(req); err != nil {
		return nil, err
	}

	method, err := s.uow.GetPaymentMethodRepository(ctx).Get(ctx, merchant.ID, entity.SanitizeMethodID(req.MethodID))
	if err != nil {
		return nil, err
	}
	if err := method.AvailableFor(req.Category); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Pembayaran via " + string(method.Category)
	}

	if s.createTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = s.timeProvider.WithTimeout(ctx, coreport.Duration(s.createTimeout))
		defer cancel()
	}

	tx, err := s.manager.Enqueue(ctx, merchant.ID, func(ctx context.Context) (*entity.Transaction, error) {
		return s.ledger.Create(ctx, merchant.ID, method, req.Amount, description, s.prepare(merchant, method))
	})
	if err != nil {
		return nil, err
	}

	resp := entity.TransactionToCreatedResponse(tx, method)
	return &resp, nil
}

// prepare mints the payment link and, for QRIS, the dynamic QR image.
// Both upstream calls are bounded and happen before any database write.
func (s *Service) prepare(merchant *entity.Merchant, method *entity.PaymentMethod) PrepareFunc {
	return func(ctx context.Context, tx *entity.Transaction) error {
		token, err := s.links.Encode(tx.TransactionID)
		if err != nil {
			return fmt.Errorf("failed to encode payment link: %w", err)
		}
		tx.PaymentURL = s.publicBaseURL + "/pay/" + token

		if tx.Category != entity.CategoryQRIS {
			return nil
		}

		upstreamCtx, cancel := s.timeProvider.WithTimeout(ctx, coreport.Duration(s.upstreamTimeout))
		defer cancel()

		encoded, err := s.qr.GenerateQR(upstreamCtx, method.QRISString, tx.Amount)
		if err != nil {
			return errs.NewUpstreamError("qris generator", "generate", err)
		}
		encoded = strings.TrimPrefix(encoded, "data:image/png;base64,")

		image, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return errs.NewUpstreamError("qris generator", "decode", err)
		}

		fileName := fmt.Sprintf("qris-%s-%d.png", merchant.Username, s.timeProvider.Now().UnixMilli())
		url, err := s.uploader.UploadImage(upstreamCtx, fileName, image)
		if err != nil {
			return errs.NewUpstreamError("image cdn", "upload", err)
		}

		tx.QRBase64 = encoded
		tx.QRURL = url
		return nil
	}
}
