package merchant

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
)

// ListPaymentMethods returns every method of the merchant
func (u *UseCase) ListPaymentMethods(ctx context.Context, merchantID uint64) ([]*entity.PaymentMethod, error) {
	return u.uow.GetPaymentMethodRepository(ctx).List(ctx, merchantID)
}

// ListEnabledMethods returns the enabled methods grouped by category.
// QRIS methods without a static payload are left out.
func (u *UseCase) ListEnabledMethods(ctx context.Context, merchantID uint64) (map[entity.PaymentCategory][]*entity.PaymentMethod, error) {
	methods, err := u.ListPaymentMethods(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	grouped := map[entity.PaymentCategory][]*entity.PaymentMethod{
		entity.CategoryBank:    {},
		entity.CategoryEwallet: {},
		entity.CategoryQRIS:    {},
	}
	for _, m := range methods {
		if m.AvailableFor(m.Category) != nil {
			continue
		}
		grouped[m.Category] = append(grouped[m.Category], m)
	}
	for _, list := range grouped {
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return grouped, nil
}

// AddPaymentMethod validates and stores a new method
func (u *UseCase) AddPaymentMethod(ctx context.Context, merchantID uint64, input usecase.PaymentMethodInput) (*entity.PaymentMethod, error) {
	method, err := u.buildMethod(merchantID, input)
	if err != nil {
		return nil, err
	}
	now := u.timeProvider.Now()
	method.CreatedAt = now
	method.UpdatedAt = now
	if input.Enabled == nil {
		method.Enabled = true
	}

	err = u.uow.Do(ctx, func(ctx context.Context) error {
		methods := u.uow.GetPaymentMethodRepository(ctx)
		if _, err := methods.Get(ctx, merchantID, method.ID); err == nil {
			return errs.ErrDuplicateMethod
		} else if !errors.Is(err, errs.ErrMethodNotFound) {
			return err
		}
		return methods.Create(ctx, method)
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("Payment method added", map[string]any{
		"merchant_id": merchantID,
		"method":      method.ID,
		"category":    string(method.Category),
	})
	return method, nil
}

// EditPaymentMethod replaces the fields of a method. The id and the
// enabled flag are kept unless the input sets the flag.
func (u *UseCase) EditPaymentMethod(
	ctx context.Context,
	merchantID uint64,
	methodID string,
	input usecase.PaymentMethodInput,
) (*entity.PaymentMethod, error) {
	input.ID = methodID
	method, err := u.buildMethod(merchantID, input)
	if err != nil {
		return nil, err
	}

	err = u.uow.Do(ctx, func(ctx context.Context) error {
		methods := u.uow.GetPaymentMethodRepository(ctx)
		current, err := methods.Get(ctx, merchantID, method.ID)
		if err != nil {
			return err
		}
		method.CreatedAt = current.CreatedAt
		method.UpdatedAt = u.timeProvider.Now()
		if input.Enabled == nil {
			method.Enabled = current.Enabled
		}
		return methods.Update(ctx, method)
	})
	if err != nil {
		return nil, err
	}
	return method, nil
}

// TogglePaymentMethod flips the enabled flag
func (u *UseCase) TogglePaymentMethod(ctx context.Context, merchantID uint64, methodID string) (*entity.PaymentMethod, error) {
	var method *entity.PaymentMethod
	err := u.uow.Do(ctx, func(ctx context.Context) error {
		methods := u.uow.GetPaymentMethodRepository(ctx)
		current, err := methods.Get(ctx, merchantID, entity.SanitizeMethodID(methodID))
		if err != nil {
			return err
		}
		current.Enabled = !current.Enabled
		current.UpdatedAt = u.timeProvider.Now()
		if err := methods.Update(ctx, current); err != nil {
			return err
		}
		method = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return method, nil
}

// DeletePaymentMethod removes a method. Methods with pending transactions
// can only be disabled, so the payment page keeps working until they settle.
func (u *UseCase) DeletePaymentMethod(ctx context.Context, merchantID uint64, methodID string) error {
	methodID = entity.SanitizeMethodID(methodID)
	return u.uow.Do(ctx, func(ctx context.Context) error {
		methods := u.uow.GetPaymentMethodRepository(ctx)
		if _, err := methods.Get(ctx, merchantID, methodID); err != nil {
			return err
		}

		pending, err := u.uow.GetTransactionRepository(ctx).CountPendingByMethod(ctx, merchantID, methodID)
		if err != nil {
			return err
		}
		if pending > 0 {
			u.logger.Info("Refusing to delete method with pending transactions", map[string]any{
				"merchant_id": merchantID,
				"method":      methodID,
				"pending":     pending,
			})
			return errs.ErrMethodInUse
		}
		return methods.Delete(ctx, merchantID, methodID)
	})
}

// buildMethod validates the input and converts it to an entity
func (u *UseCase) buildMethod(merchantID uint64, input usecase.PaymentMethodInput) (*entity.PaymentMethod, error) {
	if err := u.validateInput(input); err != nil {
		return nil, err
	}

	category, err := entity.ParsePaymentCategory(input.Category)
	if err != nil {
		return nil, errs.NewValidationError("category", "is unknown", errs.ErrInvalidCategory)
	}

	fee := decimal.Zero
	if strings.TrimSpace(input.Fee) != "" {
		fee, err = decimal.NewFromString(strings.TrimSpace(input.Fee))
		if err != nil {
			return nil, errs.NewValidationError("fee", "must be a number", nil)
		}
	}

	templates := make([]string, 0, len(input.NotificationTemplates))
	for _, tpl := range input.NotificationTemplates {
		if tpl = strings.TrimSpace(tpl); tpl != "" {
			templates = append(templates, tpl)
		}
	}

	method := &entity.PaymentMethod{
		MerchantID:            merchantID,
		ID:                    entity.SanitizeMethodID(input.ID),
		Name:                  strings.TrimSpace(input.Name),
		Category:              category,
		AccountNumber:         strings.TrimSpace(input.AccountNumber),
		AccountName:           strings.TrimSpace(input.AccountName),
		QRISName:              strings.TrimSpace(input.QRISName),
		QRISURL:               strings.TrimSpace(input.QRISURL),
		QRISString:            strings.TrimSpace(input.QRISString),
		IconURL:               strings.TrimSpace(input.IconURL),
		MinAmount:             input.MinAmount,
		MaxAmount:             input.MaxAmount,
		Fee:                   fee,
		FeeType:               entity.FeeType(input.FeeType),
		NotificationTemplates: templates,
	}
	if input.Enabled != nil {
		method.Enabled = *input.Enabled
	}

	if err := method.Validate(); err != nil {
		return nil, err
	}
	return method, nil
}
