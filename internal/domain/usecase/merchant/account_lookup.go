package merchant

import (
	"context"
	"strings"

	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
)

const lookupService = "account lookup"

// ListBanks returns the banks known to the lookup provider
func (u *UseCase) ListBanks(ctx context.Context) ([]gateway.Bank, error) {
	ctx, cancel := u.timeProvider.WithTimeout(ctx, coreport.Duration(u.lookupTimeout))
	defer cancel()

	banks, err := u.lookup.ListBanks(ctx)
	if err != nil {
		return nil, u.upstream("list banks", err)
	}
	return banks, nil
}

// CheckBankAccount returns the owner name of a bank account
func (u *UseCase) CheckBankAccount(ctx context.Context, bankCode, accountNumber string) (*gateway.AccountHolder, error) {
	bankCode = strings.TrimSpace(bankCode)
	accountNumber = strings.TrimSpace(accountNumber)
	if bankCode == "" {
		return nil, errs.NewValidationError("bankCode", "is required", nil)
	}
	if accountNumber == "" {
		return nil, errs.NewValidationError("accountNumber", "is required", nil)
	}

	ctx, cancel := u.timeProvider.WithTimeout(ctx, coreport.Duration(u.lookupTimeout))
	defer cancel()

	holder, err := u.lookup.CheckBankAccount(ctx, bankCode, accountNumber)
	if err != nil {
		return nil, u.upstream("check bank", err)
	}
	return holder, nil
}

// CheckEwalletAccount returns the owner name of an e-wallet
func (u *UseCase) CheckEwalletAccount(ctx context.Context, provider, phoneNumber string) (*gateway.AccountHolder, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	phoneNumber = strings.TrimSpace(phoneNumber)
	if provider == "" {
		return nil, errs.NewValidationError("ewallet", "is required", nil)
	}
	if phoneNumber == "" {
		return nil, errs.NewValidationError("phoneNumber", "is required", nil)
	}

	ctx, cancel := u.timeProvider.WithTimeout(ctx, coreport.Duration(u.lookupTimeout))
	defer cancel()

	holder, err := u.lookup.CheckEwalletAccount(ctx, provider, phoneNumber)
	if err != nil {
		return nil, u.upstream("check ewallet", err)
	}
	return holder, nil
}

func (u *UseCase) upstream(op string, err error) error {
	if errs.IsUpstreamError(err) || errs.IsValidationError(err) || errs.IsNotFoundError(err) {
		return err
	}
	u.logger.Warn("Account lookup failed", map[string]any{
		"operation": op,
		"error":     err.Error(),
	})
	return errs.NewUpstreamError(lookupService, op, err)
}
