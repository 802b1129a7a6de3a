package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	merchantUseCase "github.com/amirhossein-jamali/payment-gateway/internal/domain/usecase/merchant"
)

// CreateDefaultMerchants seeds the demo merchant used in development.
// Running it again leaves an existing demo merchant untouched.
func CreateDefaultMerchants(
	ctx context.Context,
	merchantService *merchantUseCase.UseCase,
	demoAPIKey string,
	logger coreport.Logger,
) error {
	result, err := merchantService.CreateDefaultMerchants(ctx, demoAPIKey)
	if err != nil {
		return err
	}

	if result.APIKey != "" {
		logger.Info("Demo merchant ready", map[string]any{
			"username":    result.Merchant.Username,
			"merchant_id": result.Merchant.ID,
			"api_key":     result.APIKey,
		})
	}
	return nil
}
