package usecase

import (
	"context"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
)

// PaymentMethodInput is the editable part of a payment method
type PaymentMethodInput struct {
	ID                    string   `json:"id" validate:"required,max=64"`
	Name                  string   `json:"name" validate:"required,max=100"`
	Category              string   `json:"category" validate:"required,oneof=Bank Ewallet QRIS"`
	AccountNumber         string   `json:"accountNumber" validate:"required_unless=Category QRIS,max=64"`
	AccountName           string   `json:"accountName" validate:"omitempty,max=100"`
	QRISName              string   `json:"qrisName" validate:"omitempty,max=100"`
	QRISURL               string   `json:"qrisUrl" validate:"omitempty,url"`
	QRISString            string   `json:"qrisString" validate:"required_if=Category QRIS"`
	IconURL               string   `json:"iconUrl" validate:"omitempty,url"`
	MinAmount             int64    `json:"minAmount" validate:"gte=0"`
	MaxAmount             int64    `json:"maxAmount" validate:"gte=0"`
	Fee                   string   `json:"fee" validate:"omitempty,numeric"`
	FeeType               string   `json:"feeType" validate:"required,oneof=Fixed Persen"`
	NotificationTemplates []string `json:"notificationTemplates" validate:"max=20,dive,max=500"`
	Enabled               *bool    `json:"isEnabled"`
}

// TelegramInput updates the Telegram notifier of a merchant
type TelegramInput struct {
	BotToken string `json:"token_bot" validate:"omitempty,min=20,max=128"`
	ChatID   string `json:"chat_id" validate:"omitempty,max=64"`
}

// StoreInput updates the public store of a merchant
type StoreInput struct {
	Name    string `json:"name" validate:"omitempty,max=100"`
	LogoURL string `json:"logoUrl" validate:"omitempty,url"`
}

// MerchantUseCase defines merchant account and configuration operations
type MerchantUseCase interface {
	// Authenticate resolves an API key to a verified merchant with quota left
	Authenticate(ctx context.Context, apiKey string) (*entity.Merchant, error)

	// RegisterMerchant creates a merchant and returns its plain API key
	RegisterMerchant(ctx context.Context, username, email string, verified bool) (*entity.Merchant, string, error)

	// RotateAPIKey issues a new API key and invalidates the old one
	RotateAPIKey(ctx context.Context, merchantID uint64) (string, error)

	// GetMerchant returns a merchant by ID
	GetMerchant(ctx context.Context, merchantID uint64) (*entity.Merchant, error)

	// ListPaymentMethods returns every method of the merchant
	ListPaymentMethods(ctx context.Context, merchantID uint64) ([]*entity.PaymentMethod, error)

	// ListEnabledMethods returns the enabled methods grouped by category
	ListEnabledMethods(ctx context.Context, merchantID uint64) (map[entity.PaymentCategory][]*entity.PaymentMethod, error)

	// AddPaymentMethod validates and stores a new method
	AddPaymentMethod(ctx context.Context, merchantID uint64, input PaymentMethodInput) (*entity.PaymentMethod, error)

	// EditPaymentMethod replaces the fields of a method; the id cannot change
	EditPaymentMethod(ctx context.Context, merchantID uint64, methodID string, input PaymentMethodInput) (*entity.PaymentMethod, error)

	// TogglePaymentMethod flips the enabled flag
	TogglePaymentMethod(ctx context.Context, merchantID uint64, methodID string) (*entity.PaymentMethod, error)

	// DeletePaymentMethod removes a method without pending transactions
	DeletePaymentMethod(ctx context.Context, merchantID uint64, methodID string) error

	// UpdateTelegram stores the Telegram notifier settings
	UpdateTelegram(ctx context.Context, merchantID uint64, input TelegramInput) (*entity.Merchant, error)

	// UpdateStore stores the public store profile
	UpdateStore(ctx context.Context, merchantID uint64, input StoreInput) (*entity.Merchant, error)

	// RecordAPIRequest appends to the capped request log
	RecordAPIRequest(ctx context.Context, log *entity.APIRequestLog) error

	// ListAPIRequests returns the latest request logs
	ListAPIRequests(ctx context.Context, merchantID uint64, limit int) ([]*entity.APIRequestLog, error)

	// ListBanks returns the banks known to the lookup provider
	ListBanks(ctx context.Context) ([]gateway.Bank, error)

	// CheckBankAccount returns the owner of a bank account
	CheckBankAccount(ctx context.Context, bankCode, accountNumber string) (*gateway.AccountHolder, error)

	// CheckEwalletAccount returns the owner of an e-wallet
	CheckEwalletAccount(ctx context.Context, provider, phoneNumber string) (*gateway.AccountHolder, error)
}
