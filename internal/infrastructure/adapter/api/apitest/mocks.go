// Package apitest holds testify doubles of the usecase ports for the HTTP
// layer tests.
package apitest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
)

// MockPayments is a mock of usecase.PaymentUseCase
type MockPayments struct {
	mock.Mock
}

var _ usecase.PaymentUseCase = (*MockPayments)(nil)

func (m *MockPayments) CreatePayment(ctx context.Context, merchant *entity.Merchant, req usecase.CreatePaymentRequest) (*entity.CreatedPaymentResponse, error) {
	args := m.Called(ctx, merchant, req)
	resp, _ := args.Get(0).(*entity.CreatedPaymentResponse)
	return resp, args.Error(1)
}

func (m *MockPayments) CreateStorePayment(ctx context.Context, username string, req usecase.CreatePaymentRequest) (*entity.CreatedPaymentResponse, error) {
	args := m.Called(ctx, username, req)
	resp, _ := args.Get(0).(*entity.CreatedPaymentResponse)
	return resp, args.Error(1)
}

func (m *MockPayments) HandleNotification(ctx context.Context, merchant *entity.Merchant, req usecase.NotificationRequest) (*usecase.NotificationResult, error) {
	args := m.Called(ctx, merchant, req)
	result, _ := args.Get(0).(*usecase.NotificationResult)
	return result, args.Error(1)
}

func (m *MockPayments) GetStatus(ctx context.Context, merchant *entity.Merchant, transactionID string) (*entity.PaymentStatusResponse, error) {
	args := m.Called(ctx, merchant, transactionID)
	resp, _ := args.Get(0).(*entity.PaymentStatusResponse)
	return resp, args.Error(1)
}

func (m *MockPayments) GetStatusByToken(ctx context.Context, token string) (*entity.PaymentStatusResponse, error) {
	args := m.Called(ctx, token)
	resp, _ := args.Get(0).(*entity.PaymentStatusResponse)
	return resp, args.Error(1)
}

func (m *MockPayments) GetPaymentPage(ctx context.Context, token string) (*entity.PaymentPageResponse, error) {
	args := m.Called(ctx, token)
	resp, _ := args.Get(0).(*entity.PaymentPageResponse)
	return resp, args.Error(1)
}

func (m *MockPayments) UpdateStatus(ctx context.Context, merchantID uint64, transactionID string, status entity.TransactionStatus) (*entity.Transaction, error) {
	args := m.Called(ctx, merchantID, transactionID, status)
	tx, _ := args.Get(0).(*entity.Transaction)
	return tx, args.Error(1)
}

func (m *MockPayments) ListTransactions(ctx context.Context, merchantID uint64, filter persistence.TransactionFilter) ([]*entity.Transaction, int64, error) {
	args := m.Called(ctx, merchantID, filter)
	txs, _ := args.Get(0).([]*entity.Transaction)
	return txs, args.Get(1).(int64), args.Error(2)
}

func (m *MockPayments) GetSummary(ctx context.Context, merchantID uint64) (*entity.TransactionSummary, error) {
	args := m.Called(ctx, merchantID)
	summary, _ := args.Get(0).(*entity.TransactionSummary)
	return summary, args.Error(1)
}

// MockMerchants is a mock of usecase.MerchantUseCase
type MockMerchants struct {
	mock.Mock
}

var _ usecase.MerchantUseCase = (*MockMerchants)(nil)

func (m *MockMerchants) Authenticate(ctx context.Context, apiKey string) (*entity.Merchant, error) {
	args := m.Called(ctx, apiKey)
	merchant, _ := args.Get(0).(*entity.Merchant)
	return merchant, args.Error(1)
}

func (m *MockMerchants) RegisterMerchant(ctx context.Context, username, email string, verified bool) (*entity.Merchant, string, error) {
	args := m.Called(ctx, username, email, verified)
	merchant, _ := args.Get(0).(*entity.Merchant)
	return merchant, args.String(1), args.Error(2)
}

func (m *MockMerchants) RotateAPIKey(ctx context.Context, merchantID uint64) (string, error) {
	args := m.Called(ctx, merchantID)
	return args.String(0), args.Error(1)
}

func (m *MockMerchants) GetMerchant(ctx context.Context, merchantID uint64) (*entity.Merchant, error) {
	args := m.Called(ctx, merchantID)
	merchant, _ := args.Get(0).(*entity.Merchant)
	return merchant, args.Error(1)
}

func (m *MockMerchants) ListPaymentMethods(ctx context.Context, merchantID uint64) ([]*entity.PaymentMethod, error) {
	args := m.Called(ctx, merchantID)
	methods, _ := args.Get(0).([]*entity.PaymentMethod)
	return methods, args.Error(1)
}

func (m *MockMerchants) ListEnabledMethods(ctx context.Context, merchantID uint64) (map[entity.PaymentCategory][]*entity.PaymentMethod, error) {
	args := m.Called(ctx, merchantID)
	grouped, _ := args.Get(0).(map[entity.PaymentCategory][]*entity.PaymentMethod)
	return grouped, args.Error(1)
}

func (m *MockMerchants) AddPaymentMethod(ctx context.Context, merchantID uint64, input usecase.PaymentMethodInput) (*entity.PaymentMethod, error) {
	args := m.Called(ctx, merchantID, input)
	method, _ := args.Get(0).(*entity.PaymentMethod)
	return method, args.Error(1)
}

func (m *MockMerchants) EditPaymentMethod(ctx context.Context, merchantID uint64, methodID string, input usecase.PaymentMethodInput) (*entity.PaymentMethod, error) {
	args := m.Called(ctx, merchantID, methodID, input)
	method, _ := args.Get(0).(*entity.PaymentMethod)
	return method, args.Error(1)
}

func (m *MockMerchants) TogglePaymentMethod(ctx context.Context, merchantID uint64, methodID string) (*entity.PaymentMethod, error) {
	args := m.Called(ctx, merchantID, methodID)
	method, _ := args.Get(0).(*entity.PaymentMethod)
	return method, args.Error(1)
}

func (m *MockMerchants) DeletePaymentMethod(ctx context.Context, merchantID uint64, methodID string) error {
	return m.Called(ctx, merchantID, methodID).Error(0)
}

func (m *MockMerchants) UpdateTelegram(ctx context.Context, merchantID uint64, input usecase.TelegramInput) (*entity.Merchant, error) {
	args := m.Called(ctx, merchantID, input)
	merchant, _ := args.Get(0).(*entity.Merchant)
	return merchant, args.Error(1)
}

func (m *MockMerchants) UpdateStore(ctx context.Context, merchantID uint64, input usecase.StoreInput) (*entity.Merchant, error) {
	args := m.Called(ctx, merchantID, input)
	merchant, _ := args.Get(0).(*entity.Merchant)
	return merchant, args.Error(1)
}

func (m *MockMerchants) RecordAPIRequest(ctx context.Context, log *entity.APIRequestLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockMerchants) ListAPIRequests(ctx context.Context, merchantID uint64, limit int) ([]*entity.APIRequestLog, error) {
	args := m.Called(ctx, merchantID, limit)
	logs, _ := args.Get(0).([]*entity.APIRequestLog)
	return logs, args.Error(1)
}

func (m *MockMerchants) ListBanks(ctx context.Context) ([]gateway.Bank, error) {
	args := m.Called(ctx)
	banks, _ := args.Get(0).([]gateway.Bank)
	return banks, args.Error(1)
}

func (m *MockMerchants) CheckBankAccount(ctx context.Context, bankCode, accountNumber string) (*gateway.AccountHolder, error) {
	args := m.Called(ctx, bankCode, accountNumber)
	holder, _ := args.Get(0).(*gateway.AccountHolder)
	return holder, args.Error(1)
}

func (m *MockMerchants) CheckEwalletAccount(ctx context.Context, provider, phoneNumber string) (*gateway.AccountHolder, error) {
	args := m.Called(ctx, provider, phoneNumber)
	holder, _ := args.Get(0).(*gateway.AccountHolder)
	return holder, args.Error(1)
}
