package gateway

import "context"

// Bank is a destination bank known to the lookup provider
type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// AccountHolder is the verified owner of a bank account or e-wallet
type AccountHolder struct {
	Provider      string `json:"provider"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}

// AccountLookup verifies account owners before a merchant saves a payment method
type AccountLookup interface {
	ListBanks(ctx context.Context) ([]Bank, error)
	CheckBankAccount(ctx context.Context, bankCode, accountNumber string) (*AccountHolder, error)
	CheckEwalletAccount(ctx context.Context, provider, phoneNumber string) (*AccountHolder, error)
}
