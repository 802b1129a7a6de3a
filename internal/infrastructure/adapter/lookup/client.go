// Package lookup verifies bank account and e-wallet owners through a
// third-party transfer API
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
)

const maxResponseBytes = 1 << 20

// ewalletCodes are listed by the provider as banks but handled by CheckEwalletAccount
var ewalletCodes = map[string]bool{
	"dana":      true,
	"gopay":     true,
	"linkaja":   true,
	"ovo":       true,
	"shopeepay": true,
}

// Client calls the provider with form encoded requests
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ gateway.AccountLookup = (*Client)(nil)

// NewClient creates a lookup client
func NewClient(baseURL, apiKey string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

type bankListResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    []struct {
		BankCode string `json:"bank_code"`
		BankName string `json:"bank_name"`
	} `json:"data"`
}

// ListBanks returns the banks without the e-wallet pseudo banks
func (c *Client) ListBanks(ctx context.Context) ([]gateway.Bank, error) {
	var resp bankListResponse
	if err := c.post(ctx, "/transfer/bank_list", url.Values{}, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("bank list rejected: %s", resp.Message)
	}

	banks := make([]gateway.Bank, 0, len(resp.Data))
	for _, b := range resp.Data {
		if ewalletCodes[strings.ToLower(b.BankCode)] {
			continue
		}
		banks = append(banks, gateway.Bank{Code: b.BankCode, Name: b.BankName})
	}
	return banks, nil
}

type bankAccountResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status      string `json:"status"`
		AccountNo   string `json:"nomor_akun"`
		AccountName string `json:"nama_pemilik"`
	} `json:"data"`
}

// CheckBankAccount returns the holder of a valid account
func (c *Client) CheckBankAccount(ctx context.Context, bankCode, accountNumber string) (*gateway.AccountHolder, error) {
	var resp bankAccountResponse
	form := url.Values{"bank_code": {bankCode}, "account_number": {accountNumber}}
	if err := c.post(ctx, "/transfer/cek_rekening", form, &resp); err != nil {
		return nil, err
	}
	if !resp.Status || resp.Data.Status != "valid" {
		return nil, errs.NewValidationError("accountNumber", "is not a valid account", errs.ErrNotFound)
	}
	return &gateway.AccountHolder{
		Provider:      bankCode,
		AccountNumber: resp.Data.AccountNo,
		AccountName:   resp.Data.AccountName,
	}, nil
}

type ewalletResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CheckEwalletAccount returns the holder of a registered e-wallet number
func (c *Client) CheckEwalletAccount(ctx context.Context, provider, phoneNumber string) (*gateway.AccountHolder, error) {
	provider = strings.ToLower(provider)
	if !ewalletCodes[provider] {
		return nil, errs.NewValidationError("ewallet", "is not a supported e-wallet", nil)
	}

	var resp ewalletResponse
	if err := c.post(ctx, "/checkname/"+url.PathEscape(provider), url.Values{"phoneNumber": {phoneNumber}}, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" || resp.Message == "" {
		return nil, errs.NewValidationError("phoneNumber", "is not registered", errs.ErrNotFound)
	}
	return &gateway.AccountHolder{
		Provider:      provider,
		AccountNumber: phoneNumber,
		AccountName:   resp.Message,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	form.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", path, err)
	}
	return nil
}
