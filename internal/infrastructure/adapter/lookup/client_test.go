package lookup_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/lookup"
)

func newProvider(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("api_key") != "secret" {
			_, _ = w.Write([]byte(`{"status":false,"message":"invalid api key"}`))
			return
		}

		switch r.URL.Path {
		case "/transfer/bank_list":
			_, _ = w.Write([]byte(`{"status":true,"data":[
				{"bank_code":"bca","bank_name":"Bank Central Asia"},
				{"bank_code":"dana","bank_name":"DANA"},
				{"bank_code":"bri","bank_name":"Bank Rakyat Indonesia"}]}`))
		case "/transfer/cek_rekening":
			if r.PostForm.Get("account_number") == "123" {
				_, _ = w.Write([]byte(`{"status":true,"data":{"status":"valid","nomor_akun":"123","nama_pemilik":"BUDI SANTOSO"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":true,"data":{"status":"invalid"}}`))
		case "/checkname/dana":
			if r.PostForm.Get("phoneNumber") == "0812" {
				_, _ = w.Write([]byte(`{"status":"success","message":"BUDI"}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":"failed","message":"Nomor tidak terdaftar"}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestListBanks(t *testing.T) {
	server := newProvider(t)
	client := lookup.NewClient(server.URL+"/", "secret", server.Client())

	banks, err := client.ListBanks(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []gateway.Bank{
		{Code: "bca", Name: "Bank Central Asia"},
		{Code: "bri", Name: "Bank Rakyat Indonesia"},
	}, banks)

	_, err = lookup.NewClient(server.URL, "wrong", server.Client()).ListBanks(context.Background())
	assert.ErrorContains(t, err, "invalid api key")
}

func TestCheckBankAccount(t *testing.T) {
	server := newProvider(t)
	client := lookup.NewClient(server.URL, "secret", server.Client())

	holder, err := client.CheckBankAccount(context.Background(), "bca", "123")
	require.NoError(t, err)
	assert.Equal(t, "BUDI SANTOSO", holder.AccountName)

	_, err = client.CheckBankAccount(context.Background(), "bca", "999")
	assert.True(t, errs.IsValidationError(err))
}

func TestCheckEwalletAccount(t *testing.T) {
	server := newProvider(t)
	client := lookup.NewClient(server.URL, "secret", server.Client())

	holder, err := client.CheckEwalletAccount(context.Background(), "DANA", "0812")
	require.NoError(t, err)
	assert.Equal(t, &gateway.AccountHolder{Provider: "dana", AccountNumber: "0812", AccountName: "BUDI"}, holder)

	_, err = client.CheckEwalletAccount(context.Background(), "dana", "0899")
	assert.True(t, errs.IsValidationError(err))

	_, err = client.CheckEwalletAccount(context.Background(), "paypal", "0812")
	assert.True(t, errs.IsValidationError(err))
}

func TestProviderDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := lookup.NewClient(server.URL, "secret", server.Client()).ListBanks(context.Background())
	assert.ErrorContains(t, err, "500")
}
