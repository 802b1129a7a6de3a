package dto

import (
	"encoding/json"
	"time"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
)

// SummaryResponse is the dashboard view of the merchant counters
type SummaryResponse struct {
	Sukses             int64     `json:"sukses"`
	Pending            int64     `json:"pending"`
	Gagal              int64     `json:"gagal"`
	Total              int64     `json:"total"`
	UangPending        int64     `json:"uangPending"`
	UangSuksesHariIni  int64     `json:"uangSuksesHariIni"`
	UangSuksesKemarin  int64     `json:"uangSuksesKemarin"`
	UangSuksesBulanIni int64     `json:"uangSuksesBulanIni"`
	UangSuksesTotal    int64     `json:"uangSuksesTotal"`
	OmsetTotal         int64     `json:"omsetTotal"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// NewSummaryResponse converts a summary entity
func NewSummaryResponse(s *entity.TransactionSummary) SummaryResponse {
	return SummaryResponse{
		Sukses:             s.Sukses,
		Pending:            s.Pending,
		Gagal:              s.Gagal,
		Total:              s.Total,
		UangPending:        s.UangPending,
		UangSuksesHariIni:  s.UangSuksesHariIni,
		UangSuksesKemarin:  s.UangSuksesKemarin,
		UangSuksesBulanIni: s.UangSuksesBulanIni,
		UangSuksesTotal:    s.UangSuksesTotal,
		OmsetTotal:         s.OmsetTotal,
		UpdatedAt:          s.UpdatedAt,
	}
}

// SettingsResponse shows the merchant settings. Secrets are masked.
type SettingsResponse struct {
	Username          string `json:"username"`
	Email             string `json:"email"`
	Verified          bool   `json:"verified"`
	DailyRequestLimit int64  `json:"dailyRequestLimit"`
	NotifyEmail       bool   `json:"notifyEmail"`
	TelegramEnabled   bool   `json:"telegramEnabled"`
	TelegramChatID    string `json:"chat_id,omitempty"`
	StoreName         string `json:"storeName,omitempty"`
	StoreLogoURL      string `json:"storeLogoUrl,omitempty"`
}

// NewSettingsResponse converts a merchant entity
func NewSettingsResponse(m *entity.Merchant) SettingsResponse {
	return SettingsResponse{
		Username:          m.Username,
		Email:             m.Email,
		Verified:          m.Verified,
		DailyRequestLimit: m.DailyRequestLimit,
		NotifyEmail:       m.NotifyEmail,
		TelegramEnabled:   m.Telegram.Enabled(),
		TelegramChatID:    m.Telegram.ChatID,
		StoreName:         m.Store.Name,
		StoreLogoURL:      m.Store.LogoURL,
	}
}

// APIKeyResponse returns a freshly issued API key, shown only once
type APIKeyResponse struct {
	APIKey string `json:"apikey"`
}

// MethodView is a payment method as the merchant configured it
type MethodView struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Category              string   `json:"category"`
	AccountNumber         string   `json:"accountNumber,omitempty"`
	AccountName           string   `json:"accountName,omitempty"`
	QRISName              string   `json:"qrisName,omitempty"`
	QRISURL               string   `json:"qrisUrl,omitempty"`
	QRISString            string   `json:"qrisString,omitempty"`
	IconURL               string   `json:"iconUrl,omitempty"`
	MinAmount             int64    `json:"minAmount"`
	MaxAmount             int64    `json:"maxAmount"`
	Fee                   string   `json:"fee"`
	FeeType               string   `json:"feeType"`
	NotificationTemplates []string `json:"notificationTemplates,omitempty"`
	Enabled               bool     `json:"isEnabled"`
}

// NewMethodView converts a payment method entity
func NewMethodView(m *entity.PaymentMethod) MethodView {
	return MethodView{
		ID:                    m.ID,
		Name:                  m.Name,
		Category:              string(m.Category),
		AccountNumber:         m.AccountNumber,
		AccountName:           m.AccountName,
		QRISName:              m.QRISName,
		QRISURL:               m.QRISURL,
		QRISString:            m.QRISString,
		IconURL:               m.IconURL,
		MinAmount:             m.MinAmount,
		MaxAmount:             m.MaxAmount,
		Fee:                   m.Fee.String(),
		FeeType:               string(m.FeeType),
		NotificationTemplates: m.NotificationTemplates,
		Enabled:               m.Enabled,
	}
}

// PublicMethodView is a method as listed to API callers, with only the
// fields of its category
type PublicMethodView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IconURL       string `json:"iconUrl,omitempty"`
	MinAmount     int64  `json:"minAmount"`
	MaxAmount     int64  `json:"maxAmount"`
	Fee           string `json:"fee"`
	FeeType       string `json:"feeType"`
	AccountNumber string `json:"accountNumber,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	QRISName      string `json:"qrisName,omitempty"`
	QRISURL       string `json:"qrisUrl,omitempty"`
}

// NewPaymentListResponse groups enabled methods by category slug
func NewPaymentListResponse(grouped map[entity.PaymentCategory][]*entity.PaymentMethod) map[string][]PublicMethodView {
	resp := map[string][]PublicMethodView{
		entity.CategoryBank.Slug():    {},
		entity.CategoryEwallet.Slug(): {},
		entity.CategoryQRIS.Slug():    {},
	}
	for category, methods := range grouped {
		views := make([]PublicMethodView, 0, len(methods))
		for _, m := range methods {
			view := PublicMethodView{
				ID:        m.ID,
				Name:      m.Name,
				IconURL:   m.IconURL,
				MinAmount: m.MinAmount,
				MaxAmount: m.MaxAmount,
				Fee:       m.Fee.String(),
				FeeType:   string(m.FeeType),
			}
			if category == entity.CategoryQRIS {
				view.QRISName = m.QRISName
				view.QRISURL = m.QRISURL
			} else {
				view.AccountNumber = m.AccountNumber
				view.AccountName = m.AccountName
			}
			views = append(views, view)
		}
		resp[category.Slug()] = views
	}
	return resp
}

// APIRequestView is one entry of the request log
type APIRequestView struct {
	Method         string          `json:"method"`
	Endpoint       string          `json:"endpoint"`
	IPAddress      string          `json:"ipAddress"`
	RequestBody    json.RawMessage `json:"requestBody,omitempty"`
	ResponseStatus int             `json:"responseStatus"`
	ResponseBody   json.RawMessage `json:"responseBody,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// NewAPIRequestView converts a request log entity
func NewAPIRequestView(l *entity.APIRequestLog) APIRequestView {
	view := APIRequestView{
		Method:         l.Method,
		Endpoint:       l.Endpoint,
		IPAddress:      l.IPAddress,
		ResponseStatus: l.ResponseStatus,
		CreatedAt:      l.CreatedAt,
	}
	if json.Valid(l.RequestBody) {
		view.RequestBody = l.RequestBody
	}
	if json.Valid(l.ResponseBody) {
		view.ResponseBody = l.ResponseBody
	}
	return view
}

// CheckBankRequest asks for the owner of a bank account
type CheckBankRequest struct {
	BankCode      string `json:"bankCode" binding:"required"`
	AccountNumber string `json:"accountNumber" binding:"required"`
}

// CheckEwalletRequest asks for the owner of an e-wallet
type CheckEwalletRequest struct {
	Provider    string `json:"provider" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}
