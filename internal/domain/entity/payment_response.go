package entity

import "time"

// PaymentStatusResponse is the status view of a transaction
type PaymentStatusResponse struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Method        string `json:"method"`
}

// TransactionToStatusResponse converts a Transaction entity to a PaymentStatusResponse
func TransactionToStatusResponse(tx *Transaction) PaymentStatusResponse {
	return PaymentStatusResponse{
		TransactionID: tx.TransactionID,
		Status:        string(tx.Status),
		Amount:        tx.Amount,
		Method:        tx.PaymentMethod,
	}
}

// CreatedPaymentResponse is returned to the caller that created a transaction.
// Category specific fields are left empty for other categories.
type CreatedPaymentResponse struct {
	TransactionID string    `json:"transactionId"`
	PaymentURL    string    `json:"paymentUrl"`
	BaseAmount    int64     `json:"baseAmount"`
	FeeAmount     int64     `json:"feeAmount"`
	UniqueNumber  int64     `json:"uniqueNumber"`
	Amount        int64     `json:"amount"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	ExpiredAt     time.Time `json:"expiredAt"`
	AccountNumber string    `json:"accountNumber,omitempty"`
	OwnerName     string    `json:"ownerName,omitempty"`
	QRBase64      string    `json:"qr_base64,omitempty"`
	QRURL         string    `json:"qr_url,omitempty"`
}

// TransactionToCreatedResponse builds the create response for the method category
func TransactionToCreatedResponse(tx *Transaction, method *PaymentMethod) CreatedPaymentResponse {
	resp := CreatedPaymentResponse{
		TransactionID: tx.TransactionID,
		PaymentURL:    tx.PaymentURL,
		BaseAmount:    tx.BaseAmount,
		FeeAmount:     tx.FeeAmount,
		UniqueNumber:  tx.UniqueNumber,
		Amount:        tx.Amount,
		PaymentMethod: tx.PaymentMethod,
		Status:        string(tx.Status),
		ExpiredAt:     tx.ExpiredAt,
	}

	switch tx.Category {
	case CategoryQRIS:
		resp.QRBase64 = tx.QRBase64
		resp.QRURL = tx.QRURL
	default:
		if method != nil {
			resp.AccountNumber = method.AccountNumber
			resp.OwnerName = method.AccountName
		}
	}
	return resp
}

// PaymentPageResponse is the public view behind a payment link
type PaymentPageResponse struct {
	TransactionID string    `json:"transactionId"`
	Status        string    `json:"status"`
	Amount        int64     `json:"amount"`
	AmountText    string    `json:"amountText"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category"`
	MethodName    string    `json:"methodName,omitempty"`
	IconURL       string    `json:"iconUrl,omitempty"`
	AccountNumber string    `json:"accountNumber,omitempty"`
	AccountName   string    `json:"accountName,omitempty"`
	QRURL         string    `json:"qr_url,omitempty"`
	QRBase64      string    `json:"qr_base64,omitempty"`
	StoreName     string    `json:"storeName,omitempty"`
	ExpiredAt     time.Time `json:"expiredAt"`
	Expired       bool      `json:"expired"` // window closed, the sweep has not failed it yet
}

// TransactionToPaymentPage builds the public page view. The method may be nil
// when it was deleted after the transaction was created.
func TransactionToPaymentPage(tx *Transaction, method *PaymentMethod, merchant *Merchant) PaymentPageResponse {
	page := PaymentPageResponse{
		TransactionID: tx.TransactionID,
		Status:        string(tx.Status),
		Amount:        tx.Amount,
		AmountText:    FormatRupiah(tx.Amount),
		Description:   tx.Description,
		Category:      string(tx.Category),
		QRURL:         tx.QRURL,
		QRBase64:      tx.QRBase64,
		ExpiredAt:     tx.ExpiredAt,
	}
	if method != nil {
		page.MethodName = method.Name
		page.IconURL = method.IconURL
		if method.Category != CategoryQRIS {
			page.AccountNumber = method.AccountNumber
			page.AccountName = method.AccountName
		}
	}
	if merchant != nil {
		page.StoreName = merchant.Store.Name
	}
	return page
}
