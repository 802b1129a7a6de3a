package entity

import "time"

// MaxRequestLogsPerMerchant is how many API calls are kept per merchant
const MaxRequestLogsPerMerchant = 100

// APIRequestLog is one API call made with a merchant's key
type APIRequestLog struct {
	ID             uint64
	MerchantID     uint64
	Method         string
	Endpoint       string
	IPAddress      string
	RequestBody    []byte // JSON, api key removed
	ResponseStatus int
	ResponseBody   []byte // JSON
	CreatedAt      time.Time
}
