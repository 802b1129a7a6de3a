package model

import (
	"time"

	"gorm.io/datatypes"
)

// APIRequestLog is one stored API call of a merchant
type APIRequestLog struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement"`
	MerchantID     uint64 `gorm:"not null;index:idx_api_request_logs_merchant_created,priority:1"`
	Method         string `gorm:"not null;size:10"`
	Endpoint       string `gorm:"not null;size:255"`
	IPAddress      string `gorm:"size:64"`
	RequestBody    datatypes.JSON
	ResponseStatus int
	ResponseBody   datatypes.JSON
	CreatedAt      time.Time `gorm:"not null;index:idx_api_request_logs_merchant_created,priority:2"`
}

// TableName specifies the table name for APIRequestLog
func (APIRequestLog) TableName() string {
	return "api_request_logs"
}
