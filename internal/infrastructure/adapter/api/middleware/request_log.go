package middleware

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
)

// maxLoggedResponse bounds the response body kept in the request log
const maxLoggedResponse = 64 << 10

// bodyRecorder copies what the handler writes
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if room := maxLoggedResponse - w.body.Len(); room > 0 {
		if len(b) > room {
			w.body.Write(b[:room])
		} else {
			w.body.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// RequestLog stores every authenticated call in the merchant's capped request
// log. It must run after APIKeyAuth. The API key never reaches the log.
func RequestLog(merchants usecase.MerchantUseCase, timeProvider coreport.TimeProvider, logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		merchant, ok := MerchantFromContext(c)
		if !ok {
			c.Next()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder

		c.Next()

		entry := &entity.APIRequestLog{
			MerchantID:     merchant.ID,
			Method:         c.Request.Method,
			Endpoint:       c.Request.URL.Path,
			IPAddress:      c.ClientIP(),
			RequestBody:    StripAPIKey(RawBody(c)),
			ResponseStatus: c.Writer.Status(),
			ResponseBody:   recorder.body.Bytes(),
			CreatedAt:      timeProvider.Now(),
		}
		if err := merchants.RecordAPIRequest(context.WithoutCancel(c.Request.Context()), entry); err != nil {
			logger.Warn("Failed to record API request", map[string]any{
				"merchant_id": merchant.ID,
				"request_id":  GetRequestID(c),
				"error":       err.Error(),
			})
		}
	}
}

// StripAPIKey removes the apikey field from a JSON object body. Other
// bodies are returned unchanged.
func StripAPIKey(body []byte) []byte {
	if len(body) == 0 {
		return nil
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return body
	}
	if _, ok := payload["apikey"]; !ok {
		return body
	}
	delete(payload, "apikey")

	stripped, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return stripped
}
