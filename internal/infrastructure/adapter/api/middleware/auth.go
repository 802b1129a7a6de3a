package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/dto"
)

// APIKeyHeader may carry the key instead of the body or query
const APIKeyHeader = "X-API-Key"

// MaxBodyBytes bounds request bodies read by the middlewares
const MaxBodyBytes = 1 << 20

const (
	merchantKey = "merchant"
	bodyKey     = "raw_body"
)

// APIKeyAuth resolves the API key to a verified merchant with quota left.
// The key is read from the X-API-Key header, the apikey query parameter or
// the apikey field of a JSON body, in that order.
func APIKeyAuth(merchants usecase.MerchantUseCase, logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := readBody(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				errs.ErrorCode(errs.ErrInvalidRequest), "request body is too large or unreadable"))
			return
		}

		apiKey := extractAPIKey(c, body)
		merchant, err := merchants.Authenticate(c.Request.Context(), apiKey)
		if err != nil {
			status, message := authFailure(err)
			if status >= http.StatusInternalServerError {
				logger.Error("API key authentication failed", map[string]any{
					"path":       c.Request.URL.Path,
					"request_id": GetRequestID(c),
					"error":      err.Error(),
				})
			}
			c.AbortWithStatusJSON(status, dto.NewErrorResponse(errs.ErrorCode(err), message))
			return
		}

		c.Set(merchantKey, merchant)
		c.Next()
	}
}

// MerchantFromContext returns the merchant set by APIKeyAuth
func MerchantFromContext(c *gin.Context) (*entity.Merchant, bool) {
	value, ok := c.Get(merchantKey)
	if !ok {
		return nil, false
	}
	merchant, ok := value.(*entity.Merchant)
	return merchant, ok && merchant != nil
}

// RawBody returns the request body captured by the middlewares
func RawBody(c *gin.Context) []byte {
	if value, ok := c.Get(bodyKey); ok {
		if body, ok := value.([]byte); ok {
			return body
		}
	}
	return nil
}

// readBody reads the body once, keeps a copy in the context and restores it
// for the handler
func readBody(c *gin.Context) ([]byte, error) {
	if body := RawBody(c); body != nil {
		return body, nil
	}
	if c.Request.Body == nil {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxBodyBytes {
		return nil, errors.New("request body too large")
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	c.Set(bodyKey, body)
	return body, nil
}

func extractAPIKey(c *gin.Context, body []byte) string {
	if key := strings.TrimSpace(c.GetHeader(APIKeyHeader)); key != "" {
		return key
	}
	if key := strings.TrimSpace(c.Query("apikey")); key != "" {
		return key
	}
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		APIKey string `json:"apikey"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.APIKey)
}

func authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrMissingAPIKey), errors.Is(err, errs.ErrInvalidAPIKey):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, errs.ErrMerchantNotVerified):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, errs.ErrQuotaExhausted):
		return http.StatusTooManyRequests, err.Error()
	default:
		return http.StatusServiceUnavailable, "service temporarily unavailable, please try again"
	}
}
