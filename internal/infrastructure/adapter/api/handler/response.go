package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/usecase/transaction"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/middleware"
)

// respondError writes the standard error body for a usecase error. Server
// side failures are logged with the request id; client errors are not.
func respondError(c *gin.Context, logger coreport.Logger, operation string, err error) {
	status := transaction.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", map[string]any{
			"operation":  operation,
			"path":       c.Request.URL.Path,
			"request_id": middleware.GetRequestID(c),
			"error":      err.Error(),
		})
	}
	_ = c.Error(err)
	c.JSON(status, dto.NewErrorResponse(errs.ErrorCode(err), transaction.PublicMessage(err)))
}

// respondBadRequest rejects a request that could not be decoded
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errs.ErrorCode(errs.ErrInvalidRequest), message))
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, dto.OK(message, data))
}

// currentMerchant returns the authenticated merchant or aborts with 401
func currentMerchant(c *gin.Context) (uint64, bool) {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
			errs.ErrorCode(errs.ErrMissingAPIKey), errs.ErrMissingAPIKey.Error()))
		return 0, false
	}
	return merchant.ID, true
}
