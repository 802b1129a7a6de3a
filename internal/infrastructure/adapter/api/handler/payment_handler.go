package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/middleware"
)

// Update call outcomes
const (
	msgNoAmount         = "no amount found in notification"
	msgNoMatch          = "no matching transaction"
	msgUpdated          = "transaction updated"
	msgAlreadyFinalized = "transaction already finalized"
)

// PaymentHandler handles the payment webhook and the public payment endpoints
type PaymentHandler struct {
	payments  usecase.PaymentUseCase
	merchants usecase.MerchantUseCase
	logger    coreport.Logger
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(
	payments usecase.PaymentUseCase,
	merchants usecase.MerchantUseCase,
	logger coreport.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		payments:  payments,
		merchants: merchants,
		logger:    logger,
	}
}

// Webhook handles POST /payment/:category. The action field selects between
// creating a payment intent and matching a payment notification.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		currentMerchant(c)
		return
	}

	category, err := entity.ParsePaymentCategory(c.Param("category"))
	if err != nil {
		respondError(c, h.logger, "webhook", err)
		return
	}

	var req dto.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case dto.ActionCreate:
		amount, err := entity.ParseWholeAmount(req.Amount.String())
		if err != nil {
			respondError(c, h.logger, "create_payment", errs.NewValidationError("amount", "must be a positive whole number", err))
			return
		}
		created, err := h.payments.CreatePayment(c.Request.Context(), merchant, usecase.CreatePaymentRequest{
			Category:    category,
			MethodID:    req.PaymentMethod,
			Amount:      amount,
			Description: req.Description,
		})
		if err != nil {
			respondError(c, h.logger, "create_payment", err)
			return
		}
		respondOK(c, "transaction created", created)

	case dto.ActionUpdate:
		result, err := h.payments.HandleNotification(c.Request.Context(), merchant, usecase.NotificationRequest{
			Category: category,
			App:      req.App,
			Text:     req.Notification,
		})
		if err != nil {
			respondError(c, h.logger, "handle_notification", err)
			return
		}
		respondOK(c, notificationMessage(result), dto.NewNotificationResponse(result))

	default:
		respondError(c, h.logger, "webhook", errs.NewValidationError("action", "must be create or update", errs.ErrInvalidAction))
	}
}

func notificationMessage(result *usecase.NotificationResult) string {
	switch {
	case result == nil || !result.AmountFound:
		return msgNoAmount
	case !result.Matched:
		return msgNoMatch
	case result.AlreadyFinalized && !result.Updated:
		return msgAlreadyFinalized
	default:
		return msgUpdated
	}
}

// Status handles GET /payment/:category/status/:transactionId
func (h *PaymentHandler) Status(c *gin.Context) {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		currentMerchant(c)
		return
	}
	if _, err := entity.ParsePaymentCategory(c.Param("category")); err != nil {
		respondError(c, h.logger, "get_status", err)
		return
	}

	status, err := h.payments.GetStatus(c.Request.Context(), merchant, c.Param("transactionId"))
	if err != nil {
		respondError(c, h.logger, "get_status", err)
		return
	}
	respondOK(c, "transaction found", status)
}

// StatusByToken handles GET /payment/status/:token
func (h *PaymentHandler) StatusByToken(c *gin.Context) {
	status, err := h.payments.GetStatusByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, h.logger, "get_status_by_token", err)
		return
	}
	respondOK(c, "transaction found", status)
}

// PaymentPage handles GET /pay/:token
func (h *PaymentHandler) PaymentPage(c *gin.Context) {
	page, err := h.payments.GetPaymentPage(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, h.logger, "get_payment_page", err)
		return
	}
	respondOK(c, "transaction found", page)
}

// PaymentList handles POST /payment/list
func (h *PaymentHandler) PaymentList(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	grouped, err := h.merchants.ListEnabledMethods(c.Request.Context(), merchantID)
	if err != nil {
		respondError(c, h.logger, "payment_list", err)
		return
	}
	respondOK(c, "payment methods", dto.NewPaymentListResponse(grouped))
}

// StorePay handles POST /store/:username/pay. The category follows the
// chosen method.
func (h *PaymentHandler) StorePay(c *gin.Context) {
	var req dto.StorePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	amount, err := entity.ParseWholeAmount(req.Amount.String())
	if err != nil {
		respondError(c, h.logger, "store_pay", errs.NewValidationError("amount", "must be a positive whole number", err))
		return
	}

	created, err := h.payments.CreateStorePayment(c.Request.Context(), c.Param("username"), usecase.CreatePaymentRequest{
		MethodID:    req.PaymentMethod,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.logger, "store_pay", err)
		return
	}
	respondOK(c, "transaction created", created)
}
