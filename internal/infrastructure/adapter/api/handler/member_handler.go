package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/dto"
)

// Paging limits of the member listings
const (
	DefaultPageSize     = 20
	MaxPageSize         = 100
	DefaultRequestLimit = 100
)

// MemberHandler serves the merchant dashboard endpoints
type MemberHandler struct {
	payments  usecase.PaymentUseCase
	merchants usecase.MerchantUseCase
	logger    coreport.Logger
}

// NewMemberHandler creates a new member handler instance
func NewMemberHandler(
	payments usecase.PaymentUseCase,
	merchants usecase.MerchantUseCase,
	logger coreport.Logger,
) *MemberHandler {
	return &MemberHandler{
		payments:  payments,
		merchants: merchants,
		logger:    logger,
	}
}

// Transactions handles GET /member/transactions?status=&limit=&offset=
func (h *MemberHandler) Transactions(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	filter := persistence.TransactionFilter{
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Limit:  queryInt(c, "limit", DefaultPageSize),
		Offset: queryInt(c, "offset", 0),
	}
	switch entity.TransactionStatus(filter.Status) {
	case "", entity.StatusPending, entity.StatusSukses, entity.StatusGagal:
	default:
		respondError(c, h.logger, "list_transactions",
			errs.NewValidationError("status", "must be pending, sukses or gagal", errs.ErrInvalidStatus))
		return
	}
	if filter.Limit <= 0 || filter.Limit > MaxPageSize {
		filter.Limit = DefaultPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	txs, total, err := h.payments.ListTransactions(c.Request.Context(), merchantID, filter)
	if err != nil {
		respondError(c, h.logger, "list_transactions", err)
		return
	}

	views := make([]dto.TransactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, dto.NewTransactionView(tx))
	}
	respondOK(c, "transactions", dto.TransactionListResponse{
		Transactions: views,
		Total:        total,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
}

// UpdateStatus handles POST /member/transactions/:id/status
func (h *MemberHandler) UpdateStatus(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	tx, err := h.payments.UpdateStatus(c.Request.Context(), merchantID, c.Param("id"), entity.TransactionStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, "update_status", err)
		return
	}
	respondOK(c, "transaction updated", dto.NewTransactionView(tx))
}

// Summary handles GET /member/summary
func (h *MemberHandler) Summary(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	summary, err := h.payments.GetSummary(c.Request.Context(), merchantID)
	if err != nil {
		respondError(c, h.logger, "get_summary", err)
		return
	}
	respondOK(c, "summary", dto.NewSummaryResponse(summary))
}

// Settings handles GET /member/settings
func (h *MemberHandler) Settings(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	merchant, err := h.merchants.GetMerchant(c.Request.Context(), merchantID)
	if err != nil {
		respondError(c, h.logger, "get_settings", err)
		return
	}
	respondOK(c, "settings", dto.NewSettingsResponse(merchant))
}

// UpdateTelegram handles PUT /member/settings/telegram
func (h *MemberHandler) UpdateTelegram(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	var input usecase.TelegramInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	merchant, err := h.merchants.UpdateTelegram(c.Request.Context(), merchantID, input)
	if err != nil {
		respondError(c, h.logger, "update_telegram", err)
		return
	}
	respondOK(c, "telegram settings saved", dto.NewSettingsResponse(merchant))
}

// UpdateStore handles PUT /member/settings/store
func (h *MemberHandler) UpdateStore(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	var input usecase.StoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	merchant, err := h.merchants.UpdateStore(c.Request.Context(), merchantID, input)
	if err != nil {
		respondError(c, h.logger, "update_store", err)
		return
	}
	respondOK(c, "store settings saved", dto.NewSettingsResponse(merchant))
}

// RotateAPIKey handles POST /member/settings/apikey
func (h *MemberHandler) RotateAPIKey(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	apiKey, err := h.merchants.RotateAPIKey(c.Request.Context(), merchantID)
	if err != nil {
		respondError(c, h.logger, "rotate_api_key", err)
		return
	}

	h.logger.Info("API key rotated", map[string]any{"merchant_id": merchantID})
	respondOK(c, "api key regenerated", dto.APIKeyResponse{APIKey: apiKey})
}

// Methods handles GET /member/methods
func (h *MemberHandler) Methods(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	methods, err := h.merchants.ListPaymentMethods(c.Request.Context(), merchantID)
	if err != nil {
		respondError(c, h.logger, "list_methods", err)
		return
	}
	views := make([]dto.MethodView, 0, len(methods))
	for _, m := range methods {
		views = append(views, dto.NewMethodView(m))
	}
	respondOK(c, "payment methods", views)
}

// AddMethod handles POST /member/methods
func (h *MemberHandler) AddMethod(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	var input usecase.PaymentMethodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	method, err := h.merchants.AddPaymentMethod(c.Request.Context(), merchantID, input)
	if err != nil {
		respondError(c, h.logger, "add_method", err)
		return
	}
	respondOK(c, "payment method added", dto.NewMethodView(method))
}

// EditMethod handles PUT /member/methods/:id
func (h *MemberHandler) EditMethod(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	var input usecase.PaymentMethodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	method, err := h.merchants.EditPaymentMethod(c.Request.Context(), merchantID, c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, "edit_method", err)
		return
	}
	respondOK(c, "payment method updated", dto.NewMethodView(method))
}

// ToggleMethod handles POST /member/methods/:id/toggle
func (h *MemberHandler) ToggleMethod(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	method, err := h.merchants.TogglePaymentMethod(c.Request.Context(), merchantID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "toggle_method", err)
		return
	}
	respondOK(c, "payment method updated", dto.NewMethodView(method))
}

// DeleteMethod handles DELETE /member/methods/:id
func (h *MemberHandler) DeleteMethod(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	if err := h.merchants.DeletePaymentMethod(c.Request.Context(), merchantID, c.Param("id")); err != nil {
		respondError(c, h.logger, "delete_method", err)
		return
	}
	respondOK(c, "payment method deleted", nil)
}

// APIRequests handles GET /member/api-requests?limit=
func (h *MemberHandler) APIRequests(c *gin.Context) {
	merchantID, ok := currentMerchant(c)
	if !ok {
		return
	}

	limit := queryInt(c, "limit", DefaultRequestLimit)
	if limit <= 0 || limit > DefaultRequestLimit {
		limit = DefaultRequestLimit
	}

	logs, err := h.merchants.ListAPIRequests(c.Request.Context(), merchantID, limit)
	if err != nil {
		respondError(c, h.logger, "list_api_requests", err)
		return
	}
	views := make([]dto.APIRequestView, 0, len(logs))
	for _, l := range logs {
		views = append(views, dto.NewAPIRequestView(l))
	}
	respondOK(c, "api requests", views)
}

// queryInt reads an integer query parameter, falling back on bad input
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
