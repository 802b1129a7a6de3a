package handler

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/dto"
)

// ToolsHandler proxies the account lookup provider
type ToolsHandler struct {
	merchants usecase.MerchantUseCase
	logger    coreport.Logger
}

// NewToolsHandler creates a new tools handler instance
func NewToolsHandler(merchants usecase.MerchantUseCase, logger coreport.Logger) *ToolsHandler {
	return &ToolsHandler{merchants: merchants, logger: logger}
}

// BankList handles POST /tools/bank-list
func (h *ToolsHandler) BankList(c *gin.Context) {
	banks, err := h.merchants.ListBanks(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "bank_list", err)
		return
	}
	respondOK(c, "bank list", banks)
}

// CheckBank handles POST /tools/check-bank
func (h *ToolsHandler) CheckBank(c *gin.Context) {
	var req dto.CheckBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	holder, err := h.merchants.CheckBankAccount(c.Request.Context(), req.BankCode, req.AccountNumber)
	if err != nil {
		respondError(c, h.logger, "check_bank", err)
		return
	}
	respondOK(c, "account found", holder)
}

// CheckEwallet handles POST /tools/check-ewallet
func (h *ToolsHandler) CheckEwallet(c *gin.Context) {
	var req dto.CheckEwalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	holder, err := h.merchants.CheckEwalletAccount(c.Request.Context(), req.Provider, req.PhoneNumber)
	if err != nil {
		respondError(c, h.logger, "check_ewallet", err)
		return
	}
	respondOK(c, "account found", holder)
}
