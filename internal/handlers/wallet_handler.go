package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelo/internal/middleware"
	"travelo/internal/models"
	"travelo/internal/services"
	"travelo/internal/utils"
)

type WalletHandler struct {
	walletService services.WalletService
}

func NewWalletHandler(walletService services.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// GetWallet returns the caller's wallet, creating it on first access
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	wallet, err := h.walletService.GetWallet(c.Request.Context(), userID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Wallet retrieved successfully", wallet)
}

type depositRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

// Deposit tops up the caller's wallet balance
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request depositRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	amount, err := models.ParseCents(request.Amount)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid deposit amount")
		return
	}

	reference := "manual_" + uuid.NewString()
	if err := h.walletService.Deposit(c.Request.Context(), userID, amount, reference, request.Description); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	wallet, err := h.walletService.GetWallet(c.Request.Context(), userID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Deposit recorded successfully", wallet)
}

// GetTransaction resolves a ledger entry by its unique reference
func (h *WalletHandler) GetTransaction(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		utils.BadRequestResponse(c, "Transaction reference required")
		return
	}

	txn, err := h.walletService.GetTransaction(c.Request.Context(), reference)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Transaction retrieved successfully", txn)
}
