package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"travelo/internal/models"
	"travelo/internal/services"
	"travelo/internal/utils"
)

type VoucherHandler struct {
	voucherService services.VoucherService
}

func NewVoucherHandler(voucherService services.VoucherService) *VoucherHandler {
	return &VoucherHandler{
		voucherService: voucherService,
	}
}

type createVoucherRequest struct {
	Code          string     `json:"code" binding:"required"`
	Type          string     `json:"type" binding:"required,oneof=percentage fixed"`
	Value         string     `json:"value" binding:"required"`
	MaxDiscount   string     `json:"max_discount"`
	MinOrderValue string     `json:"min_order_value"`
	MaxUsage      int64      `json:"max_usage"`
	ValidFrom     *time.Time `json:"valid_from"`
	ValidUntil    *time.Time `json:"valid_until"`
}

// CreateVoucher registers a new voucher. Admin only.
func (h *VoucherHandler) CreateVoucher(c *gin.Context) {
	var request createVoucherRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	value, err := models.ParseCents(request.Value)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid voucher value")
		return
	}
	voucher := &models.Voucher{
		Code:       strings.ToUpper(strings.TrimSpace(request.Code)),
		Type:       models.VoucherType(request.Type),
		Value:      value,
		MaxUsage:   request.MaxUsage,
		Active:     true,
		ValidFrom:  request.ValidFrom,
		ValidUntil: request.ValidUntil,
	}
	if request.MaxDiscount != "" {
		if voucher.MaxDiscount, err = models.ParseCents(request.MaxDiscount); err != nil {
			utils.BadRequestResponse(c, "Invalid max discount")
			return
		}
	}
	if request.MinOrderValue != "" {
		if voucher.MinOrderValue, err = models.ParseCents(request.MinOrderValue); err != nil {
			utils.BadRequestResponse(c, "Invalid minimum order value")
			return
		}
	}

	if err := h.voucherService.Create(c.Request.Context(), voucher); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Voucher created successfully", voucher)
}

// GetVoucher returns a voucher by code
func (h *VoucherHandler) GetVoucher(c *gin.Context) {
	voucher, err := h.voucherService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Voucher retrieved successfully", voucher)
}

type previewDiscountRequest struct {
	OrderTotal string `json:"order_total" binding:"required"`
}

// PreviewDiscount validates a voucher against an order total and reports the
// discount it would grant, without redeeming anything
func (h *VoucherHandler) PreviewDiscount(c *gin.Context) {
	var request previewDiscountRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	orderTotal, err := models.ParseCents(request.OrderTotal)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order total")
		return
	}

	voucher, err := h.voucherService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	if err := h.voucherService.Validate(voucher, orderTotal, time.Now()); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	discount := h.voucherService.Discount(voucher, orderTotal)
	utils.SuccessResponse(c, "Voucher applicable", gin.H{
		"code":     voucher.Code,
		"discount": discount,
		"total":    orderTotal - discount,
	})
}
