package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"travelo/internal/middleware"
	"travelo/internal/models"
	"travelo/internal/services"
	"travelo/internal/utils"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

type createPaymentRequest struct {
	RentalID string `json:"rental_id" binding:"required"`
	Method   string `json:"method" binding:"required"`
	Gateway  string `json:"gateway" binding:"required"`
}

// CreatePayment opens a gateway order for a confirmed rental
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var request createPaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	rentalID, err := primitive.ObjectIDFromHex(request.RentalID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid rental ID")
		return
	}

	payment, order, err := h.paymentService.CreatePayment(c.Request.Context(), rentalID, userID, models.PaymentMethod(request.Method), request.Gateway)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Payment created successfully", gin.H{
		"payment": payment,
		"order":   order,
	})
}

// signatureHeaders maps a gateway to the header its IPN signature arrives in.
var signatureHeaders = map[string]string{
	"razorpay": "X-Razorpay-Signature",
	"stripe":   "Stripe-Signature",
}

// HandleCallback receives gateway payment notifications. The raw body is
// passed through untouched because the signature covers the exact bytes.
func (h *PaymentHandler) HandleCallback(c *gin.Context) {
	gateway := c.Param("gateway")
	header, ok := signatureHeaders[gateway]
	if !ok {
		utils.BadRequestResponse(c, "Unknown payment gateway")
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read callback body")
		return
	}

	payment, err := h.paymentService.HandleCallback(c.Request.Context(), gateway, payload, c.GetHeader(header))
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Callback processed", gin.H{"order_id": payment.OrderID, "status": payment.Status})
}

// GetPayment returns a payment by order id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetByOrderID(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment retrieved successfully", payment)
}

type refundRequest struct {
	Amount string `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

// RefundPayment sends money back through the gateway. Admin only.
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	var request refundRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	amount, err := models.ParseCents(request.Amount)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid refund amount")
		return
	}

	payment, err := h.paymentService.Refund(c.Request.Context(), c.Param("order_id"), amount, request.Reason)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment refunded successfully", payment)
}
