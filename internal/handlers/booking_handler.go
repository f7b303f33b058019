package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"travelo/internal/middleware"
	"travelo/internal/services"
	"travelo/internal/utils"
	"travelo/internal/validators"
)

type BookingHandler struct {
	bookingService services.BookingService
}

func NewBookingHandler(bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// CreateBooking creates a new booking in PENDING status
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var request services.CreateBookingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}
	request.UserID = userID

	if err := validators.ValidateCreateBooking(&validators.CreateBookingInput{
		Type:             string(request.Type),
		PartnerID:        request.PartnerID,
		ProductID:        request.ProductID,
		Units:            request.Units,
		Subtotal:         request.Subtotal,
		VoucherCode:      request.VoucherCode,
		TravelPointsUsed: request.TravelPointsUsed,
	}); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), &request)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Booking created successfully", booking)
}

// GetBooking returns a single booking
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	booking, err := h.bookingService.Get(c.Request.Context(), bookingID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking retrieved successfully", booking)
}

// ListBookings returns the caller's bookings, paginated
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	bookings, total, err := h.bookingService.ListByUser(c.Request.Context(), userID, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Bookings retrieved successfully", bookings, &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
		Total:      total,
		Count:      len(bookings),
	})
}

type updateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// UpdateBookingStatus moves a booking through its lifecycle and settles the
// partner, voucher and travel-point side effects of the move.
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	var request updateBookingStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	status, err := validators.ValidateBookingStatus(request.Status)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), bookingID, status, request.Reason)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking status updated successfully", booking)
}

// DeleteBooking cancels and removes a booking record
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	if err := h.bookingService.Remove(c.Request.Context(), bookingID); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.NoContentResponse(c)
}
