package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"travelo/internal/middleware"
	"travelo/internal/models"
	"travelo/internal/services"
	"travelo/internal/utils"
	"travelo/internal/validators"
)

type RentalHandler struct {
	rentalService services.RentalService
}

func NewRentalHandler(rentalService services.RentalService) *RentalHandler {
	return &RentalHandler{
		rentalService: rentalService,
	}
}

func (h *RentalHandler) rentalID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid rental ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// CreateRental opens a rental request against an available vehicle
func (h *RentalHandler) CreateRental(c *gin.Context) {
	var request services.CreateRentalRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	if err := validators.ValidateCreateRental(&validators.CreateRentalInput{
		VehicleID: request.VehicleID,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
	}); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	rental, err := h.rentalService.Create(c.Request.Context(), userID, &request)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Rental created successfully", rental)
}

// GetRental returns a single rental
func (h *RentalHandler) GetRental(c *gin.Context) {
	rentalID, ok := h.rentalID(c)
	if !ok {
		return
	}

	rental, err := h.rentalService.GetByID(c.Request.Context(), rentalID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Rental retrieved successfully", rental)
}

// ListRentals returns the caller's rentals, as renter or owner
func (h *RentalHandler) ListRentals(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)

	var (
		rentals []*models.Rental
		total   int64
		err     error
	)
	if c.Query("as") == "owner" {
		rentals, total, err = h.rentalService.ListByOwner(c.Request.Context(), userID, params)
	} else {
		rentals, total, err = h.rentalService.ListByRenter(c.Request.Context(), userID, params)
	}
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Rentals retrieved successfully", rentals, &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
		Total:      total,
		Count:      len(rentals),
	})
}

type confirmRentalRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// ConfirmRental is the owner accepting the rental request
func (h *RentalHandler) ConfirmRental(c *gin.Context) {
	rentalID, ok := h.rentalID(c)
	if !ok {
		return
	}
	ownerID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request confirmRentalRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	rental, err := h.rentalService.Confirm(c.Request.Context(), rentalID, ownerID, models.PaymentMethod(request.PaymentMethod))
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Rental confirmed successfully", rental)
}

// StartDelivery marks the vehicle on its way to the renter
func (h *RentalHandler) StartDelivery(c *gin.Context) {
	rentalID, ok := h.rentalID(c)
	if !ok {
		return
	}
	ownerID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	rental, err := h.rentalService.StartDelivery(c.Request.Context(), rentalID, ownerID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Delivery started", rental)
}

type handoffRequest struct {
	PhotoURLs []string         `json:"photo_urls"`
	Location  *models.GeoPoint `json:"location"`
}

// MarkDelivered records the owner's handoff photos
func (h *RentalHandler) MarkDelivered(c *gin.Context) {
	rentalID, ok := h.rentalID(c)
	if !ok {
		return
	}
	ownerID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request handoffRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if err := validators.ValidateHandoffPhotos(request.PhotoURLs); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	rental, err := h.rentalService.MarkDelivered(c.Request.Context(), rentalID, ownerID, request.PhotoURLs, request.Location)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Delivery recorded", rental)
}

type pickupRequest struct {
	SelfieURL string           `json:"selfie_url" binding:"required"`
	Location  *models.GeoPoint `json:"location"`
}

// ConfirmPickup records the renter's selfie at pickup
func (h *RentalHandler) ConfirmPickup(c *gin.Context) {
	rentalID, ok := h.rentalID(c)
	if !ok {
		return
	}
	renterID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request pickupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	rental, err := h.rentalService.ConfirmPickup(c.Request.Context(), rentalID, renterID, request.SelfieURL, request.Location)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Pickup confirmed", rental)
}

type returnRequest struct {
	PhotoURLs []string        `json:"photo_urls" binding:"required"`
	Location  models.GeoPoint `json:"location" binding:"required"`
}

// RequestReturn records the renter's drop-off position and photos
func (h *RentalHandler) RequestReturn(c *gin.Context) {
	rentalID, ok := h.rentalID(c)
	if !ok {
		return
	}
	renterID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request returnRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if err := validators.ValidateHandoffPhotos(request.PhotoURLs); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}
	if err := validators.ValidateGeoPoint(&validators.GeoPointInput{
		Latitude:  request.Location.Latitude,
		Longitude: request.Location.Longitude,
	}); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	rental, err := h.rentalService.RequestReturn(c.Request.Context(), rentalID, renterID, request.PhotoURLs, request.Location)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Return requested", rental)
}

// ConfirmReturn is the owner collecting the vehicle; the reported positions
// must agree within the geofence tolerance
func (h *RentalHandler) ConfirmReturn(c *gin.Context) {
	rentalID, ok := h.rentalID(c)
	if !ok {
		return
	}
	ownerID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request returnRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if err := validators.ValidateGeoPoint(&validators.GeoPointInput{
		Latitude:  request.Location.Latitude,
		Longitude: request.Location.Longitude,
	}); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	rental, err := h.rentalService.ConfirmReturn(c.Request.Context(), rentalID, ownerID, request.PhotoURLs, request.Location)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Return confirmed", rental)
}

// CompleteRental settles the escrow to the owner
func (h *RentalHandler) CompleteRental(c *gin.Context) {
	rentalID, ok := h.rentalID(c)
	if !ok {
		return
	}
	ownerID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	rental, err := h.rentalService.Complete(c.Request.Context(), rentalID, ownerID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Rental completed", rental)
}

type overtimeFeeRequest struct {
	Fee string `json:"fee" binding:"required"`
}

// ProposeOvertimeFee lets the owner ask for a late-return surcharge
func (h *RentalHandler) ProposeOvertimeFee(c *gin.Context) {
	rentalID, ok := h.rentalID(c)
	if !ok {
		return
	}
	ownerID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request overtimeFeeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	fee, err := models.ParseCents(request.Fee)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid fee amount")
		return
	}

	rental, err := h.rentalService.ProposeOvertimeFee(c.Request.Context(), rentalID, ownerID, fee)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Overtime fee proposed", rental)
}

// AcceptOvertimeFee locks the surcharge from the renter's wallet
func (h *RentalHandler) AcceptOvertimeFee(c *gin.Context) {
	rentalID, ok := h.rentalID(c)
	if !ok {
		return
	}
	renterID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	rental, err := h.rentalService.AcceptOvertimeFee(c.Request.Context(), rentalID, renterID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Overtime fee accepted", rental)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// CancelRental is the renter backing out before payment
func (h *RentalHandler) CancelRental(c *gin.Context) {
	rentalID, ok := h.rentalID(c)
	if !ok {
		return
	}
	renterID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request cancelRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	rental, err := h.rentalService.Cancel(c.Request.Context(), rentalID, renterID, request.Reason)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Rental cancelled", rental)
}

// OwnerCancelRental is the owner backing out of a paid rental
func (h *RentalHandler) OwnerCancelRental(c *gin.Context) {
	rentalID, ok := h.rentalID(c)
	if !ok {
		return
	}
	ownerID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request cancelRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if err := validators.ValidateCancelReason(request.Reason); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	rental, err := h.rentalService.OwnerCancel(c.Request.Context(), rentalID, ownerID, request.Reason)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Rental cancelled by owner", rental)
}
