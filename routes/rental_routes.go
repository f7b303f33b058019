package routes

import (
	"github.com/gin-gonic/gin"

	"travelo/internal/handlers"
	"travelo/internal/middleware"
)

// SetupRentalRoutes sets up routes for the vehicle rental workflow
func SetupRentalRoutes(r *gin.RouterGroup, rentalHandler *handlers.RentalHandler, jwtSecret string) {
	rentals := r.Group("/rentals")
	rentals.Use(middleware.AuthRequired(jwtSecret))
	{
		rentals.POST("/", rentalHandler.CreateRental)
		rentals.GET("/", rentalHandler.ListRentals)
		rentals.GET("/:id", rentalHandler.GetRental)

		// Renter side of the handoff
		rentals.PUT("/:id/pickup", rentalHandler.ConfirmPickup)
		rentals.PUT("/:id/return", rentalHandler.RequestReturn)
		rentals.PUT("/:id/overtime/accept", rentalHandler.AcceptOvertimeFee)
		rentals.PUT("/:id/cancel", rentalHandler.CancelRental)

		// Owner side of the handoff
		rentals.PUT("/:id/confirm", rentalHandler.ConfirmRental)
		rentals.PUT("/:id/deliver", rentalHandler.StartDelivery)
		rentals.PUT("/:id/delivered", rentalHandler.MarkDelivered)
		rentals.PUT("/:id/return/confirm", rentalHandler.ConfirmReturn)
		rentals.PUT("/:id/complete", rentalHandler.CompleteRental)
		rentals.PUT("/:id/overtime", rentalHandler.ProposeOvertimeFee)
		rentals.PUT("/:id/owner-cancel", rentalHandler.OwnerCancelRental)
	}
}
