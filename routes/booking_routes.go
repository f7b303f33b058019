package routes

import (
	"github.com/gin-gonic/gin"

	"travelo/internal/handlers"
	"travelo/internal/middleware"
)

// SetupBookingRoutes sets up routes for booking lifecycle operations
func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler, voucherHandler *handlers.VoucherHandler, jwtSecret string) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthRequired(jwtSecret))
	{
		bookings.POST("/", bookingHandler.CreateBooking)
		bookings.GET("/", bookingHandler.ListBookings)
		bookings.GET("/:id", bookingHandler.GetBooking)
		bookings.PUT("/:id/status", bookingHandler.UpdateBookingStatus)
		bookings.DELETE("/:id", bookingHandler.DeleteBooking)
	}

	vouchers := r.Group("/vouchers")
	vouchers.Use(middleware.AuthRequired(jwtSecret))
	{
		vouchers.GET("/:code", voucherHandler.GetVoucher)
		vouchers.POST("/:code/preview", voucherHandler.PreviewDiscount)
	}

	admin := r.Group("/admin/vouchers")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("/", voucherHandler.CreateVoucher)
	}
}
