package routes

import (
	"github.com/gin-gonic/gin"

	"travelo/internal/handlers"
	"travelo/internal/middleware"
)

// SetupPaymentRoutes sets up payment and wallet routes
func SetupPaymentRoutes(r *gin.RouterGroup, paymentHandler *handlers.PaymentHandler, walletHandler *handlers.WalletHandler, jwtSecret string) {
	// Gateway callbacks carry their own signatures instead of a bearer token
	webhooks := r.Group("/webhooks/payments")
	{
		webhooks.POST("/:gateway", paymentHandler.HandleCallback)
	}

	payments := r.Group("/payments")
	payments.Use(middleware.AuthRequired(jwtSecret))
	{
		payments.POST("/", paymentHandler.CreatePayment)
		payments.GET("/:order_id", paymentHandler.GetPayment)
	}

	wallet := r.Group("/wallet")
	wallet.Use(middleware.AuthRequired(jwtSecret))
	{
		wallet.GET("/", walletHandler.GetWallet)
		wallet.POST("/deposit", walletHandler.Deposit)
	}

	admin := r.Group("/admin/payments")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("/:order_id/refund", paymentHandler.RefundPayment)
		admin.GET("/transactions/:reference", walletHandler.GetTransaction)
	}
}
