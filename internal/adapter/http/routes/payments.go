package routes

import (
	"pix_checkout/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathPixPayments = "/pix-payments"
)

func addPaymentRoutes(rg *gin.RouterGroup, paymentHandler *handlers.PixPaymentHandler) {
	payments := rg.Group(PathPixPayments)
	{
		payments.POST("", paymentHandler.CreatePixPayment)
		payments.GET("/:id", paymentHandler.CheckPayment)
		payments.GET("/:id/events", paymentHandler.WatchPayment)
	}
}
