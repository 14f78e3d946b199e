package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/restaurant-api/app"
	paymentControllers "github.com/junaidrashid-git/restaurant-api/controllers/payment"
	"github.com/junaidrashid-git/restaurant-api/middleware"
)

func SetupPaymentRoutes(api *gin.RouterGroup, env *app.Env) {
	payment := api.Group("/payments")
	{
		// Payment creation endpoint
		payment.POST("/orders/:id",
			middleware.ValidateToken(env.Config.Auth.JWTSecret),
			middleware.RequireRegistered(),
			paymentControllers.CreatePaymentHandler(env),
		)

		// Webhook endpoint: middleware handles sandbox/prod verification
		payment.POST("/webhook",
			middleware.TelrWebhookAuth(env.Config.Telr),
			paymentControllers.WebhookHandler(env),
		)
	}
}
