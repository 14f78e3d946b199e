package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/restaurant-api/app"
	deliveryControllers "github.com/junaidrashid-git/restaurant-api/controllers/delivery"
	orderControllers "github.com/junaidrashid-git/restaurant-api/controllers/order"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
)

func SetupOrderRoutes(api *gin.RouterGroup, env *app.Env) {
	secret := env.Config.Auth.JWTSecret

	orders := api.Group("/orders", middleware.ValidateToken(secret), middleware.RequireRegistered())
	{
		// Place an order directly or from the cart
		orders.POST("", orderControllers.CreateOrderHandler(env))
		orders.POST("/checkout", orderControllers.CheckoutHandler(env))

		// Own orders; staff may read any order by id
		orders.GET("/my", orderControllers.GetMyOrdersHandler(env))
		orders.GET("/:id", orderControllers.GetOrderByIDHandler(env))

		// Back office
		orders.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleCashier), orderControllers.GetAllOrdersHandler(env))
		orders.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), orderControllers.DeleteOrderHandler(env))

		// Status changes, one axis per endpoint
		orders.PATCH("/:id/status", middleware.RequireRoles(models.RoleAdmin, models.RoleCashier), orderControllers.UpdateOrderStatusHandler(env))
		orders.PATCH("/:id/kitchen-status", middleware.RequireRoles(models.RoleKitchen, models.RoleAdmin), orderControllers.UpdateKitchenStatusHandler(env))
		orders.PATCH("/:id/payment-status", middleware.RequireRoles(models.RoleAdmin, models.RoleCashier), orderControllers.UpdatePaymentStatusHandler(env))
	}

	kitchen := api.Group("/kitchen", middleware.QueryToken(), middleware.ValidateToken(secret), middleware.RequireRoles(models.RoleKitchen, models.RoleAdmin))
	{
		kitchen.GET("/orders", orderControllers.GetKitchenOrdersHandler(env))

		// websocket endpoint for real-time order updates
		kitchen.GET("/ws", env.Hub.Handler())
	}

	delivery := api.Group("/delivery/orders", middleware.ValidateToken(secret))
	{
		delivery.GET("/my", middleware.RequireRoles(models.RoleDelivery), deliveryControllers.GetMyDeliveriesHandler(env))
		delivery.PATCH("/:id/status", middleware.RequireRoles(models.RoleDelivery, models.RoleAdmin), deliveryControllers.UpdateDeliveryStatusHandler(env))
		delivery.PUT("/:id/assign/:personId", middleware.RequireRoles(models.RoleAdmin), deliveryControllers.AssignHandler(env))
	}
}
