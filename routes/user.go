package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/restaurant-api/app"
	cartControllers "github.com/junaidrashid-git/restaurant-api/controllers/cart"
	reservationControllers "github.com/junaidrashid-git/restaurant-api/controllers/reservation"
	userControllers "github.com/junaidrashid-git/restaurant-api/controllers/user"
	"github.com/junaidrashid-git/restaurant-api/middleware"
)

// SetupUserRoutes registers the customer-facing profile, cart and reservation
// endpoints. All of them require a JWT; guests may only use the cart.
func SetupUserRoutes(api *gin.RouterGroup, env *app.Env) {
	validate := middleware.ValidateToken(env.Config.Auth.JWTSecret)

	// ──────────────── User Profile ────────────────
	users := api.Group("/users", validate, middleware.RequireRegistered())
	{
		users.GET("/me", userControllers.GetProfile(env))
		users.PUT("/me", userControllers.UpdateProfile(env))
	}

	// ──────────────── Cart ────────────────
	cart := api.Group("/cart", validate)
	{
		cart.GET("", cartControllers.GetCart(env))
		cart.POST("", cartControllers.UpdateCartItem(env))
		cart.DELETE("/:menu_id", cartControllers.DeleteCartItem(env))
		cart.DELETE("", cartControllers.ClearUserCart(env))
	}

	// ──────────────── Reservations ────────────────
	reservations := api.Group("/reservations")
	{
		reservations.GET("/available-tables", reservationControllers.AvailableTablesHandler(env))

		mine := reservations.Group("", validate, middleware.RequireRegistered())
		mine.POST("", reservationControllers.CreateReservationHandler(env))
		mine.GET("/my", reservationControllers.GetMyReservationsHandler(env))
		mine.PATCH("/:id/cancel", reservationControllers.CancelReservationHandler(env))
	}
}
