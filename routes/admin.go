package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/restaurant-api/app"
	cartControllers "github.com/junaidrashid-git/restaurant-api/controllers/cart"
	inventoryControllers "github.com/junaidrashid-git/restaurant-api/controllers/inventory"
	reportControllers "github.com/junaidrashid-git/restaurant-api/controllers/report"
	reservationControllers "github.com/junaidrashid-git/restaurant-api/controllers/reservation"
	staffControllers "github.com/junaidrashid-git/restaurant-api/controllers/staff"
	userControllers "github.com/junaidrashid-git/restaurant-api/controllers/user"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
)

// SetupAdminRoutes registers the back-office endpoints. Requires an admin JWT
// except where a route widens it to cashiers.
func SetupAdminRoutes(api *gin.RouterGroup, env *app.Env) {
	validate := middleware.ValidateToken(env.Config.Auth.JWTSecret)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	// ─────────── User Management ───────────
	adminGroup := api.Group("/admin", validate, adminOnly)
	{
		adminGroup.GET("/users", userControllers.GetAllUsers(env))
		adminGroup.PATCH("/users/:id/role", userControllers.UpdateUserRole(env))
		adminGroup.GET("/carts/:user_id", cartControllers.GetAdminUserCart(env))
	}

	// ─────────── Reservations ───────────
	reservations := api.Group("/reservations", validate, middleware.RequireRoles(models.RoleAdmin, models.RoleCashier))
	{
		reservations.GET("", reservationControllers.GetReservationsHandler(env))
		reservations.PATCH("/:id/status", reservationControllers.UpdateReservationStatusHandler(env))
	}

	// ─────────── Inventory ───────────
	ingredients := api.Group("/ingredients", validate, adminOnly)
	{
		ingredients.GET("", inventoryControllers.GetIngredients(env))
		ingredients.GET("/low-stock", inventoryControllers.GetLowStock(env))
		ingredients.GET("/:id", inventoryControllers.GetIngredient(env))
		ingredients.POST("", inventoryControllers.CreateIngredient(env))
		ingredients.PUT("/:id", inventoryControllers.UpdateIngredient(env))
		ingredients.DELETE("/:id", inventoryControllers.DeleteIngredient(env))
	}
	suppliers := api.Group("/suppliers", validate, adminOnly)
	{
		suppliers.GET("", inventoryControllers.GetSuppliers(env))
		suppliers.POST("", inventoryControllers.CreateSupplier(env))
		suppliers.PUT("/:id", inventoryControllers.UpdateSupplier(env))
		suppliers.DELETE("/:id", inventoryControllers.DeleteSupplier(env))
	}
	purchases := api.Group("/purchases", validate, adminOnly)
	{
		purchases.GET("", inventoryControllers.GetPurchases(env))
		purchases.POST("", inventoryControllers.CreatePurchase(env))
	}

	// ─────────── Staff & Attendance ───────────
	staff := api.Group("/staff", validate, adminOnly)
	{
		staff.GET("", staffControllers.GetStaff(env))
		staff.GET("/:id", staffControllers.GetStaffMember(env))
		staff.POST("", staffControllers.CreateStaff(env))
		staff.PUT("/:id", staffControllers.UpdateStaff(env))
		staff.DELETE("/:id", staffControllers.DeleteStaff(env))
		staff.GET("/:id/attendance", staffControllers.GetStaffAttendance(env))
	}
	clock := api.Group("/staff", validate, middleware.RequireRoles(models.RoleAdmin, models.RoleCashier))
	{
		clock.POST("/:id/check-in", staffControllers.CheckInHandler(env))
		clock.POST("/:id/check-out", staffControllers.CheckOutHandler(env))
	}
	api.GET("/attendance", validate, adminOnly, staffControllers.GetAttendanceByDate(env))

	// ─────────── Reports ───────────
	reports := api.Group("/reports", validate, adminOnly)
	{
		reports.GET("/sales", reportControllers.GetSalesReport(env))
		reports.GET("/sales/export", reportControllers.ExportSalesReport(env))
	}
}
