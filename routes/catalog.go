package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/restaurant-api/app"
	deliveryControllers "github.com/junaidrashid-git/restaurant-api/controllers/delivery"
	hoursControllers "github.com/junaidrashid-git/restaurant-api/controllers/hours"
	menuControllers "github.com/junaidrashid-git/restaurant-api/controllers/menu"
	tableControllers "github.com/junaidrashid-git/restaurant-api/controllers/table"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
)

// SetupCatalogRoutes registers the menu, categories, tables, delivery zones
// and operating hours. Reads are public; writes need an admin token.
func SetupCatalogRoutes(api *gin.RouterGroup, env *app.Env) {
	secret := env.Config.Auth.JWTSecret
	admin := []gin.HandlerFunc{middleware.ValidateToken(secret), middleware.RequireRoles(models.RoleAdmin)}

	// ─────────── Menu ───────────
	menu := api.Group("/menu")
	{
		menu.GET("", menuControllers.GetMenu(env))
		menu.GET("/:id", menuControllers.GetMenuItem(env))

		menuAdmin := menu.Group("", admin...)
		menuAdmin.POST("", menuControllers.CreateMenuItem(env))
		menuAdmin.PUT("/:id", menuControllers.UpdateMenuItem(env))
		menuAdmin.DELETE("/:id", menuControllers.DeleteMenuItem(env))
		menuAdmin.POST("/import-excel", menuControllers.ImportMenuFromExcel(env))
		menuAdmin.GET("/export-excel", menuControllers.ExportMenuToExcel(env))
	}

	// ─────────── Categories ───────────
	categories := api.Group("/categories")
	{
		categories.GET("", menuControllers.GetCategories(env))

		categoryAdmin := categories.Group("", admin...)
		categoryAdmin.POST("", menuControllers.CreateCategory(env))
		categoryAdmin.PUT("/:id", menuControllers.UpdateCategory(env))
		categoryAdmin.DELETE("/:id", menuControllers.DeleteCategory(env))
	}

	// ─────────── Tables ───────────
	tables := api.Group("/tables")
	{
		tables.GET("", middleware.OptionalToken(secret), tableControllers.GetTables(env))
		tables.GET("/:table_no", tableControllers.GetTable(env))

		tableAdmin := tables.Group("", admin...)
		tableAdmin.POST("", tableControllers.CreateTable(env))
		tableAdmin.PUT("/:table_no", tableControllers.UpdateTable(env))
		tableAdmin.DELETE("/:table_no", tableControllers.DeleteTable(env))
		tableAdmin.POST("/:table_no/qr", tableControllers.UploadQR(env))
	}

	// ─────────── Delivery zones ───────────
	zones := api.Group("/delivery-zones")
	{
		zones.GET("", middleware.OptionalToken(secret), deliveryControllers.GetZones(env))

		zoneAdmin := zones.Group("", admin...)
		zoneAdmin.POST("", deliveryControllers.CreateZone(env))
		zoneAdmin.PUT("/:id", deliveryControllers.UpdateZone(env))
		zoneAdmin.DELETE("/:id", deliveryControllers.DeleteZone(env))
	}

	// ─────────── Operating hours ───────────
	hours := api.Group("/operating-hours")
	{
		hours.GET("", hoursControllers.GetOperatingHours(env))
		hours.GET("/status", hoursControllers.GetStatus(env))
		hours.PUT("/:day", append(admin, hoursControllers.UpdateDay(env))...)
	}
}
