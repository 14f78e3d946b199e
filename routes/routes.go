package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/auth"
	"github.com/junaidrashid-git/restaurant-api/uploads"
)

// SetupRoutes is the single entry-point that wires every /api group onto r.
// google may be nil, in which case Google sign-in is not offered.
func SetupRoutes(r *gin.Engine, env *app.Env, google auth.GoogleVerifier) {
	// Serve uploaded images
	r.Static(uploads.MountPath, env.Config.Uploads.Dir)

	api := r.Group("/api")

	// 1️⃣ Public auth routes (no middleware)
	SetupAuthRoutes(api, env, google)

	// 2️⃣ Menu, tables, zones and opening hours (public reads, admin writes)
	SetupCatalogRoutes(api, env)

	// 3️⃣ Customer routes (JWT-protected)
	SetupUserRoutes(api, env)

	// 4️⃣ Orders, kitchen and delivery
	SetupOrderRoutes(api, env)

	// 5️⃣ Telr payments
	SetupPaymentRoutes(api, env)

	// 6️⃣ Back office (admin only)
	SetupAdminRoutes(api, env)
}
