package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/auth"
)

// SetupAuthRoutes registers all "/api/auth/*" endpoints.
func SetupAuthRoutes(api *gin.RouterGroup, env *app.Env, google auth.GoogleVerifier) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", auth.RegisterHandler(env))
		authGroup.POST("/login", auth.LoginHandler(env))
		authGroup.POST("/guest", auth.CreateGuestUser(env))

		// Google login needs Firebase credentials
		if google != nil {
			authGroup.POST("/google", auth.GoogleLoginHandler(env, google))
		}
	}
}
