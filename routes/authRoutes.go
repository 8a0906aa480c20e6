package routes

import (
	"civicsync/controllers"
	"civicsync/middlewares"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, auth *controllers.AuthController, authMW *middlewares.Auth) {
	group := r.Group("/api/auth")
	{
		group.POST("/register", auth.RegisterUser)
		group.POST("/login", auth.LoginUser)
		group.GET("/me", authMW.Required(), auth.GetMe)
		group.POST("/logout", authMW.Required(), auth.LogoutUser)
	}
}
