package routes

import (
	"civicsync/controllers"
	"civicsync/middlewares"

	"github.com/gin-gonic/gin"
)

func UserRoutes(r *gin.Engine, auth *controllers.AuthController, authMW *middlewares.Auth) {
	users := r.Group("/api/users", authMW.Required())
	{
		users.PATCH("/me", auth.UpdateSettings)
	}
}
