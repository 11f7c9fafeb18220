package routes

import (
	"github.com/gin-gonic/gin"

	"bscf_accounts/internal/controllers"
)

func UserRoleRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, rc *controllers.UserRoleController) {
	userRoles := r.Group("/user_roles")
	userRoles.Use(requireAuth)
	{
		userRoles.POST("/assign_driver", rc.AssignDriver)
	}
}
