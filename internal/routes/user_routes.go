package routes

import (
	"github.com/gin-gonic/gin"

	"bscf_accounts/internal/controllers"
	"bscf_accounts/internal/middleware"
	"bscf_accounts/internal/models"
)

// UserRoutes mounts the user directory. Everything except
// has_virtual_account is for admins only.
func UserRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, uc *controllers.UserController) {
	users := r.Group("/users")
	users.Use(requireAuth)
	{
		users.GET("/has_virtual_account", uc.HasVirtualAccount)
	}

	admin := users.Group("")
	admin.Use(middleware.RequireRole(models.RoleAdmin, "Unauthorized access"))
	{
		admin.GET("", uc.ListUsers)
		admin.GET("/by_role", uc.ListByRole)
		admin.GET("/:id", uc.GetUser)
	}
}
