package routes

import (
	"github.com/gin-gonic/gin"

	"bscf_accounts/internal/controllers"
	"bscf_accounts/internal/middleware"
	"bscf_accounts/internal/models"
)

func UserProfileRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, pc *controllers.UserProfileController) {
	r.GET("/user_profile", requireAuth, pc.ShowCurrent)

	profiles := r.Group("/user_profiles")
	profiles.Use(requireAuth)
	{
		profiles.GET("/:id", pc.Show)
		profiles.PUT("/:id", pc.Update)
		profiles.PUT("/:id/update_kyc",
			middleware.RequireRole(models.RoleAdmin, "You are not authorized to perform this action."),
			pc.UpdateKYC)
	}
}
