package routes

import (
	"github.com/gin-gonic/gin"

	"bscf_accounts/internal/controllers"
)

// AuthRoutes mounts the public endpoints under /auth and at the root.
func AuthRoutes(r *gin.Engine, ac *controllers.AuthController) {
	for _, g := range []*gin.RouterGroup{r.Group("/auth"), r.Group("/")} {
		g.POST("/signup", ac.SignupUser)
		g.POST("/driver/signup", ac.SignupDriver)
		g.POST("/login", ac.LoginUser)
		g.POST("/admin/login", ac.LoginAdmin)
	}
}
