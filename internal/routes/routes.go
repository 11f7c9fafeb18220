package routes

import (
	"io"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bscf_accounts/internal/controllers"
	"bscf_accounts/internal/middleware"
	"bscf_accounts/internal/services"
	"bscf_accounts/internal/token"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	DB            *gorm.DB
	Tokens        *token.Service
	Registrations *services.RegistrationService
	Auth          *services.AuthService
	Roles         *services.RoleService
	Profiles      *services.ProfileService
	Users         *services.UserService
	// AccessLog receives one line per request; nil disables access logging.
	AccessLog io.Writer
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if d.AccessLog != nil {
		r.Use(ginlog.SetLogger(ginlog.WithWriter(d.AccessLog), ginlog.WithUTC(true)))
	}

	requireAuth := middleware.RequireAuth(d.Tokens, d.Users)

	HealthRoutes(r, &controllers.HealthController{DB: d.DB})
	AuthRoutes(r, &controllers.AuthController{Registrations: d.Registrations, Auth: d.Auth})
	UserProfileRoutes(r, requireAuth, &controllers.UserProfileController{Profiles: d.Profiles})
	UserRoleRoutes(r, requireAuth, &controllers.UserRoleController{Roles: d.Roles})
	UserRoutes(r, requireAuth, &controllers.UserController{Users: d.Users})

	return r
}

func HealthRoutes(r *gin.Engine, hc *controllers.HealthController) {
	r.GET("/up", hc.Up)
}
