package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"bscf_accounts/internal/models"
	"bscf_accounts/internal/services"
	"bscf_accounts/internal/token"
)

const currentUserKey = "current_user"

// UserLoader fetches a user together with its roles.
type UserLoader interface {
	FindWithRoles(ctx context.Context, id uint) (*models.User, error)
}

// RequireAuth decodes the bearer token and loads its user from the store.
// Roles are always the stored ones; role claims inside the token are ignored.
func RequireAuth(tokens *token.Service, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			notAuthenticated(c)
			return
		}

		claims, err := tokens.Decode(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
		if err != nil {
			logrus.WithField("request_id", GetRequestID(c)).WithError(err).Debug("rejected bearer token")
			notAuthenticated(c)
			return
		}

		user, err := users.FindWithRoles(c.Request.Context(), claims.User.ID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				notAuthenticated(c)
				return
			}
			logrus.WithField("request_id", GetRequestID(c)).WithError(err).Error("failed to load authenticated user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireRole must run after RequireAuth. Callers without role get a 401
// carrying message.
func RequireRole(role, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": message})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user loaded by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func notAuthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authenticated"})
}
