package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bscf_accounts/internal/middleware"
	"bscf_accounts/internal/models"
	"bscf_accounts/internal/services"
)

type UserController struct {
	Users *services.UserService
}

func (uc *UserController) ListUsers(c *gin.Context) {
	users, err := uc.Users.List(c.Request.Context())
	if err != nil {
		internalError(c, err, "Error listing users")
		return
	}
	out := make([]gin.H, 0, len(users))
	for i := range users {
		u := prepareUserResponse(&users[i])
		u["roles"] = users[i].RoleNames()
		out = append(out, u)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": out})
}

func (uc *UserController) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	user, err := uc.Users.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		internalError(c, err, "Error loading user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": prepareUserDetail(user)})
}

// ListByRole lists Drivers with their vehicle or Users with their business.
// The association key is always present, null when missing.
func (uc *UserController) ListByRole(c *gin.Context) {
	role := c.Query("role")
	users, err := uc.Users.ByRole(c.Request.Context(), role)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRole) {
			fail(c, http.StatusBadRequest, "Invalid role specified")
			return
		}
		internalError(c, err, "Error listing users")
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		u := &users[i]
		row := prepareUserResponse(u)
		row["roles"] = u.RoleNames()
		if u.UserProfile != nil {
			row["user_profile"] = prepareProfileResponse(u.UserProfile)
		}
		if role == models.RoleDriver {
			row["vehicle"] = u.Vehicle
		} else {
			row["business"] = u.Business
		}
		out = append(out, row)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": out})
}

// HasVirtualAccount answers for the caller only.
func (uc *UserController) HasVirtualAccount(c *gin.Context) {
	ok, err := uc.Users.HasVirtualAccount(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		internalError(c, err, "Error checking virtual account")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "has_virtual_account": ok})
}
