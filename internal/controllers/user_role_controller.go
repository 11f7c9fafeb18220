package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bscf_accounts/internal/middleware"
	"bscf_accounts/internal/models"
	"bscf_accounts/internal/services"
)

type UserRoleController struct {
	Roles *services.RoleService
}

type assignDriverRequest struct {
	UserID looseString `json:"user_id"`
}

// AssignDriver grants the Driver role to user_id. Repeating the call is
// answered with 200 and an explanatory message.
func (rc *UserRoleController) AssignDriver(c *gin.Context) {
	var body assignDriverRequest
	if !bindOptionalJSON(c, &body) {
		return
	}

	raw := strings.TrimSpace(string(body.UserID))
	if raw == "" {
		fail(c, http.StatusUnprocessableEntity, "User ID is required")
		return
	}
	notFound := fmt.Sprintf("User not found with ID: %s", raw)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		fail(c, http.StatusNotFound, notFound)
		return
	}

	res, err := rc.Roles.AssignRole(c.Request.Context(), middleware.CurrentUser(c).ID, uint(id), models.RoleDriver)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, notFound)
		return
	case errors.Is(err, services.ErrRoleNotFound):
		fail(c, http.StatusNotFound, "Driver role not found.")
		return
	case err != nil:
		if asValidation(c, err) {
			return
		}
		internalError(c, err, "An unexpected error occurred")
		return
	}

	ur := res.UserRole
	resp := gin.H{
		"success": true,
		"data": gin.H{
			"id":      ur.ID,
			"user_id": ur.UserID,
			"role_id": ur.RoleID,
			"user":    prepareUserResponse(ur.User),
			"role":    ur.Role,
		},
	}
	if res.AlreadyAssigned {
		resp["message"] = "User is already assigned as a Driver."
	}
	c.JSON(http.StatusOK, resp)
}
