package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bscf_accounts/internal/middleware"
	"bscf_accounts/internal/services"
)

type UserProfileController struct {
	Profiles *services.ProfileService
}

type profileUpdateRequest struct {
	UserProfile *struct {
		DateOfBirth   *string `json:"date_of_birth"`
		Nationality   *string `json:"nationality"`
		Occupation    *string `json:"occupation"`
		SourceOfFunds *string `json:"source_of_funds"`
		Gender        *string `json:"gender"`
		FaydaID       *string `json:"fayda_id"`
	} `json:"user_profile"`
}

type kycRequest struct {
	KYCStatus string `json:"kyc_status"`
}

// ShowCurrent returns the caller's own profile.
func (pc *UserProfileController) ShowCurrent(c *gin.Context) {
	profile, err := pc.Profiles.ForUser(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		pc.profileFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user_profile": prepareProfileResponse(profile)})
}

func (pc *UserProfileController) Show(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}
	profile, err := pc.Profiles.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		pc.profileFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user_profile": prepareProfileResponse(profile)})
}

func (pc *UserProfileController) Update(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}
	var body profileUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if body.UserProfile == nil {
		badRequest(c, missingParam("user_profile"))
		return
	}

	p := body.UserProfile
	profile, err := pc.Profiles.Update(c.Request.Context(), middleware.CurrentUser(c), id, services.ProfileUpdate{
		DateOfBirth:   p.DateOfBirth,
		Nationality:   p.Nationality,
		Occupation:    p.Occupation,
		SourceOfFunds: p.SourceOfFunds,
		Gender:        p.Gender,
		FaydaID:       p.FaydaID,
	})
	if err != nil {
		pc.profileFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user_profile": prepareProfileResponse(profile)})
}

// UpdateKYC records an admin's KYC decision. The route is Admin-gated.
func (pc *UserProfileController) UpdateKYC(c *gin.Context) {
	var body kycRequest
	if !bindOptionalJSON(c, &body) {
		return
	}

	// a malformed id matches no profile; a missing status is reported first
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	profile, err := pc.Profiles.UpdateKYC(c.Request.Context(), middleware.CurrentUser(c), uint(id), body.KYCStatus)
	if err != nil {
		pc.profileFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": prepareProfileResponse(profile)})
}

func (pc *UserProfileController) profileFailed(c *gin.Context, err error) {
	if asValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrKYCStatusRequired):
		fail(c, http.StatusUnprocessableEntity, "KYC status is required")
	case errors.Is(err, services.ErrProfileNotFound):
		fail(c, http.StatusNotFound, "Profile not found")
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, "You are not authorized to perform this action.")
	default:
		internalError(c, err, "An unexpected error occurred")
	}
}

func profileID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusNotFound, "Profile not found")
		return 0, false
	}
	return uint(id), true
}
