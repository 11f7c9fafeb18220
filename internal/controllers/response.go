package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"bscf_accounts/internal/middleware"
	"bscf_accounts/internal/models"
	"bscf_accounts/internal/services"
)

// looseString accepts a JSON string, number or null. Form clients send
// coordinates and years either way.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
	default:
		*s = looseString(b)
	}
	return nil
}

// bindOptionalJSON decodes the body into obj, treating an empty body as {}.
// It answers 400 and returns false on malformed JSON.
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return false
	}
	return true
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func failValidation(c *gin.Context, verr *services.ValidationError) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "errors": verr.Messages})
}

func badRequest(c *gin.Context, err error) {
	fail(c, http.StatusBadRequest, err.Error())
}

// internalError logs err, reports it to Sentry and answers with msg only.
func internalError(c *gin.Context, err error, msg string) {
	logrus.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"path":       c.FullPath(),
	}).WithError(err).Error(msg)
	sentry.CaptureException(err)
	fail(c, http.StatusInternalServerError, msg)
}

// asValidation reports a *services.ValidationError and returns true when err is one.
func asValidation(c *gin.Context, err error) bool {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		failValidation(c, verr)
		return true
	}
	return false
}

func prepareUserResponse(user *models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"first_name":   user.FirstName,
		"middle_name":  user.MiddleName,
		"last_name":    user.LastName,
		"phone_number": user.PhoneNumber,
		"email":        user.Email,
		"created_at":   user.CreatedAt,
		"updated_at":   user.UpdatedAt,
	}
}

// prepareUserDetail adds whatever associations are loaded on user.
func prepareUserDetail(user *models.User) gin.H {
	out := prepareUserResponse(user)
	out["roles"] = user.RoleNames()
	if user.UserProfile != nil {
		out["user_profile"] = prepareProfileResponse(user.UserProfile)
	}
	if user.Business != nil {
		out["business"] = user.Business
	}
	if user.Vehicle != nil {
		out["vehicle"] = user.Vehicle
	}
	if user.VirtualAccount != nil {
		out["virtual_account"] = user.VirtualAccount
	}
	return out
}

func prepareProfileResponse(p *models.UserProfile) gin.H {
	out := gin.H{
		"id":              p.ID,
		"user_id":         p.UserID,
		"address_id":      p.AddressID,
		"date_of_birth":   p.DateOfBirth,
		"nationality":     p.Nationality,
		"occupation":      p.Occupation,
		"source_of_funds": p.SourceOfFunds,
		"gender":          p.Gender,
		"kyc_status":      p.KYCStatus,
		"verified_at":     p.VerifiedAt,
		"verified_by_id":  p.VerifiedByID,
		"fayda_id":        p.FaydaID,
		"created_at":      p.CreatedAt,
		"updated_at":      p.UpdatedAt,
	}
	if p.Address != nil {
		out["address"] = prepareAddressResponse(p.Address)
	}
	return out
}

func prepareAddressResponse(a *models.Address) gin.H {
	out := gin.H{
		"id":           a.ID,
		"city":         a.City,
		"sub_city":     a.SubCity,
		"woreda":       a.Woreda,
		"latitude":     a.Latitude,
		"longitude":    a.Longitude,
		"house_number": a.HouseNumber,
		"created_at":   a.CreatedAt,
		"updated_at":   a.UpdatedAt,
	}
	if loc, err := a.LocationGeoJSON(); err == nil && loc != "" {
		out["location"] = json.RawMessage(loc)
	}
	return out
}
