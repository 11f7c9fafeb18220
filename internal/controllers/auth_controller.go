package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bscf_accounts/internal/services"
)

type AuthController struct {
	Registrations *services.RegistrationService
	Auth          *services.AuthService
}

type addressParams struct {
	City        string      `json:"city"`
	SubCity     string      `json:"sub_city"`
	Woreda      string      `json:"woreda"`
	Latitude    looseString `json:"latitude"`
	Longitude   looseString `json:"longitude"`
	HouseNumber *string     `json:"house_number"`
}

// userParams is the "user" object of both signup variants. Profile and
// business fields travel in it too.
type userParams struct {
	FirstName            string  `json:"first_name"`
	MiddleName           string  `json:"middle_name"`
	LastName             string  `json:"last_name"`
	PhoneNumber          string  `json:"phone_number"`
	Email                *string `json:"email"`
	Password             string  `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`

	DateOfBirth   string  `json:"date_of_birth"`
	Nationality   string  `json:"nationality"`
	Occupation    string  `json:"occupation"`
	SourceOfFunds string  `json:"source_of_funds"`
	Gender        string  `json:"gender"`
	KYCStatus     string  `json:"kyc_status"`
	FaydaID       *string `json:"fayda_id"`

	BusinessName string `json:"business_name"`
	TinNumber    string `json:"tin_number"`
	BusinessType string `json:"business_type"`
}

type vehicleParams struct {
	PlateNumber string      `json:"plate_number"`
	VehicleType string      `json:"vehicle_type"`
	Brand       string      `json:"brand"`
	Model       string      `json:"model"`
	Year        looseString `json:"year"`
	Color       string      `json:"color"`
}

type signupRequest struct {
	User    *userParams    `json:"user"`
	Address *addressParams `json:"address"`
	Vehicle *vehicleParams `json:"vehicle"`
}

type loginRequest struct {
	Auth *struct {
		PhoneNumber string `json:"phone_number"`
		Password    string `json:"password"`
	} `json:"auth"`
}

func missingParam(names ...string) error {
	return fmt.Errorf("param is missing or the value is empty: %s", strings.Join(names, ", "))
}

func (r *signupRequest) require(vehicle bool) error {
	var missing []string
	if r.User == nil {
		missing = append(missing, "user")
	}
	if r.Address == nil {
		missing = append(missing, "address")
	}
	if vehicle && r.Vehicle == nil {
		missing = append(missing, "vehicle")
	}
	if len(missing) > 0 {
		return missingParam(missing...)
	}
	return nil
}

func (p *userParams) user() services.UserInput {
	return services.UserInput{
		FirstName:            p.FirstName,
		MiddleName:           p.MiddleName,
		LastName:             p.LastName,
		PhoneNumber:          p.PhoneNumber,
		Email:                p.Email,
		Password:             p.Password,
		PasswordConfirmation: p.PasswordConfirmation,
	}
}

func (p *userParams) profile() services.ProfileInput {
	return services.ProfileInput{
		DateOfBirth:   p.DateOfBirth,
		Nationality:   p.Nationality,
		Occupation:    p.Occupation,
		SourceOfFunds: p.SourceOfFunds,
		Gender:        p.Gender,
		KYCStatus:     p.KYCStatus,
		FaydaID:       p.FaydaID,
	}
}

func (p *addressParams) input() services.AddressInput {
	return services.AddressInput{
		City:        p.City,
		SubCity:     p.SubCity,
		Woreda:      p.Woreda,
		Latitude:    string(p.Latitude),
		Longitude:   string(p.Longitude),
		HouseNumber: p.HouseNumber,
	}
}

// SignupUser registers a user, or a business owner when business_name is sent.
func (ac *AuthController) SignupUser(c *gin.Context) {
	var body signupRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if err := body.require(false); err != nil {
		badRequest(c, err)
		return
	}

	in := services.SignupInput{
		User:    body.User.user(),
		Profile: body.User.profile(),
		Address: body.Address.input(),
	}
	if strings.TrimSpace(body.User.BusinessName) != "" {
		in.Business = &services.BusinessInput{
			BusinessName: body.User.BusinessName,
			TinNumber:    body.User.TinNumber,
			BusinessType: body.User.BusinessType,
		}
	}

	reg, err := ac.Registrations.RegisterUser(c.Request.Context(), in)
	if err != nil {
		if asValidation(c, err) {
			return
		}
		internalError(c, err, "An unexpected error occurred")
		return
	}

	resp := gin.H{
		"success":         true,
		"user":            prepareUserResponse(reg.User),
		"user_profile":    prepareProfileResponse(reg.Profile),
		"address":         prepareAddressResponse(reg.Address),
		"virtual_account": reg.VirtualAccount,
	}
	if reg.Business != nil {
		resp["business"] = reg.Business
	}
	c.JSON(http.StatusCreated, resp)
}

// SignupDriver registers a driver together with the vehicle.
func (ac *AuthController) SignupDriver(c *gin.Context) {
	var body signupRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if err := body.require(true); err != nil {
		badRequest(c, err)
		return
	}

	reg, err := ac.Registrations.RegisterDriver(c.Request.Context(), services.DriverSignupInput{
		User:    body.User.user(),
		Profile: body.User.profile(),
		Address: body.Address.input(),
		Vehicle: services.VehicleInput{
			PlateNumber: body.Vehicle.PlateNumber,
			VehicleType: body.Vehicle.VehicleType,
			Brand:       body.Vehicle.Brand,
			Model:       body.Vehicle.Model,
			Year:        string(body.Vehicle.Year),
			Color:       body.Vehicle.Color,
		},
	})
	if err != nil {
		if asValidation(c, err) {
			return
		}
		if errors.Is(err, services.ErrRoleUnavailable) {
			internalError(c, err, "Driver role could not be found or created.")
			return
		}
		internalError(c, err, "An unexpected error occurred")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"user":            prepareUserResponse(reg.User),
		"user_profile":    prepareProfileResponse(reg.Profile),
		"address":         prepareAddressResponse(reg.Address),
		"vehicle":         reg.Vehicle,
		"role":            reg.Role,
		"virtual_account": reg.VirtualAccount,
	})
}

func (ac *AuthController) LoginUser(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if body.Auth == nil {
		badRequest(c, missingParam("auth"))
		return
	}

	session, err := ac.Auth.Login(c.Request.Context(), body.Auth.PhoneNumber, body.Auth.Password)
	if err != nil {
		ac.loginFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"token":        session.Token,
		"user":         prepareUserResponse(session.User),
		"user_profile": prepareProfileResponse(session.Profile),
	})
}

func (ac *AuthController) LoginAdmin(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if body.Auth == nil {
		badRequest(c, missingParam("auth"))
		return
	}

	session, err := ac.Auth.AdminLogin(c.Request.Context(), body.Auth.PhoneNumber, body.Auth.Password)
	if err != nil {
		ac.loginFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   session.Token,
		"user":    prepareUserResponse(session.User),
		"role":    session.Role.Name,
	})
}

func (ac *AuthController) loginFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusUnauthorized, "User doesn't exist")
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "Invalid phone number or password")
	case errors.Is(err, services.ErrProfileIncomplete):
		fail(c, http.StatusUnauthorized, "Profile not complete")
	case errors.Is(err, services.ErrNotAdmin):
		fail(c, http.StatusUnauthorized, "Unauthorized access")
	default:
		internalError(c, err, "An unexpected error occurred")
	}
}
