package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	logrus "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bscf_accounts/internal/models"
	"bscf_accounts/internal/validation"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt input limit
	dateLayout        = "2006-01-02"
)

// AddressInput is the raw address block of a signup request. Coordinates
// stay strings until validation so bad values surface as field errors.
type AddressInput struct {
	City        string
	SubCity     string
	Woreda      string
	Latitude    string
	Longitude   string
	HouseNumber *string
}

type UserInput struct {
	FirstName            string
	MiddleName           string
	LastName             string
	PhoneNumber          string
	Email                *string
	Password             string
	PasswordConfirmation *string
}

type ProfileInput struct {
	DateOfBirth   string
	Nationality   string
	Occupation    string
	SourceOfFunds string
	Gender        string
	KYCStatus     string
	FaydaID       *string
}

type BusinessInput struct {
	BusinessName string
	TinNumber    string
	BusinessType string
}

type VehicleInput struct {
	PlateNumber string
	VehicleType string
	Brand       string
	Model       string
	Year        string
	Color       string
}

// SignupInput registers a plain user, or a business owner when Business
// carries a business name.
type SignupInput struct {
	User     UserInput
	Profile  ProfileInput
	Address  AddressInput
	Business *BusinessInput
}

type DriverSignupInput struct {
	User    UserInput
	Profile ProfileInput
	Address AddressInput
	Vehicle VehicleInput
}

// Registration is the entity graph created by a successful signup.
type Registration struct {
	User           *models.User
	Profile        *models.UserProfile
	Address        *models.Address
	Business       *models.Business
	Vehicle        *models.Vehicle
	Role           *models.Role
	VirtualAccount *models.VirtualAccount
}

// RegistrationService creates users together with everything that must
// exist alongside them, all in one transaction.
type RegistrationService struct {
	tx   txRunner
	cost int
}

func NewRegistrationService(db *gorm.DB, txOpts *sql.TxOptions) *RegistrationService {
	return &RegistrationService{tx: txRunner{db: db, opts: txOpts}, cost: bcrypt.DefaultCost}
}

// WithPasswordCost overrides the bcrypt cost; tests lower it.
func (s *RegistrationService) WithPasswordCost(cost int) *RegistrationService {
	s.cost = cost
	return s
}

// RegisterUser persists Address, User, UserProfile, the "User" role, a
// VirtualAccount and, when requested, a Business. Nothing survives a failure.
func (s *RegistrationService) RegisterUser(ctx context.Context, in SignupInput) (*Registration, error) {
	log := logrus.WithFields(logrus.Fields{"action": "register_user", "phone_number": in.User.PhoneNumber})
	cred := s.credential(in.User)

	var out *Registration
	err := s.tx.run(ctx, func(tx *gorm.DB) error {
		reg := &Registration{}

		address, err := createAddress(tx, in.Address)
		if err != nil {
			return err
		}
		reg.Address = address

		user, err := createUser(tx, in.User, cred)
		if err != nil {
			return err
		}
		reg.User = user

		profile, err := createProfile(tx, in.Profile, user.ID, address.ID)
		if err != nil {
			return err
		}
		profile.Address = address
		reg.Profile = profile

		role, err := EnsureRole(tx, models.RoleUser)
		if err != nil {
			return err
		}
		if _, _, err := grant(tx, user.ID, role.ID); err != nil {
			return err
		}
		reg.Role = role

		va, err := provisionVirtualAccount(tx, user.ID)
		if err != nil {
			return err
		}
		reg.VirtualAccount = va

		if in.Business != nil && strings.TrimSpace(in.Business.BusinessName) != "" {
			business, err := createBusiness(tx, *in.Business, user.ID)
			if err != nil {
				return err
			}
			reg.Business = business
		}

		out = reg
		return nil
	})
	if err != nil {
		logFailure(log, err)
		return nil, err
	}

	log.WithField("user_id", out.User.ID).Info("user successfully registered")
	return out, nil
}

// RegisterDriver persists User, Address, UserProfile, Vehicle, the "Driver"
// role and a VirtualAccount. The user is written before the address.
func (s *RegistrationService) RegisterDriver(ctx context.Context, in DriverSignupInput) (*Registration, error) {
	log := logrus.WithFields(logrus.Fields{"action": "register_driver", "phone_number": in.User.PhoneNumber})
	cred := s.credential(in.User)

	var out *Registration
	err := s.tx.run(ctx, func(tx *gorm.DB) error {
		reg := &Registration{}

		user, err := createUser(tx, in.User, cred)
		if err != nil {
			return err
		}
		reg.User = user

		address, err := createAddress(tx, in.Address)
		if err != nil {
			return err
		}
		reg.Address = address

		profile, err := createProfile(tx, in.Profile, user.ID, address.ID)
		if err != nil {
			return err
		}
		profile.Address = address
		reg.Profile = profile

		vehicle, err := createVehicle(tx, in.Vehicle, user.ID)
		if err != nil {
			return err
		}
		reg.Vehicle = vehicle

		role, err := EnsureRole(tx, models.RoleDriver)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRoleUnavailable, err)
		}
		if _, _, err := grant(tx, user.ID, role.ID); err != nil {
			return err
		}
		reg.Role = role

		va, err := provisionVirtualAccount(tx, user.ID)
		if err != nil {
			return err
		}
		reg.VirtualAccount = va

		out = reg
		return nil
	})
	if err != nil {
		logFailure(log, err)
		return nil, err
	}

	log.WithField("user_id", out.User.ID).Info("driver successfully registered")
	return out, nil
}

func logFailure(log *logrus.Entry, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		log.WithField("entity", verr.Entity).Warn("registration rejected: " + strings.Join(verr.Messages, "; "))
		return
	}
	log.WithError(err).Error("registration failed")
}

// credential is the outcome of applying the password policy. It is computed
// before the transaction so hashing does not hold the transaction open.
type credential struct {
	digest string
	errs   []string
}

func (s *RegistrationService) credential(in UserInput) credential {
	var errs []string
	switch n := len(in.Password); {
	case n == 0:
		errs = append(errs, validation.FullMessage("password", "can't be blank"))
	case n < minPasswordLength:
		errs = append(errs, validation.FullMessage("password", fmt.Sprintf("is too short (minimum is %d characters)", minPasswordLength)))
	case n > maxPasswordLength:
		errs = append(errs, validation.FullMessage("password", fmt.Sprintf("is too long (maximum is %d characters)", maxPasswordLength)))
	}
	if in.PasswordConfirmation != nil && *in.PasswordConfirmation != in.Password {
		errs = append(errs, "Password confirmation doesn't match Password")
	}
	if len(errs) > 0 {
		return credential{errs: errs}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return credential{errs: []string{validation.FullMessage("password", "is invalid")}}
	}
	return credential{digest: string(hash)}
}

func createAddress(tx *gorm.DB, in AddressInput) (*models.Address, error) {
	var errs []string
	address := &models.Address{
		City:        strings.TrimSpace(in.City),
		SubCity:     strings.TrimSpace(in.SubCity),
		Woreda:      strings.TrimSpace(in.Woreda),
		HouseNumber: in.HouseNumber,
	}
	address.Latitude = parseCoordinate("latitude", in.Latitude, &errs)
	address.Longitude = parseCoordinate("longitude", in.Longitude, &errs)

	if err := check("address", address, errs...); err != nil {
		return nil, err
	}
	if err := tx.Omit(clause.Associations).Create(address).Error; err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return address, nil
}

// parseCoordinate returns nil for blank input so the required rule reports it.
func parseCoordinate(field, raw string, errs *[]string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, validation.FullMessage(field, "is not a number"))
		return nil
	}
	return &f
}

func createUser(tx *gorm.DB, in UserInput, cred credential) (*models.User, error) {
	user := &models.User{
		FirstName:      strings.TrimSpace(in.FirstName),
		MiddleName:     strings.TrimSpace(in.MiddleName),
		LastName:       strings.TrimSpace(in.LastName),
		PhoneNumber:    strings.TrimSpace(in.PhoneNumber),
		PasswordDigest: cred.digest,
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		user.Email = &email
	}

	errs := append([]string{}, cred.errs...)
	taken, err := userTaken(tx, user)
	if err != nil {
		return nil, err
	}
	errs = append(errs, taken...)

	if err := check("user", user, errs...); err != nil {
		return nil, err
	}
	if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			field := "phone_number"
			if strings.Contains(violatedConstraint(err), "email") {
				field = "email"
			}
			return nil, invalid("user", validation.FullMessage(field, "has already been taken"))
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// userTaken reports uniqueness failures ahead of the insert. The unique
// indexes still decide races between concurrent signups.
func userTaken(tx *gorm.DB, user *models.User) ([]string, error) {
	var errs []string
	if user.PhoneNumber != "" {
		var n int64
		if err := tx.Model(&models.User{}).Where("phone_number = ?", user.PhoneNumber).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check phone number: %w", err)
		}
		if n > 0 {
			errs = append(errs, validation.FullMessage("phone_number", "has already been taken"))
		}
	}
	if user.Email != nil {
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ?", *user.Email).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if n > 0 {
			errs = append(errs, validation.FullMessage("email", "has already been taken"))
		}
	}
	return errs, nil
}

func createProfile(tx *gorm.DB, in ProfileInput, userID, addressID uint) (*models.UserProfile, error) {
	var errs []string
	profile := &models.UserProfile{
		UserID:        userID,
		AddressID:     addressID,
		Nationality:   strings.TrimSpace(in.Nationality),
		Occupation:    strings.TrimSpace(in.Occupation),
		SourceOfFunds: strings.TrimSpace(in.SourceOfFunds),
		Gender:        strings.ToLower(strings.TrimSpace(in.Gender)),
		KYCStatus:     models.KYCPending,
		FaydaID:       in.FaydaID,
	}
	profile.DateOfBirth = parseDate("date_of_birth", in.DateOfBirth, &errs)

	// Signup may only restate the initial status; changes go through KYC review.
	if s := strings.TrimSpace(in.KYCStatus); s != "" && models.KYCStatus(s) != models.KYCPending {
		errs = append(errs, validation.FullMessage("kyc_status", "can only be changed by an administrator"))
	}

	if err := check("user_profile", profile, errs...); err != nil {
		return nil, err
	}
	if err := tx.Omit(clause.Associations).Create(profile).Error; err != nil {
		return nil, fmt.Errorf("create user profile: %w", err)
	}
	return profile, nil
}

func parseDate(field, raw string, errs *[]string) *datatypes.Date {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		*errs = append(*errs, validation.FullMessage(field, "is not a valid date"))
		return nil
	}
	if t.After(time.Now()) {
		*errs = append(*errs, validation.FullMessage(field, "can't be in the future"))
	}
	d := datatypes.Date(t)
	return &d
}

func createBusiness(tx *gorm.DB, in BusinessInput, userID uint) (*models.Business, error) {
	business := &models.Business{
		UserID:       userID,
		BusinessName: strings.TrimSpace(in.BusinessName),
		TinNumber:    strings.TrimSpace(in.TinNumber),
		BusinessType: strings.ToLower(strings.TrimSpace(in.BusinessType)),
	}
	if err := check("business", business); err != nil {
		return nil, err
	}
	if err := tx.Omit(clause.Associations).Create(business).Error; err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}
	return business, nil
}

func createVehicle(tx *gorm.DB, in VehicleInput, driverID uint) (*models.Vehicle, error) {
	var errs []string
	vehicle := &models.Vehicle{
		DriverID:    driverID,
		PlateNumber: strings.ToUpper(strings.TrimSpace(in.PlateNumber)),
		VehicleType: strings.TrimSpace(in.VehicleType),
		Brand:       strings.TrimSpace(in.Brand),
		Model:       strings.TrimSpace(in.Model),
		Color:       strings.TrimSpace(in.Color),
	}
	if raw := strings.TrimSpace(in.Year); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, validation.FullMessage("year", "is not a number"))
		} else {
			vehicle.Year = year
		}
	}

	if vehicle.PlateNumber != "" {
		var n int64
		if err := tx.Model(&models.Vehicle{}).Where("plate_number = ?", vehicle.PlateNumber).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check plate number: %w", err)
		}
		if n > 0 {
			errs = append(errs, validation.FullMessage("plate_number", "has already been taken"))
		}
	}

	if err := check("vehicle", vehicle, errs...); err != nil {
		return nil, err
	}
	if err := tx.Omit(clause.Associations).Create(vehicle).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, invalid("vehicle", validation.FullMessage("plate_number", "has already been taken"))
		}
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	return vehicle, nil
}
