package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	logrus "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bscf_accounts/internal/models"
	"bscf_accounts/internal/token"
)

// Session is what a successful login hands back to the client.
type Session struct {
	Token   string
	User    *models.User
	Profile *models.UserProfile
	Role    *models.Role
}

// AuthService checks credentials and issues bearer tokens.
type AuthService struct {
	db     *gorm.DB
	tokens *token.Service
}

func NewAuthService(db *gorm.DB, tokens *token.Service) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

// VerifyCredentials loads the user by phone number and compares the
// password against the stored digest. The user comes back with roles and
// profile address preloaded.
func (s *AuthService) VerifyCredentials(ctx context.Context, phone, password string) (*models.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrUserNotFound
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("UserRoles.Role").
		Preload("UserProfile.Address").
		Where("phone_number = ?", phone).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordDigest), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Login authenticates a regular account. Users without a profile cannot
// log in.
func (s *AuthService) Login(ctx context.Context, phone, password string) (*Session, error) {
	user, err := s.VerifyCredentials(ctx, phone, password)
	if err != nil {
		logrus.WithField("phone_number", phone).WithError(err).Warn("login rejected")
		return nil, err
	}
	if user.UserProfile == nil {
		logrus.WithField("user_id", user.ID).Warn("login rejected: profile not complete")
		return nil, ErrProfileIncomplete
	}

	claims := token.NewClaims(user).WithProfile(user.UserProfile)
	if names := user.RoleNames(); len(names) > 0 {
		claims = claims.WithRole(names[0])
	}
	signed, err := s.tokens.Issue(claims)
	if err != nil {
		return nil, err
	}

	logrus.WithField("user_id", user.ID).Info("user logged in")
	return &Session{Token: signed, User: user, Profile: user.UserProfile}, nil
}

// AdminLogin authenticates an account that holds the Admin role. Valid
// credentials without the role yield ErrNotAdmin.
func (s *AuthService) AdminLogin(ctx context.Context, phone, password string) (*Session, error) {
	user, err := s.VerifyCredentials(ctx, phone, password)
	if err != nil {
		logrus.WithField("phone_number", phone).WithError(err).Warn("admin login rejected")
		return nil, err
	}
	role := user.FindRole(models.RoleAdmin)
	if role == nil {
		logrus.WithField("user_id", user.ID).Warn("admin login rejected: not an admin")
		return nil, ErrNotAdmin
	}

	signed, err := s.tokens.Issue(token.NewClaims(user).WithRole(role.Name))
	if err != nil {
		return nil, err
	}

	logrus.WithField("user_id", user.ID).Info("admin logged in")
	return &Session{Token: signed, User: user, Profile: user.UserProfile, Role: role}, nil
}
