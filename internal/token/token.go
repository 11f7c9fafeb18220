// Package token issues and decodes the signed bearer tokens handed out at
// login. Tokens carry an explicit claims schema; anything else is rejected.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bscf_accounts/internal/models"
)

// ErrInvalidToken covers bad signatures, malformed payloads and expiry.
var ErrInvalidToken = errors.New("invalid token")

// UserClaims is the sanitized user record embedded in a token.
type UserClaims struct {
	ID          uint    `json:"id"`
	FirstName   string  `json:"first_name"`
	MiddleName  string  `json:"middle_name"`
	LastName    string  `json:"last_name"`
	PhoneNumber string  `json:"phone_number"`
	Email       *string `json:"email,omitempty"`
}

// ProfileClaims is the subset of the profile embedded at login.
type ProfileClaims struct {
	ID        uint   `json:"id"`
	AddressID uint   `json:"address_id"`
	KYCStatus string `json:"kyc_status"`
}

// Claims is the full token payload. Role and Profile are informational only;
// authorization decisions re-read roles from the store.
type Claims struct {
	User    UserClaims     `json:"user"`
	Profile *ProfileClaims `json:"user_profile,omitempty"`
	Role    string         `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// NewClaims builds claims for u without its credential hash.
func NewClaims(u *models.User) Claims {
	return Claims{User: UserClaims{
		ID:          u.ID,
		FirstName:   u.FirstName,
		MiddleName:  u.MiddleName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
	}}
}

// WithProfile embeds p in the claims.
func (c Claims) WithProfile(p *models.UserProfile) Claims {
	if p != nil {
		c.Profile = &ProfileClaims{ID: p.ID, AddressID: p.AddressID, KYCStatus: string(p.KYCStatus)}
	}
	return c
}

// WithRole embeds a single resolved role name.
func (c Claims) WithRole(name string) Claims {
	c.Role = name
	return c
}

// Service signs tokens with a process-wide HMAC secret.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService returns a Service. A ttl of zero issues tokens without expiry.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs c. Subject, IssuedAt and ExpiresAt are always set by the
// service, never by the caller.
func (s *Service) Issue(c Claims) (string, error) {
	if c.User.ID == 0 {
		return "", errors.New("token: claims have no user id")
	}
	now := s.now()
	c.Subject = strconv.FormatUint(uint64(c.User.ID), 10)
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = nil
	if s.ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies raw and returns its claims.
func (s *Service) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	if err := claims.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (c *Claims) validate() error {
	if c.User.ID == 0 {
		return errors.New("missing user id")
	}
	if c.Subject != strconv.FormatUint(uint64(c.User.ID), 10) {
		return errors.New("subject does not match user")
	}
	if c.IssuedAt == nil {
		return errors.New("missing issued-at")
	}
	return nil
}
