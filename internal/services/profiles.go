package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bscf_accounts/internal/models"
)

// ProfileUpdate holds the self-service profile fields. Nil fields are left
// untouched. KYC fields are not part of it.
type ProfileUpdate struct {
	DateOfBirth   *string
	Nationality   *string
	Occupation    *string
	SourceOfFunds *string
	Gender        *string
	FaydaID       *string
}

var selfServiceColumns = []string{
	"date_of_birth", "nationality", "occupation", "source_of_funds", "gender", "fayda_id", "updated_at",
}

type ProfileService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db, now: time.Now}
}

// ForUser returns the caller's own profile with its address.
func (s *ProfileService) ForUser(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.WithContext(ctx).Preload("Address").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile for user %d: %w", userID, err)
	}
	return &profile, nil
}

// Get returns profile id when caller owns it or is an Admin. caller must
// have its roles preloaded.
func (s *ProfileService) Get(ctx context.Context, caller *models.User, id uint) (*models.UserProfile, error) {
	profile, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !canAccess(caller, profile) {
		return nil, ErrForbidden
	}
	return profile, nil
}

// Update applies the self-service fields of in to profile id.
func (s *ProfileService) Update(ctx context.Context, caller *models.User, id uint, in ProfileUpdate) (*models.UserProfile, error) {
	profile, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !canAccess(caller, profile) {
		return nil, ErrForbidden
	}

	var errs []string
	if in.DateOfBirth != nil {
		profile.DateOfBirth = parseDate("date_of_birth", *in.DateOfBirth, &errs)
	}
	if in.Nationality != nil {
		profile.Nationality = strings.TrimSpace(*in.Nationality)
	}
	if in.Occupation != nil {
		profile.Occupation = strings.TrimSpace(*in.Occupation)
	}
	if in.SourceOfFunds != nil {
		profile.SourceOfFunds = strings.TrimSpace(*in.SourceOfFunds)
	}
	if in.Gender != nil {
		profile.Gender = strings.ToLower(strings.TrimSpace(*in.Gender))
	}
	if in.FaydaID != nil {
		profile.FaydaID = in.FaydaID
	}
	if err := check("user_profile", profile, errs...); err != nil {
		return nil, err
	}

	// KYC columns belong to UpdateKYC and are never written from here.
	err = s.db.WithContext(ctx).Model(&models.UserProfile{}).Where("id = ?", profile.ID).
		Select(selfServiceColumns).
		Updates(profile).Error
	if err != nil {
		return nil, fmt.Errorf("save profile %d: %w", id, err)
	}
	logrus.WithFields(logrus.Fields{"profile_id": id, "user_id": caller.ID}).Info("profile updated")
	return s.load(s.db.WithContext(ctx), id)
}

// UpdateKYC records an administrator's KYC decision on profile id.
func (s *ProfileService) UpdateKYC(ctx context.Context, admin *models.User, id uint, status string) (*models.UserProfile, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, ErrKYCStatusRequired
	}

	profile, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	profile.KYCStatus = models.KYCStatus(status)
	profile.VerifiedAt = &now
	profile.VerifiedByID = &admin.ID
	if err := check("user_profile", profile); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&models.UserProfile{}).Where("id = ?", profile.ID).Updates(map[string]interface{}{
		"kyc_status":     profile.KYCStatus,
		"verified_at":    profile.VerifiedAt,
		"verified_by_id": profile.VerifiedByID,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update kyc for profile %d: %w", id, err)
	}

	logrus.WithFields(logrus.Fields{
		"profile_id": id,
		"admin_id":   admin.ID,
		"kyc_status": status,
	}).Info("kyc status updated")
	return profile, nil
}

func (s *ProfileService) load(db *gorm.DB, id uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := db.Preload("Address").First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile %d: %w", id, err)
	}
	return &profile, nil
}

func canAccess(caller *models.User, profile *models.UserProfile) bool {
	if caller == nil {
		return false
	}
	return caller.ID == profile.UserID || caller.HasRole(models.RoleAdmin)
}
