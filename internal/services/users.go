package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bscf_accounts/internal/models"
)

// UserService is the read side of the user directory.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// FindWithRoles loads a user and its roles. The auth middleware calls it on
// every request so role checks always see the stored state.
func (s *UserService) FindWithRoles(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("UserRoles.Role").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Preload("UserRoles.Role").Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns a user with every association loaded.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("UserRoles.Role").
		Preload("UserProfile.Address").
		Preload("Business").
		Preload("Vehicle").
		Preload("VirtualAccount").
		First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &user, nil
}

// ByRole lists holders of the Driver or User role. Drivers come with their
// vehicle, users with their business. Any other role is ErrInvalidRole.
func (s *UserService) ByRole(ctx context.Context, role string) ([]models.User, error) {
	q := s.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", role).
		Preload("UserRoles.Role").
		Preload("UserProfile.Address")

	switch role {
	case models.RoleDriver:
		q = q.Preload("Vehicle")
	case models.RoleUser:
		q = q.Preload("Business")
	default:
		return nil, ErrInvalidRole
	}

	var users []models.User
	if err := q.Order("users.id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users with role %q: %w", role, err)
	}
	return users, nil
}

func (s *UserService) HasVirtualAccount(ctx context.Context, userID uint) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.VirtualAccount{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check virtual account for user %d: %w", userID, err)
	}
	return n > 0, nil
}
