package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bscf_accounts/internal/models"
)

// Assignment is the outcome of AssignRole. AlreadyAssigned marks the
// idempotent case where the pairing existed before the call.
type Assignment struct {
	UserRole        *models.UserRole
	AlreadyAssigned bool
}

// RoleService owns the role catalog and (user, role) pairings.
type RoleService struct {
	tx txRunner
}

func NewRoleService(db *gorm.DB, txOpts *sql.TxOptions) *RoleService {
	return &RoleService{tx: txRunner{db: db, opts: txOpts}}
}

// AssignRole grants roleName to the target user. The role must already exist
// in the catalog. Granting a role the user holds is a successful no-op.
func (s *RoleService) AssignRole(ctx context.Context, actingUserID, targetUserID uint, roleName string) (*Assignment, error) {
	var out *Assignment
	err := s.tx.run(ctx, func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, targetUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("load user %d: %w", targetUserID, err)
		}

		role, err := findRole(tx, roleName)
		if err != nil {
			return err
		}

		ur, already, err := grant(tx, user.ID, role.ID)
		if err != nil {
			return err
		}
		ur.User = &user
		ur.Role = role
		out = &Assignment{UserRole: ur, AlreadyAssigned: already}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"acting_user_id":   actingUserID,
		"target_user_id":   targetUserID,
		"role":             roleName,
		"already_assigned": out.AlreadyAssigned,
	}).Info("role assignment")
	return out, nil
}

// EnsureRole returns the named role, creating it when absent. The insert is
// an upsert on the unique name, so concurrent first uses converge on one row.
func EnsureRole(tx *gorm.DB, name string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("role name is required")
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&models.Role{Name: name}).Error; err != nil {
		return nil, fmt.Errorf("upsert role %q: %w", name, err)
	}
	var role models.Role
	if err := tx.Where("name = ?", name).First(&role).Error; err != nil {
		return nil, fmt.Errorf("load role %q: %w", name, err)
	}
	return &role, nil
}

func findRole(tx *gorm.DB, name string) (*models.Role, error) {
	var role models.Role
	if err := tx.Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("load role %q: %w", name, err)
	}
	return &role, nil
}

// grant creates the (user, role) pairing when absent. The boolean reports
// whether the pairing already existed.
func grant(tx *gorm.DB, userID, roleID uint) (*models.UserRole, bool, error) {
	var existing models.UserRole
	err := tx.Where("user_id = ? AND role_id = ?", userID, roleID).First(&existing).Error
	if err == nil {
		return &existing, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("load user role: %w", err)
	}

	ur := models.UserRole{UserID: userID, RoleID: roleID}
	res := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "role_id"}},
		DoNothing: true,
	}).Create(&ur)
	if res.Error != nil {
		return nil, false, fmt.Errorf("create user role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// lost a race with a concurrent grant
		if err := tx.Where("user_id = ? AND role_id = ?", userID, roleID).First(&existing).Error; err != nil {
			return nil, false, fmt.Errorf("load user role: %w", err)
		}
		return &existing, true, nil
	}
	return &ur, false, nil
}
