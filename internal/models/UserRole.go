package models

import "time"

// UserRole joins a user to a role. A (user, role) pair is stored at most once.
type UserRole struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_user_roles_user_role" json:"user_id"`
	RoleID uint `gorm:"not null;uniqueIndex:idx_user_roles_user_role;index" json:"role_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role *Role `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"role,omitempty"`
}
