package models

import "time"

// User is the identity anchor every other account entity hangs off.
type User struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	FirstName      string  `gorm:"not null" json:"first_name" validate:"required"`
	MiddleName     string  `gorm:"not null" json:"middle_name" validate:"required"`
	LastName       string  `gorm:"not null" json:"last_name" validate:"required"`
	PhoneNumber    string  `gorm:"uniqueIndex;not null;size:20" json:"phone_number" validate:"required,max=20"`
	Email          *string `gorm:"uniqueIndex" json:"email" validate:"omitempty,email"`
	PasswordDigest string  `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations, loaded on demand
	UserProfile    *UserProfile    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user_profile,omitempty" validate:"-"`
	UserRoles      []UserRole      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user_roles,omitempty" validate:"-"`
	Business       *Business       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"business,omitempty" validate:"-"`
	Vehicle        *Vehicle        `gorm:"foreignKey:DriverID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"vehicle,omitempty" validate:"-"`
	VirtualAccount *VirtualAccount `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"virtual_account,omitempty" validate:"-"`
}

// HasRole reports whether the loaded UserRoles contain the named role.
// UserRoles.Role must be preloaded.
func (u *User) HasRole(name string) bool {
	return u.FindRole(name) != nil
}

// FindRole returns the loaded role with the given name, or nil.
func (u *User) FindRole(name string) *Role {
	for _, ur := range u.UserRoles {
		if ur.Role != nil && ur.Role.Name == name {
			return ur.Role
		}
	}
	return nil
}

// RoleNames lists the names of the loaded roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.UserRoles))
	for _, ur := range u.UserRoles {
		if ur.Role != nil {
			names = append(names, ur.Role.Name)
		}
	}
	return names
}
