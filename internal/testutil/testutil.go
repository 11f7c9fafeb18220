// Package testutil provides an in-memory store and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bscf_accounts/internal/config"
	"bscf_accounts/internal/models"
)

// NewDB opens a private in-memory sqlite database with the full schema.
// A single connection keeps the memory database alive for the whole test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Role returns the named role, creating it when needed.
func Role(t *testing.T, db *gorm.DB, name string) *models.Role {
	t.Helper()
	role := models.Role{Name: name}
	if err := db.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
		t.Fatalf("role %s: %v", name, err)
	}
	return &role
}

// User creates a user with the given password and roles. The user has no
// profile; add one with Profile.
func User(t *testing.T, db *gorm.DB, phone, password string, roles ...string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		FirstName:      "Abebe",
		MiddleName:     "Kebede",
		LastName:       "Tesfaye",
		PhoneNumber:    phone,
		PasswordDigest: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", phone, err)
	}
	for _, name := range roles {
		role := Role(t, db, name)
		if err := db.Create(&models.UserRole{UserID: user.ID, RoleID: role.ID}).Error; err != nil {
			t.Fatalf("grant %s: %v", name, err)
		}
	}
	if err := db.Preload("UserRoles.Role").First(&user, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &user
}

// Profile attaches a pending profile and an address to user.
func Profile(t *testing.T, db *gorm.DB, user *models.User) *models.UserProfile {
	t.Helper()
	lat, lng := 9.0108, 38.7613
	address := models.Address{City: "Addis Ababa", SubCity: "Bole", Woreda: "03", Latitude: &lat, Longitude: &lng}
	if err := db.Create(&address).Error; err != nil {
		t.Fatalf("create address: %v", err)
	}
	dob := datatypes.Date(time.Date(1990, time.January, 15, 0, 0, 0, 0, time.UTC))
	profile := models.UserProfile{
		UserID:        user.ID,
		AddressID:     address.ID,
		DateOfBirth:   &dob,
		Nationality:   "Ethiopian",
		Occupation:    "Merchant",
		SourceOfFunds: "Salary",
		Gender:        "male",
		KYCStatus:     models.KYCPending,
	}
	if err := db.Omit("User", "Address").Create(&profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	profile.Address = &address
	return &profile
}

// Count returns the number of rows of model.
func Count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
