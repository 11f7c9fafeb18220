package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bscf_accounts/internal/models"
	"bscf_accounts/internal/testutil"
)

func strPtr(s string) *string { return &s }

func newRegistrations(db *gorm.DB) *RegistrationService {
	return NewRegistrationService(db, nil).WithPasswordCost(bcrypt.MinCost)
}

func signupInput(phone string) SignupInput {
	return SignupInput{
		User: UserInput{
			FirstName:            "Almaz",
			MiddleName:           "Bekele",
			LastName:             "Haile",
			PhoneNumber:          phone,
			Email:                strPtr(phone + "@example.com"),
			Password:             "secret123",
			PasswordConfirmation: strPtr("secret123"),
		},
		Profile: ProfileInput{
			DateOfBirth:   "1992-04-11",
			Nationality:   "Ethiopian",
			Occupation:    "Trader",
			SourceOfFunds: "Business",
			Gender:        "female",
		},
		Address: AddressInput{
			City:      "Addis Ababa",
			SubCity:   "Yeka",
			Woreda:    "07",
			Latitude:  "9.03",
			Longitude: "38.74",
		},
	}
}

func driverInput(phone, plate string) DriverSignupInput {
	in := signupInput(phone)
	return DriverSignupInput{
		User:    in.User,
		Profile: in.Profile,
		Address: in.Address,
		Vehicle: VehicleInput{
			PlateNumber: plate,
			VehicleType: "Bajaj",
			Brand:       "TVS",
			Model:       "King",
			Year:        "2019",
			Color:       "Blue",
		},
	}
}

type rowCounts struct {
	users, profiles, addresses, userRoles, accounts, businesses, vehicles int64
}

func counts(t *testing.T, db *gorm.DB) rowCounts {
	t.Helper()
	return rowCounts{
		users:      testutil.Count(t, db, &models.User{}),
		profiles:   testutil.Count(t, db, &models.UserProfile{}),
		addresses:  testutil.Count(t, db, &models.Address{}),
		userRoles:  testutil.Count(t, db, &models.UserRole{}),
		accounts:   testutil.Count(t, db, &models.VirtualAccount{}),
		businesses: testutil.Count(t, db, &models.Business{}),
		vehicles:   testutil.Count(t, db, &models.Vehicle{}),
	}
}

func wantValidation(t *testing.T, err error, entity, contains string) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Entity != entity {
		t.Fatalf("expected entity %s, got %s (%v)", entity, verr.Entity, verr.Messages)
	}
	for _, m := range verr.Messages {
		if strings.Contains(m, contains) {
			return
		}
	}
	t.Fatalf("expected a message containing %q, got %v", contains, verr.Messages)
}

func TestRegisterUser(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newRegistrations(db)

	reg, err := svc.RegisterUser(context.Background(), signupInput("0911000001"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.User.ID == 0 || reg.Profile.UserID != reg.User.ID || reg.Profile.AddressID != reg.Address.ID {
		t.Fatalf("unexpected registration %+v", reg)
	}
	if reg.Profile.KYCStatus != models.KYCPending {
		t.Fatalf("expected pending kyc, got %s", reg.Profile.KYCStatus)
	}
	if reg.Business != nil {
		t.Fatal("did not expect a business")
	}
	if reg.Role.Name != models.RoleUser {
		t.Fatalf("expected User role, got %s", reg.Role.Name)
	}
	if len(reg.Address.Location) == 0 {
		t.Fatal("expected address location to be set")
	}
	if bcrypt.CompareHashAndPassword([]byte(reg.User.PasswordDigest), []byte("secret123")) != nil {
		t.Fatal("password digest does not match")
	}

	va := reg.VirtualAccount
	if va.UserID != reg.User.ID || va.ProductScheme != "SAVINGS" || va.VoucherType != "REGULAR" ||
		va.InterestRate != 2.5 || va.InterestType != models.InterestSimple || va.Status != models.AccountPending || va.Balance != 0 {
		t.Fatalf("unexpected virtual account %+v", va)
	}
	if !strings.HasPrefix(va.BranchCode, "VA") || len(va.BranchCode) != 10 {
		t.Fatalf("unexpected branch code %q", va.BranchCode)
	}
	if !strings.HasPrefix(va.CBSAccountNumber, "CBS") || len(va.CBSAccountNumber) != 11 {
		t.Fatalf("unexpected cbs number %q", va.CBSAccountNumber)
	}

	got := counts(t, db)
	want := rowCounts{users: 1, profiles: 1, addresses: 1, userRoles: 1, accounts: 1}
	if got != want {
		t.Fatalf("counts = %+v, want %+v", got, want)
	}
}

func TestRegisterBusinessOwner(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newRegistrations(db)

	in := signupInput("0911000002")
	in.Business = &BusinessInput{BusinessName: "Almaz Trading", TinNumber: "0012345678", BusinessType: "retailer"}
	reg, err := svc.RegisterUser(context.Background(), in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Business == nil || reg.Business.UserID != reg.User.ID {
		t.Fatalf("expected business for user, got %+v", reg.Business)
	}
	if got := testutil.Count(t, db, &models.Business{}); got != 1 {
		t.Fatalf("expected 1 business, got %d", got)
	}
}

func TestRegisterUserBlankBusinessNameSkipsBusiness(t *testing.T) {
	db := testutil.NewDB(t)
	in := signupInput("0911000003")
	in.Business = &BusinessInput{BusinessName: "  ", BusinessType: "retailer"}
	reg, err := newRegistrations(db).RegisterUser(context.Background(), in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Business != nil {
		t.Fatal("did not expect a business")
	}
}

func TestRegisterUserRollsBack(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*SignupInput)
		entity   string
		contains string
	}{
		{"missing city", func(in *SignupInput) { in.Address.City = "" }, "address", "City can't be blank"},
		{"latitude out of range", func(in *SignupInput) { in.Address.Latitude = "95" }, "address", "Latitude"},
		{"latitude not a number", func(in *SignupInput) { in.Address.Latitude = "north" }, "address", "Latitude is not a number"},
		{"missing middle name", func(in *SignupInput) { in.User.MiddleName = "" }, "user", "Middle name can't be blank"},
		{"short password", func(in *SignupInput) { in.User.Password = "abc"; in.User.PasswordConfirmation = strPtr("abc") }, "user", "too short"},
		{"confirmation mismatch", func(in *SignupInput) { in.User.PasswordConfirmation = strPtr("other") }, "user", "Password confirmation doesn't match Password"},
		{"bad email", func(in *SignupInput) { in.User.Email = strPtr("nope") }, "user", "Email is invalid"},
		{"bad gender", func(in *SignupInput) { in.Profile.Gender = "other" }, "user_profile", "Gender is not included in the list"},
		{"missing birth date", func(in *SignupInput) { in.Profile.DateOfBirth = "" }, "user_profile", "Date of birth can't be blank"},
		{"kyc status at signup", func(in *SignupInput) { in.Profile.KYCStatus = "approved" }, "user_profile", "Kyc status"},
		{"bad business type", func(in *SignupInput) {
			in.Business = &BusinessInput{BusinessName: "Shop", TinNumber: "1", BusinessType: "broker"}
		}, "business", "Business type is not included in the list"},
		{"missing tin", func(in *SignupInput) {
			in.Business = &BusinessInput{BusinessName: "Shop", BusinessType: "wholesaler"}
		}, "business", "Tin number can't be blank"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := testutil.NewDB(t)
			in := signupInput("0911000010")
			tc.mutate(&in)

			reg, err := newRegistrations(db).RegisterUser(context.Background(), in)
			if reg != nil {
				t.Fatalf("expected no registration, got %+v", reg)
			}
			wantValidation(t, err, tc.entity, tc.contains)

			got := counts(t, db)
			if got.users != 0 || got.profiles != 0 || got.addresses != 0 || got.userRoles != 0 || got.accounts != 0 || got.businesses != 0 {
				t.Fatalf("expected nothing persisted, got %+v", got)
			}
		})
	}
}

func TestRegisterUserDuplicatePhone(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newRegistrations(db)
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, signupInput("0911000020")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	before := counts(t, db)

	in := signupInput("0911000020")
	in.User.Email = nil
	_, err := svc.RegisterUser(ctx, in)
	wantValidation(t, err, "user", "Phone number has already been taken")

	if after := counts(t, db); after != before {
		t.Fatalf("counts changed: before %+v after %+v", before, after)
	}
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newRegistrations(db)
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, signupInput("0911000021")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	in := signupInput("0911000022")
	in.User.Email = strPtr("0911000021@EXAMPLE.com")
	_, err := svc.RegisterUser(ctx, in)
	wantValidation(t, err, "user", "Email has already been taken")
}

func TestRegisterUserReusesRole(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newRegistrations(db)
	ctx := context.Background()

	for _, phone := range []string{"0911000030", "0911000031"} {
		if _, err := svc.RegisterUser(ctx, signupInput(phone)); err != nil {
			t.Fatalf("register %s: %v", phone, err)
		}
	}
	var n int64
	db.Model(&models.Role{}).Where("name = ?", models.RoleUser).Count(&n)
	if n != 1 {
		t.Fatalf("expected one User role, got %d", n)
	}
}

func TestRegisterDriver(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newRegistrations(db)

	reg, err := svc.RegisterDriver(context.Background(), driverInput("0922000001", "aa-3-12345"))
	if err != nil {
		t.Fatalf("register driver: %v", err)
	}
	if reg.Vehicle == nil || reg.Vehicle.DriverID != reg.User.ID || reg.Vehicle.PlateNumber != "AA-3-12345" {
		t.Fatalf("unexpected vehicle %+v", reg.Vehicle)
	}
	if reg.Role.Name != models.RoleDriver {
		t.Fatalf("expected Driver role, got %s", reg.Role.Name)
	}
	if reg.VirtualAccount == nil {
		t.Fatal("expected virtual account")
	}
	got := counts(t, db)
	want := rowCounts{users: 1, profiles: 1, addresses: 1, userRoles: 1, accounts: 1, vehicles: 1}
	if got != want {
		t.Fatalf("counts = %+v, want %+v", got, want)
	}
}

func TestRegisterDriverTwiceSharesRole(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newRegistrations(db)
	ctx := context.Background()

	first, err := svc.RegisterDriver(ctx, driverInput("0922000002", "AA-1"))
	if err != nil {
		t.Fatalf("first driver: %v", err)
	}
	second, err := svc.RegisterDriver(ctx, driverInput("0922000003", "AA-2"))
	if err != nil {
		t.Fatalf("second driver: %v", err)
	}
	if first.Role.ID != second.Role.ID {
		t.Fatalf("expected shared role, got %d and %d", first.Role.ID, second.Role.ID)
	}
	var n int64
	db.Model(&models.Role{}).Where("name = ?", models.RoleDriver).Count(&n)
	if n != 1 {
		t.Fatalf("expected one Driver role, got %d", n)
	}
}

func TestRegisterDriverRollsBack(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*DriverSignupInput)
		entity   string
		contains string
	}{
		{"missing phone", func(in *DriverSignupInput) { in.User.PhoneNumber = "" }, "user", "Phone number can't be blank"},
		{"missing woreda", func(in *DriverSignupInput) { in.Address.Woreda = "" }, "address", "Woreda can't be blank"},
		{"missing occupation", func(in *DriverSignupInput) { in.Profile.Occupation = "" }, "user_profile", "Occupation can't be blank"},
		{"year too old", func(in *DriverSignupInput) { in.Vehicle.Year = "1850" }, "vehicle", "Year must be between 1900"},
		{"year not a number", func(in *DriverSignupInput) { in.Vehicle.Year = "new" }, "vehicle", "Year is not a number"},
		{"missing color", func(in *DriverSignupInput) { in.Vehicle.Color = "" }, "vehicle", "Color can't be blank"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := testutil.NewDB(t)
			in := driverInput("0922000010", "AA-10")
			tc.mutate(&in)

			_, err := newRegistrations(db).RegisterDriver(context.Background(), in)
			wantValidation(t, err, tc.entity, tc.contains)

			got := counts(t, db)
			if got != (rowCounts{}) {
				t.Fatalf("expected nothing persisted, got %+v", got)
			}
		})
	}
}

func TestRegisterDriverDuplicatePlate(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newRegistrations(db)
	ctx := context.Background()

	if _, err := svc.RegisterDriver(ctx, driverInput("0922000020", "AA-20")); err != nil {
		t.Fatalf("first driver: %v", err)
	}
	before := counts(t, db)
	_, err := svc.RegisterDriver(ctx, driverInput("0922000021", "aa-20"))
	wantValidation(t, err, "vehicle", "Plate number has already been taken")
	if after := counts(t, db); after != before {
		t.Fatalf("counts changed: before %+v after %+v", before, after)
	}
}

func TestRegisterDriverUserErrorsComeFirst(t *testing.T) {
	db := testutil.NewDB(t)
	in := driverInput("", "AA-30")
	in.Address.City = ""
	_, err := newRegistrations(db).RegisterDriver(context.Background(), in)
	wantValidation(t, err, "user", "Phone number")
}

// beforeFirstInsert runs fn inside the registration transaction right before
// the first insert into table, after the uniqueness pre-checks passed.
func beforeFirstInsert(t *testing.T, db *gorm.DB, table string, fn func(tx *gorm.DB) error) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:conflict_"+table, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		if err := fn(tx.Session(&gorm.Session{NewDB: true})); err != nil {
			t.Errorf("insert conflicting %s row: %v", table, err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func insertUser(tx *gorm.DB, phone, email string) error {
	return tx.Exec(`INSERT INTO users (first_name, middle_name, last_name, phone_number, email, password_digest, created_at, updated_at)
VALUES ('Racer', 'Racer', 'Racer', ?, ?, 'x', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`, phone, email).Error
}

func TestRegisterUserInsertRace(t *testing.T) {
	tests := []struct {
		name        string
		phone       string
		email       string
		wantMessage string
	}{
		{"same phone", "0911000040", "racer@example.com", "Phone number has already been taken"},
		{"same email", "0911000099", "0911000040@example.com", "Email has already been taken"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := testutil.NewDB(t)
			beforeFirstInsert(t, db, "users", func(tx *gorm.DB) error {
				return insertUser(tx, tc.phone, tc.email)
			})

			_, err := newRegistrations(db).RegisterUser(context.Background(), signupInput("0911000040"))
			wantValidation(t, err, "user", tc.wantMessage)

			if got := counts(t, db); got != (rowCounts{}) {
				t.Fatalf("expected nothing persisted, got %+v", got)
			}
		})
	}
}

func TestRegisterDriverPlateInsertRace(t *testing.T) {
	db := testutil.NewDB(t)
	beforeFirstInsert(t, db, "vehicles", func(tx *gorm.DB) error {
		if err := insertUser(tx, "0922000099", "racer@example.com"); err != nil {
			return err
		}
		return tx.Exec(`INSERT INTO vehicles (driver_id, plate_number, vehicle_type, brand, model, year, color, created_at, updated_at)
SELECT id, 'AA-40', 'Bajaj', 'TVS', 'King', 2019, 'Red', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
FROM users WHERE phone_number = '0922000099'`).Error
	})

	_, err := newRegistrations(db).RegisterDriver(context.Background(), driverInput("0922000040", "AA-40"))
	wantValidation(t, err, "vehicle", "Plate number has already been taken")

	if got := counts(t, db); got != (rowCounts{}) {
		t.Fatalf("expected nothing persisted, got %+v", got)
	}
}
