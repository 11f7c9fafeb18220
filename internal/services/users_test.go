package services

import (
	"context"
	"errors"
	"testing"

	"bscf_accounts/internal/models"
	"bscf_accounts/internal/testutil"
)

func TestUsersByRole(t *testing.T) {
	db := testutil.NewDB(t)
	regs := newRegistrations(db)
	ctx := context.Background()

	in := signupInput("0955000001")
	in.Business = &BusinessInput{BusinessName: "Shop", TinNumber: "99", BusinessType: "wholesaler"}
	owner, err := regs.RegisterUser(ctx, in)
	if err != nil {
		t.Fatalf("register owner: %v", err)
	}
	driver, err := regs.RegisterDriver(ctx, driverInput("0955000002", "AA-55"))
	if err != nil {
		t.Fatalf("register driver: %v", err)
	}

	svc := NewUserService(db)

	drivers, err := svc.ByRole(ctx, models.RoleDriver)
	if err != nil {
		t.Fatalf("drivers: %v", err)
	}
	if len(drivers) != 1 || drivers[0].ID != driver.User.ID || drivers[0].Vehicle == nil {
		t.Fatalf("unexpected drivers %+v", drivers)
	}

	users, err := svc.ByRole(ctx, models.RoleUser)
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 1 || users[0].ID != owner.User.ID || users[0].Business == nil {
		t.Fatalf("unexpected users %+v", users)
	}

	if _, err := svc.ByRole(ctx, models.RoleAdmin); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUserDirectory(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	reg, err := newRegistrations(db).RegisterUser(ctx, signupInput("0955000010"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	bare := testutil.User(t, db, "0955000011", "secret123")
	svc := NewUserService(db)

	all, err := svc.List(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("list: %d users, err=%v", len(all), err)
	}

	got, err := svc.Get(ctx, reg.User.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserProfile == nil || got.UserProfile.Address == nil || got.VirtualAccount == nil || !got.HasRole(models.RoleUser) {
		t.Fatalf("expected full user, got %+v", got)
	}
	if _, err := svc.Get(ctx, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.FindWithRoles(ctx, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if ok, err := svc.HasVirtualAccount(ctx, reg.User.ID); err != nil || !ok {
		t.Fatalf("expected virtual account, ok=%v err=%v", ok, err)
	}
	if ok, err := svc.HasVirtualAccount(ctx, bare.ID); err != nil || ok {
		t.Fatalf("expected no virtual account, ok=%v err=%v", ok, err)
	}
}
