package models

import (
	"strings"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestAddressLocation(t *testing.T) {
	a := &Address{Latitude: ptr(9.0222), Longitude: ptr(38.7468)}
	if err := a.BeforeSave(nil); err != nil {
		t.Fatalf("before save: %v", err)
	}
	if len(a.Location) == 0 {
		t.Fatal("expected location to be encoded")
	}

	got, err := a.LocationGeoJSON()
	if err != nil {
		t.Fatalf("geojson: %v", err)
	}
	if !strings.Contains(got, `"Point"`) || !strings.Contains(got, "38.7468") {
		t.Fatalf("unexpected geojson %s", got)
	}
}

func TestAddressLocationClearedWithoutCoordinates(t *testing.T) {
	a := &Address{Location: []byte{1, 2, 3}}
	if err := a.BeforeSave(nil); err != nil {
		t.Fatalf("before save: %v", err)
	}
	if a.Location != nil {
		t.Fatalf("expected nil location, got %v", a.Location)
	}
	if got, _ := a.LocationGeoJSON(); got != "" {
		t.Fatalf("expected empty geojson, got %q", got)
	}
}

func TestUserRoleHelpers(t *testing.T) {
	u := &User{UserRoles: []UserRole{
		{Role: &Role{ID: 1, Name: RoleUser}},
		{Role: &Role{ID: 2, Name: RoleAdmin}},
		{RoleID: 3},
	}}

	if !u.HasRole(RoleAdmin) {
		t.Fatal("expected admin role")
	}
	if u.HasRole(RoleDriver) {
		t.Fatal("did not expect driver role")
	}
	if r := u.FindRole(RoleUser); r == nil || r.ID != 1 {
		t.Fatalf("unexpected role %+v", r)
	}
	if names := u.RoleNames(); len(names) != 2 {
		t.Fatalf("expected 2 names, got %v", names)
	}
}
