package service

import (
	"testing"

	"bitwise74/zeropass/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(model.User{}, model.File{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func TestResolve_Idempotent(t *testing.T) {
	ident := NewIdentity(newTestDB(t))

	first, err := ident.Resolve(Contact{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	second, err := ident.Resolve(Contact{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("resolve not idempotent: %q vs %q", first.ID, second.ID)
	}

	var count int64
	ident.DB.Model(model.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one user row, got %d", count)
	}
}

func TestResolve_ByPhone(t *testing.T) {
	ident := NewIdentity(newTestDB(t))

	user, err := ident.Resolve(Contact{Phone: "+15551234567"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if user.Phone == nil || *user.Phone != "+15551234567" {
		t.Fatalf("phone not set on created user")
	}
	if user.Email != nil {
		t.Fatalf("email should be unset for a phone login")
	}
	if len(user.ID) != 16 {
		t.Fatalf("unexpected user ID length: %d", len(user.ID))
	}
}

func TestResolve_DistinctContacts(t *testing.T) {
	ident := NewIdentity(newTestDB(t))

	a, err := ident.Resolve(Contact{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	b, err := ident.Resolve(Contact{Email: "b@x.com"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if a.ID == b.ID {
		t.Fatalf("distinct contacts resolved to the same user")
	}
}

func TestResolve_NoContact(t *testing.T) {
	ident := NewIdentity(newTestDB(t))

	if _, err := ident.Resolve(Contact{}); err == nil {
		t.Fatalf("expected error for empty contact")
	}
}

func TestExists(t *testing.T) {
	ident := NewIdentity(newTestDB(t))

	user, err := ident.Resolve(Contact{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	ok, err := ident.Exists(user.ID)
	if err != nil || !ok {
		t.Fatalf("expected user to exist, ok=%v err=%v", ok, err)
	}

	ok, err = ident.Exists("ghost")
	if err != nil || ok {
		t.Fatalf("expected ghost to not exist, ok=%v err=%v", ok, err)
	}
}
