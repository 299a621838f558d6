package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestGuard_CanRead_SystemRow(t *testing.T) {
	guard := NewGuard()

	if !guard.CanRead(uuid.New(), nil) {
		t.Error("Expected system rows to be readable by any principal")
	}
}

func TestGuard_CanRead_OwnedRow(t *testing.T) {
	guard := NewGuard()
	owner := uuid.New()

	if !guard.CanRead(owner, &owner) {
		t.Error("Expected owner to read its own row")
	}

	other := uuid.New()
	if guard.CanRead(other, &owner) {
		t.Error("Expected non-owner to be denied")
	}
}

func TestGuard_CanWrite_SystemRow(t *testing.T) {
	guard := NewGuard()

	if err := guard.CanWrite(uuid.New(), nil); err != ErrUnauthorized {
		t.Errorf("Expected ErrUnauthorized for system row, got %v", err)
	}
}

func TestGuard_CanWrite_Owner(t *testing.T) {
	guard := NewGuard()
	owner := uuid.New()

	if err := guard.CanWrite(owner, &owner); err != nil {
		t.Errorf("Expected owner write to pass, got %v", err)
	}

	if err := guard.CanWrite(uuid.New(), &owner); err != ErrUnauthorized {
		t.Errorf("Expected ErrUnauthorized for non-owner, got %v", err)
	}
}
