package domain

import "github.com/google/uuid"

// OwnershipGuard is the single authority for "may principal P act on resource
// R". Ownership is an optional user id: nil marks a shared system row that
// everyone can read and nobody can write.
type OwnershipGuard interface {
	// CanRead reports whether the principal may see a resource with the given
	// owner. System rows (nil owner) are readable by every principal.
	CanRead(principal uuid.UUID, owner *uuid.UUID) bool
	// CanWrite returns ErrUnauthorized unless the principal owns the
	// resource. System rows are writable by no principal.
	CanWrite(principal uuid.UUID, owner *uuid.UUID) error
}

// Guard is the default OwnershipGuard.
type Guard struct{}

// NewGuard creates the default ownership guard.
func NewGuard() Guard { return Guard{} }

func (Guard) CanRead(principal uuid.UUID, owner *uuid.UUID) bool {
	return owner == nil || *owner == principal
}

func (Guard) CanWrite(principal uuid.UUID, owner *uuid.UUID) error {
	if owner == nil || *owner != principal {
		return ErrUnauthorized
	}
	return nil
}
