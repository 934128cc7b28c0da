package domain

import "fmt"

// Actor is the authenticated user on whose behalf a use case runs.
// It is resolved once per request and passed explicitly to every service call.
type Actor struct {
	UserID uint
	Email  string
}

// IsZero reports whether the actor carries no identity.
func (a Actor) IsZero() bool {
	return a.UserID == 0
}

// Owns reports whether ownerID identifies this actor.
func (a Actor) Owns(ownerID uint) bool {
	return !a.IsZero() && a.UserID == ownerID
}

// Authorize verifies that the actor owns the entity.
// A zero actor yields an UnauthorizedError, a foreign owner a ForbiddenError.
func (a Actor) Authorize(operation, entity string, ownerID uint) error {
	if a.IsZero() {
		return NewUnauthorizedError("authentication required")
	}

	if !a.Owns(ownerID) {
		return NewForbiddenError(operation, fmt.Sprintf("%s does not belong to the current user", entity))
	}

	return nil
}
