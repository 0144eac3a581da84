package service

import (
	"errors"

	"github.com/MidnightMr/parking-service/internal/models"
)

var ErrForbidden = errors.New("operation not allowed for this user")

// Actor is the already-authenticated caller identity. The services trust it
// (authentication happens in the middleware) and only enforce ownership and
// role rules.
type Actor struct {
	UserID uint
	Role   models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanAccess reports whether the actor may act on a resource owned by owner.
// A nil owner marks a walk-in resource, manageable by admins only.
func (a Actor) CanAccess(owner *uint) bool {
	if a.IsAdmin() {
		return true
	}
	return owner != nil && *owner == a.UserID
}
