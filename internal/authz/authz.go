// Package authz holds the ownership and role checks applied to mutating
// requests. Handlers re-derive these server-side on every call; nothing the
// client sends is trusted as an authorization decision.
package authz

import (
	"errors"

	"lyramor/internal/models"
)

// ErrForbidden indicates an authenticated actor lacks permission for the
// attempted mutation.
var ErrForbidden = errors.New("forbidden")

// CanMutate reports whether the actor may update or delete a resource owned
// by ownerID: admins may, owners may, nobody else.
func CanMutate(actor *models.SessionUser, ownerID int64) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin || actor.ID == ownerID
}
