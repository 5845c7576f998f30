package types

import (
	"github.com/google/uuid"

	"github.com/threadline/warehouse-backend/pkg/enums"
)

// Actor identifies the authenticated operator behind a mutation.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   enums.UserRole
}

// IsAdmin reports whether the actor may perform admin-only mutations.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}
