package authz

import "github.com/google/uuid"

// Principal is the authenticated identity a request acts as. A nil *Principal
// means the request is anonymous.
//
// IsAdmin is resolved once from the profiles table when the principal is
// established, never inside a rule check: an admin check performed inside a
// profiles rule would have to read profiles itself, which is exactly the
// self-referential policy shape the registry forbids.
type Principal struct {
	ID      uuid.UUID
	Email   string
	IsAdmin bool
}
