package domain

import "time"

// Principal is the authenticated caller, resolved once per request and
// passed explicitly into service calls.
type Principal struct {
	UserID    uint
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

func (p Principal) Authenticated() bool { return p.UserID != 0 }

// Require is the single role gate: it fails with 401 for anonymous callers
// and 403 when none of roles matches. An empty roles list only requires
// authentication.
func (p Principal) Require(roles ...Role) error {
	if !p.Authenticated() {
		return Unauthenticated("unauthorized")
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return Forbidden("forbidden")
}

func (p Principal) Owns(userID uint) bool { return p.Authenticated() && p.UserID == userID }
