package domain

import "github.com/google/uuid"

// Principal is the authenticated caller as reported by the identity boundary.
type Principal struct {
	UserID  uuid.UUID
	IsAdmin bool
}

func (p Principal) IsAnonymous() bool {
	return p.UserID == uuid.Nil
}
