package model

import "github.com/google/uuid"

// Principal identifies the authenticated caller. Mutating operations trust
// these values for attribution; role checks happen upstream.
type Principal struct {
	UserID   uuid.UUID
	FullName string
	Role     string
}

func (p Principal) IsZero() bool {
	return p.UserID == uuid.Nil
}
