package domain

import "github.com/google/uuid"

// NewID returns a fresh canonical identifier for a newly created entity.
func NewID() string {
	return uuid.NewString()
}

// IsCanonicalID reports whether id has the shape of a random (version 4)
// UUID. Seed and demo records carry fabricated identifiers that fail this
// check, which is what keeps them out of remote writes.
func IsCanonicalID(id string) bool {
	u, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122
}
