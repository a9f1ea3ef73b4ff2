package pkguid

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// UUID generates identifiers backed by github.com/google/uuid.
type UUID struct {
	hex bool
}

// NewUUID returns a generator of canonical version 7 UUIDs. They sort by
// creation time, which keeps correlation ids in request order.
func NewUUID() *UUID {
	return &UUID{}
}

// NewHexID returns a generator of 32 lowercase hex characters built from a
// random version 4 UUID, the shape of a W3C trace id.
func NewHexID() *UUID {
	return &UUID{hex: true}
}

func (u *UUID) Generate() string {
	if u.hex {
		id := uuid.New()
		return hex.EncodeToString(id[:])
	}
	return uuid.Must(uuid.NewV7()).String()
}
