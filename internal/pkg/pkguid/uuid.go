package pkguid

import "github.com/google/uuid"

// UUID generates RFC 4122 UUID strings.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new UUIDv7 string. Version 7 keeps IDs roughly
// time-ordered, which makes scanning correlation IDs in logs less painful.
func (u *UUID) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
