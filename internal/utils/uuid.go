package utils

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// UUIDGenerator produces identifiers for trace ids, session ids and stored
// file names.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a time-ordered UUIDv7, falling back to a random v4.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// Random returns a random UUIDv4 without dashes. Used where the value must
// not be guessable, e.g. session ids.
func (g *UUIDGenerator) Random() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
