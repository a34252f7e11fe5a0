package utils

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// IDGenerator produces fresh entry identifiers.
type IDGenerator interface {
	Generate() uuid.UUID
}

type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a time-ordered v7 identifier, falling back to a random
// v4 one if the clock source fails.
func (g *UUIDGenerator) Generate() uuid.UUID {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}

	return v7
}

// ParseEntryUUID accepts the 32 hex digit form written by exports as well
// as the canonical hyphenated form.
func ParseEntryUUID(s string) (uuid.UUID, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 32 {
		b, err := hex.DecodeString(s)
		if err != nil {
			return uuid.Nil, false
		}
		id, err := uuid.FromBytes(b)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	}

	id, err := uuid.Parse(s)
	if err != nil || len(s) != 36 {
		return uuid.Nil, false
	}
	return id, true
}

// FormatEntryUUID renders an identifier as 32 lower-case hex digits.
func FormatEntryUUID(id uuid.UUID) string {
	return hex.EncodeToString(id[:])
}
