package entities

import (
	"strings"

	"github.com/google/uuid"
)

// Subject is a user-defined study category that goals reference by name.
// Names are case-insensitively unique per identity; the data store enforces
// that invariant on creation.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewSubject creates a subject with a fresh UUID
func NewSubject(name string) Subject {
	return Subject{
		ID:   uuid.New().String(),
		Name: name,
	}
}

// NameEquals compares subject names case-insensitively
func (s Subject) NameEquals(name string) bool {
	return strings.EqualFold(s.Name, name)
}
