package entities

import (
	"time"

	"github.com/google/uuid"
)

// Session is a logged study-time record. Beyond the ID, fields are
// caller-supplied and unvalidated; the store only appends.
type Session struct {
	ID              string    `json:"id"`
	Subject         string    `json:"subject,omitempty"`
	DurationSeconds int       `json:"durationSeconds,omitempty"`
	StartedAt       time.Time `json:"startedAt,omitempty"`
	EndedAt         time.Time `json:"endedAt,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// SessionInput carries the caller-supplied fields of a new session
type SessionInput struct {
	Subject         string    `json:"subject,omitempty"`
	DurationSeconds int       `json:"durationSeconds,omitempty"`
	StartedAt       time.Time `json:"startedAt,omitempty"`
	EndedAt         time.Time `json:"endedAt,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// NewSession creates a session record with a fresh UUID
func NewSession(input SessionInput) Session {
	return Session{
		ID:              uuid.New().String(),
		Subject:         input.Subject,
		DurationSeconds: input.DurationSeconds,
		StartedAt:       input.StartedAt,
		EndedAt:         input.EndedAt,
		Notes:           input.Notes,
	}
}
