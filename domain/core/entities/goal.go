package entities

import (
	"github.com/google/uuid"

	"scholarmind/domain/core/valueobjects"
)

// Goal is a single trackable study task tied to a subject and a calendar day.
// Fields are exported because the full collection is serialized wholesale to
// the key-value store; the data store owns all mutation paths.
type Goal struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Subject     string           `json:"subject"`
	Description string           `json:"description,omitempty"`
	Date        valueobjects.Day `json:"date"`
	Completed   bool             `json:"completed"`
}

// GoalPatch carries the fields of a partial goal update. Nil fields are
// left untouched by Apply.
type GoalPatch struct {
	Title       *string           `json:"title,omitempty"`
	Subject     *string           `json:"subject,omitempty"`
	Description *string           `json:"description,omitempty"`
	Date        *valueobjects.Day `json:"date,omitempty"`
	Completed   *bool             `json:"completed,omitempty"`
}

// NewGoal creates a goal with a fresh UUID, a day-normalized date and
// Completed initialized to false.
func NewGoal(title, subject, description string, date valueobjects.Day) Goal {
	return Goal{
		ID:          uuid.New().String(),
		Title:       title,
		Subject:     subject,
		Description: description,
		Date:        date,
		Completed:   false,
	}
}

// Apply merges the non-nil patch fields into the goal
func (g *Goal) Apply(patch GoalPatch) {
	if patch.Title != nil {
		g.Title = *patch.Title
	}
	if patch.Subject != nil {
		g.Subject = *patch.Subject
	}
	if patch.Description != nil {
		g.Description = *patch.Description
	}
	if patch.Date != nil {
		g.Date = *patch.Date
	}
	if patch.Completed != nil {
		g.Completed = *patch.Completed
	}
}

// ToggleCompleted flips the completion flag
func (g *Goal) ToggleCompleted() {
	g.Completed = !g.Completed
}
