package models

import (
	"strings"
	"time"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

// Section groups questions inside a form.
//
// Invariants:
//   - Order is 1-based and dense within the form
//   - Gate satisfies Gate.Validate
//   - a gated section links to a section of the same form with smaller order,
//     and to a question inside that section
type Section struct {
	ID        id.SectionID `json:"id"`
	FormID    id.FormID    `json:"form_id"`
	Title     string       `json:"title"`
	Order     int          `json:"order"`
	Gate      Gate         `json:"gate"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Questions is only populated by structure reads.
	Questions []Question `json:"questions,omitempty"`
}

func NewSection(sectionID id.SectionID, formID id.FormID, title string, order int, gate Gate, now time.Time) (*Section, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "title cannot be empty")
	}
	if order < 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "order must be at least 1")
	}
	if err := gate.Validate(); err != nil {
		return nil, err
	}
	return &Section{
		ID:        sectionID,
		FormID:    formID,
		Title:     title,
		Order:     order,
		Gate:      gate,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
