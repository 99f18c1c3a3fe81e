package models

import (
	"github.com/google/uuid"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/validation"
)

// Validation is a rule attached to a question or sub-question. Params holds the
// raw valueOne..valueFour slots; the registry compiles them.
type Validation struct {
	ID     uuid.UUID            `json:"id"`
	Type   validation.Type      `json:"type"`
	Params validation.RawParams `json:"params"`
}
