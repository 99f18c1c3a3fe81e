package models

import (
	"strings"
	"time"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

// FormType distinguishes the candidate form from the ministerial and normal
// forms of a process.
type FormType string

const (
	FormTypeCandidate   FormType = "candidate"
	FormTypeMinisterial FormType = "ministerial"
	FormTypeNormal      FormType = "normal"
)

func (t FormType) IsValid() bool {
	switch t {
	case FormTypeCandidate, FormTypeMinisterial, FormTypeNormal:
		return true
	}
	return false
}

// IsSingleton reports whether a process may hold at most one form of this type.
func (t FormType) IsSingleton() bool {
	return t == FormTypeCandidate || t == FormTypeMinisterial
}

const maxNameLength = 255

// Form is the aggregate root of a form structure.
//
// Invariants:
//   - Name is non-empty and at most 255 characters
//   - Type is candidate, ministerial or normal
//   - a process has at most one candidate and one ministerial form (enforced by the service)
//   - EmailQuestionID is only set on ministerial and normal forms and points
//     at an EMAIL question of this form (checked by the service)
type Form struct {
	ID              id.FormID      `json:"id"`
	ProcessID       id.ProcessID   `json:"process_id"`
	Name            string         `json:"name"`
	Type            FormType       `json:"type"`
	EmailQuestionID *id.QuestionID `json:"email_question_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func NewForm(formID id.FormID, processID id.ProcessID, name string, formType FormType, now time.Time) (*Form, error) {
	f := &Form{
		ID:        formID,
		ProcessID: processID,
		Type:      formType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.Rename(name, now); err != nil {
		return nil, err
	}
	if !formType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "type must be one of candidate, ministerial, normal")
	}
	return f, nil
}

// Rename validates and applies a new name.
func (f *Form) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "name cannot be empty")
	}
	if len(name) > maxNameLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "name must be 255 characters or less")
	}
	f.Name = name
	f.UpdatedAt = now
	return nil
}

// CanLinkEmail rejects recipient email links on candidate forms.
func (f *Form) CanLinkEmail() error {
	if f.Type == FormTypeCandidate {
		return dErrors.New(dErrors.CodeInvariantViolation, "email_question_id is not allowed on candidate forms")
	}
	return nil
}
