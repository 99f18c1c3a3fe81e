package models

import (
	"time"

	"github.com/google/uuid"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
)

// FormCandidate is one candidate's attempt at one form of a process.
type FormCandidate struct {
	ID          id.FormCandidateID `json:"id"`
	FormID      id.FormID          `json:"form_id"`
	CandidateID id.CandidateID     `json:"candidate_id"`
	ProcessID   id.ProcessID       `json:"process_id"`
}

// Answer is the single answer a form candidate gives to a question. It is
// created on first submission and updated in place afterwards.
type Answer struct {
	ID              uuid.UUID          `json:"id"`
	QuestionID      id.QuestionID      `json:"question_id"`
	FormCandidateID id.FormCandidateID `json:"form_candidate_id"`
	Value           string             `json:"value"`
	ValidAnswer     bool               `json:"valid_answer"`
	Comment         *string            `json:"comment,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}
