// Package audit records who changed a form and who answered it. Services emit
// Events; a publisher buffers them and fans out to sinks (Postgres, memory,
// Kafka).
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
)

// Category groups actions for retention and routing.
type Category string

const (
	// CategoryStructure covers administrator edits of a form's structure.
	CategoryStructure Category = "structure"
	// CategoryIntake covers candidate registrations, answers and reviews.
	CategoryIntake Category = "intake"
)

// Action names what happened. Values are persisted and published.
type Action string

const (
	ActionFormCreated           Action = "form_created"
	ActionFormUpdated           Action = "form_updated"
	ActionFormDeleted           Action = "form_deleted"
	ActionSectionCreated        Action = "section_created"
	ActionSectionUpdated        Action = "section_updated"
	ActionSectionDeleted        Action = "section_deleted"
	ActionSectionsReordered     Action = "sections_reordered"
	ActionQuestionCreated       Action = "question_created"
	ActionQuestionUpdated       Action = "question_updated"
	ActionQuestionDeleted       Action = "question_deleted"
	ActionQuestionsReordered    Action = "questions_reordered"
	ActionSubQuestionCreated    Action = "sub_question_created"
	ActionSubQuestionUpdated    Action = "sub_question_updated"
	ActionSubQuestionDeleted    Action = "sub_question_deleted"
	ActionSubQuestionsReordered Action = "sub_questions_reordered"

	ActionCandidateRegistered Action = "form_candidate_registered"
	ActionAnswerSubmitted     Action = "answer_submitted"
	ActionAnswerReviewed      Action = "answer_reviewed"
)

var intakeActions = map[Action]bool{
	ActionCandidateRegistered: true,
	ActionAnswerSubmitted:     true,
	ActionAnswerReviewed:      true,
}

// Category defaults to CategoryStructure for anything not intake.
func (a Action) Category() Category {
	if intakeActions[a] {
		return CategoryIntake
	}
	return CategoryStructure
}

// Event is one audit record. Detail carries the action-specific identifiers
// (section_id, question_id, ...) as strings.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Action    Action            `json:"action"`
	Category  Category          `json:"category"`
	FormID    id.FormID         `json:"form_id"`
	ActorID   string            `json:"actor_id,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Agent     string            `json:"agent,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Sink persists or forwards events.
type Sink interface {
	Name() string
	Append(ctx context.Context, event Event) error
}

// Reader lists a form's events, newest first.
type Reader interface {
	ListByForm(ctx context.Context, formID id.FormID, limit int) ([]Event, error)
}
