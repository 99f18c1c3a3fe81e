package models

import (
	"strings"
	"time"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

// SubQuestion mirrors a question inside its parent, without a gate of its own.
// Position is 1-based and dense within the parent question.
type SubQuestion struct {
	ID          id.SubQuestionID `json:"id"`
	QuestionID  id.QuestionID    `json:"question_id"`
	Position    int              `json:"position"`
	Statement   string           `json:"statement"`
	Description string           `json:"description,omitempty"`
	Type        QuestionType     `json:"type"`
	Options     []Option         `json:"options"`
	Validations []Validation     `json:"validations"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func NewSubQuestion(subID id.SubQuestionID, questionID id.QuestionID, position int, content QuestionContent, now time.Time) (*SubQuestion, error) {
	if position < 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "position must be at least 1")
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}
	return &SubQuestion{
		ID:          subID,
		QuestionID:  questionID,
		Position:    position,
		Statement:   content.Statement,
		Description: strings.TrimSpace(content.Description),
		Type:        content.Type,
		Options:     content.Options,
		Validations: content.Validations,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *SubQuestion) Apply(content QuestionContent, now time.Time) {
	s.Statement = content.Statement
	s.Description = strings.TrimSpace(content.Description)
	s.Type = content.Type
	s.Options = content.Options
	s.Validations = content.Validations
	s.UpdatedAt = now
}
