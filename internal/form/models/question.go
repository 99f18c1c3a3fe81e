package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

// QuestionType is the expected answer shape of a question or sub-question.
type QuestionType string

const (
	QuestionOpenAnswer           QuestionType = "OPEN_ANSWER"
	QuestionMultipleChoice       QuestionType = "MULTIPLE_CHOICE"
	QuestionSingleChoice         QuestionType = "SINGLE_CHOICE"
	QuestionLikert               QuestionType = "LIKERT"
	QuestionSingleChoiceMatrix   QuestionType = "SINGLE_CHOICE_MATRIX"
	QuestionMultipleChoiceMatrix QuestionType = "MULTIPLE_CHOICE_MATRIX"
	QuestionDate                 QuestionType = "DATE"
	QuestionTime                 QuestionType = "TIME"
	QuestionMultipleResponses    QuestionType = "MULTIPLE_RESPONSES"
	QuestionEmail                QuestionType = "EMAIL"
	QuestionFields               QuestionType = "FIELDS"
)

// QuestionTypes lists every question type.
var QuestionTypes = []QuestionType{
	QuestionOpenAnswer,
	QuestionMultipleChoice,
	QuestionSingleChoice,
	QuestionLikert,
	QuestionSingleChoiceMatrix,
	QuestionMultipleChoiceMatrix,
	QuestionDate,
	QuestionTime,
	QuestionMultipleResponses,
	QuestionEmail,
	QuestionFields,
}

func (t QuestionType) IsValid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CarriesNumbers reports whether answers of this type can be compared
// numerically by a display condition.
func (t QuestionType) CarriesNumbers() bool {
	switch t {
	case QuestionOpenAnswer, QuestionFields, QuestionLikert, QuestionSingleChoice:
		return true
	}
	return false
}

// OptionType distinguishes the roles options play: 1 is a choice or row,
// 2 a matrix column, 3 a Likert scale point.
type OptionType int

const (
	OptionPrimary OptionType = 1
	OptionColumn  OptionType = 2
	OptionScale   OptionType = 3
)

type Option struct {
	ID    uuid.UUID  `json:"id"`
	Type  OptionType `json:"type"`
	Value string     `json:"value"`
}

// optionRule is the cardinality a question type demands per option type.
type optionRule struct {
	min     map[OptionType]int
	allowed map[OptionType]bool
}

var optionRules = map[QuestionType]optionRule{
	QuestionMultipleChoice:       {min: map[OptionType]int{OptionPrimary: 2}, allowed: map[OptionType]bool{OptionPrimary: true}},
	QuestionSingleChoice:         {min: map[OptionType]int{OptionPrimary: 2}, allowed: map[OptionType]bool{OptionPrimary: true}},
	QuestionSingleChoiceMatrix:   {min: map[OptionType]int{OptionPrimary: 2, OptionColumn: 2}, allowed: map[OptionType]bool{OptionPrimary: true, OptionColumn: true}},
	QuestionMultipleChoiceMatrix: {min: map[OptionType]int{OptionPrimary: 2, OptionColumn: 2}, allowed: map[OptionType]bool{OptionPrimary: true, OptionColumn: true}},
	QuestionLikert:               {min: map[OptionType]int{OptionPrimary: 1, OptionScale: 2}, allowed: map[OptionType]bool{OptionPrimary: true, OptionScale: true}},
	QuestionFields:               {min: map[OptionType]int{OptionPrimary: 1}, allowed: map[OptionType]bool{OptionPrimary: true}},
}

// ValidateOptions checks option cardinality for the question type and that
// values are unique within each option type. Types without a rule take no
// options.
func ValidateOptions(qType QuestionType, options []Option) error {
	rule := optionRules[qType]
	counts := make(map[OptionType]int)
	seen := make(map[OptionType]map[string]bool)
	for _, o := range options {
		if !rule.allowed[o.Type] {
			return dErrors.New(dErrors.CodeInvariantViolation,
				fmt.Sprintf("options of type %d are not allowed for %s questions", o.Type, qType))
		}
		value := strings.TrimSpace(o.Value)
		if value == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "option value cannot be empty")
		}
		if seen[o.Type] == nil {
			seen[o.Type] = make(map[string]bool)
		}
		if seen[o.Type][value] {
			return dErrors.New(dErrors.CodeInvariantViolation,
				fmt.Sprintf("option value %q is repeated for option type %d", value, o.Type))
		}
		seen[o.Type][value] = true
		counts[o.Type]++
	}
	for _, t := range []OptionType{OptionPrimary, OptionColumn, OptionScale} {
		if need := rule.min[t]; counts[t] < need {
			return dErrors.New(dErrors.CodeInvariantViolation,
				fmt.Sprintf("%s questions need at least %d options of type %d", qType, need, t))
		}
	}
	return nil
}

// Question belongs to a section.
//
// Invariants:
//   - Order is 1-based and dense within the section
//   - Type is one of the eleven question types
//   - Options satisfy ValidateOptions for Type
//   - a gated question links to a section with order at most its own section's
//     and to a question that precedes it
type Question struct {
	ID          id.QuestionID `json:"id"`
	FormID      id.FormID     `json:"form_id"`
	SectionID   id.SectionID  `json:"section_id"`
	Order       int           `json:"order"`
	Statement   string        `json:"statement"`
	Description string        `json:"description,omitempty"`
	Type        QuestionType  `json:"type"`
	Gate        Gate          `json:"gate"`
	Options     []Option      `json:"options"`
	Validations []Validation  `json:"validations"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// SubQuestions is only populated by structure reads.
	SubQuestions []SubQuestion `json:"sub_questions,omitempty"`
}

// QuestionContent is the editable body shared by questions and sub-questions.
type QuestionContent struct {
	Statement   string
	Description string
	Type        QuestionType
	Options     []Option
	Validations []Validation
}

// Validate checks statement, type and options. Validation rules are checked by
// the service against the registry.
func (c *QuestionContent) Validate() error {
	c.Statement = strings.TrimSpace(c.Statement)
	if c.Statement == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "statement cannot be empty")
	}
	if !c.Type.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "type is not a known question type")
	}
	for i := range c.Options {
		if c.Options[i].ID == uuid.Nil {
			c.Options[i].ID = uuid.New()
		}
		c.Options[i].Value = strings.TrimSpace(c.Options[i].Value)
	}
	for i := range c.Validations {
		if c.Validations[i].ID == uuid.Nil {
			c.Validations[i].ID = uuid.New()
		}
	}
	return ValidateOptions(c.Type, c.Options)
}

func NewQuestion(questionID id.QuestionID, section *Section, order int, content QuestionContent, gate Gate, now time.Time) (*Question, error) {
	if order < 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "order must be at least 1")
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}
	if err := gate.Validate(); err != nil {
		return nil, err
	}
	return &Question{
		ID:          questionID,
		FormID:      section.FormID,
		SectionID:   section.ID,
		Order:       order,
		Statement:   content.Statement,
		Description: strings.TrimSpace(content.Description),
		Type:        content.Type,
		Gate:        gate,
		Options:     content.Options,
		Validations: content.Validations,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Apply replaces the editable body. Content must already be validated.
func (q *Question) Apply(content QuestionContent, gate Gate, now time.Time) {
	q.Statement = content.Statement
	q.Description = strings.TrimSpace(content.Description)
	q.Type = content.Type
	q.Options = content.Options
	q.Validations = content.Validations
	q.Gate = gate
	q.UpdatedAt = now
}
