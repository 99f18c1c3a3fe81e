package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

// Typed identifiers keep a section id from being passed where a question id is
// expected. Construct them with the Parse functions at trust boundaries and
// with New* in services.
type (
	ProcessID       uuid.UUID
	FormID          uuid.UUID
	SectionID       uuid.UUID
	QuestionID      uuid.UUID
	SubQuestionID   uuid.UUID
	CandidateID     uuid.UUID
	FormCandidateID uuid.UUID
)

func parseID[T ~[16]byte](s, label string) (T, error) {
	if s == "" {
		return T{}, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return T{}, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if parsed == uuid.Nil {
		return T{}, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return T(parsed), nil
}

func ParseProcessID(s string) (ProcessID, error) { return parseID[ProcessID](s, "process id") }
func ParseFormID(s string) (FormID, error)       { return parseID[FormID](s, "form id") }
func ParseSectionID(s string) (SectionID, error) { return parseID[SectionID](s, "section id") }
func ParseQuestionID(s string) (QuestionID, error) {
	return parseID[QuestionID](s, "question id")
}
func ParseSubQuestionID(s string) (SubQuestionID, error) {
	return parseID[SubQuestionID](s, "sub-question id")
}
func ParseCandidateID(s string) (CandidateID, error) {
	return parseID[CandidateID](s, "candidate id")
}
func ParseFormCandidateID(s string) (FormCandidateID, error) {
	return parseID[FormCandidateID](s, "form candidate id")
}

func NewFormID() FormID               { return FormID(uuid.New()) }
func NewSectionID() SectionID         { return SectionID(uuid.New()) }
func NewQuestionID() QuestionID       { return QuestionID(uuid.New()) }
func NewSubQuestionID() SubQuestionID { return SubQuestionID(uuid.New()) }

func (id ProcessID) String() string       { return uuid.UUID(id).String() }
func (id FormID) String() string          { return uuid.UUID(id).String() }
func (id SectionID) String() string       { return uuid.UUID(id).String() }
func (id QuestionID) String() string      { return uuid.UUID(id).String() }
func (id SubQuestionID) String() string   { return uuid.UUID(id).String() }
func (id CandidateID) String() string     { return uuid.UUID(id).String() }
func (id FormCandidateID) String() string { return uuid.UUID(id).String() }

func (id ProcessID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id FormID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id SectionID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id QuestionID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id SubQuestionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id CandidateID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id FormCandidateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling lets typed IDs appear in JSON payloads as plain UUID strings.

func (id ProcessID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id *ProcessID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id FormID) MarshalText() ([]byte, error)           { return uuid.UUID(id).MarshalText() }
func (id *FormID) UnmarshalText(b []byte) error          { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id SectionID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id *SectionID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id QuestionID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id *QuestionID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id SubQuestionID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id *SubQuestionID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id CandidateID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id *CandidateID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id FormCandidateID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id *FormCandidateID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
