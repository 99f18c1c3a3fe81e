package models

import (
	"strconv"
	"strings"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

// DisplayRule is the structural rule deciding whether a section or question
// is gated at all.
type DisplayRule string

const (
	DisplayAlways     DisplayRule = "ALWAYS_SHOW"
	DisplayShowIf     DisplayRule = "SHOW_IF"
	DisplayDontShowIf DisplayRule = "DONT_SHOW_IF"
)

func (r DisplayRule) IsValid() bool {
	switch r {
	case DisplayAlways, DisplayShowIf, DisplayDontShowIf:
		return true
	}
	return false
}

// IsGated reports whether the rule depends on an earlier answer.
func (r DisplayRule) IsGated() bool {
	return r == DisplayShowIf || r == DisplayDontShowIf
}

// AnswerDisplayRule is the comparison applied between a recorded answer and
// the configured condition value.
type AnswerDisplayRule string

const (
	AnswerEquals          AnswerDisplayRule = "EQUALS"
	AnswerMoreThan        AnswerDisplayRule = "MORE_THAN"
	AnswerLessThan        AnswerDisplayRule = "LESS_THAN"
	AnswerMoreThanOrEqual AnswerDisplayRule = "MORE_THAN_OR_EQUAL"
	AnswerLessThanOrEqual AnswerDisplayRule = "LESS_THAN_OR_EQUAL"
	AnswerIncludes        AnswerDisplayRule = "INCLUDES"
	AnswerExcludes        AnswerDisplayRule = "EXCLUDES"
)

func (r AnswerDisplayRule) IsValid() bool {
	switch r {
	case AnswerEquals, AnswerIncludes, AnswerExcludes:
		return true
	}
	return r.IsNumeric()
}

// IsNumeric reports whether the condition compares both sides as numbers.
func (r AnswerDisplayRule) IsNumeric() bool {
	switch r {
	case AnswerMoreThan, AnswerLessThan, AnswerMoreThanOrEqual, AnswerLessThanOrEqual:
		return true
	}
	return false
}

// Gate is the display configuration shared by sections and questions.
//
// Invariants:
//   - Rule is one of ALWAYS_SHOW, SHOW_IF, DONT_SHOW_IF
//   - ALWAYS_SHOW carries none of the link or answer fields
//   - SHOW_IF and DONT_SHOW_IF carry all of them
//   - numeric answer rules carry a numeric answer value
//
// Whether the links point backwards depends on sibling orders and is checked
// by the service, which can see them.
type Gate struct {
	Rule           DisplayRule        `json:"display_rule"`
	LinkSectionID  *id.SectionID      `json:"display_link_section_id,omitempty"`
	LinkQuestionID *id.QuestionID     `json:"question_display_link,omitempty"`
	AnswerRule     *AnswerDisplayRule `json:"answer_display_rule,omitempty"`
	AnswerValue    *string            `json:"answer_display_value,omitempty"`
}

// AlwaysShow is the ungated configuration.
func AlwaysShow() Gate {
	return Gate{Rule: DisplayAlways}
}

// Validate enforces the completeness invariant. Messages name the offending
// field so administrators can fix the request.
func (g Gate) Validate() error {
	if !g.Rule.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "display_rule must be one of ALWAYS_SHOW, SHOW_IF, DONT_SHOW_IF")
	}

	present := map[string]bool{
		"display_link_section_id": g.LinkSectionID != nil,
		"question_display_link":   g.LinkQuestionID != nil,
		"answer_display_rule":     g.AnswerRule != nil,
		"answer_display_value":    g.AnswerValue != nil,
	}
	for _, field := range gateFields {
		if g.Rule == DisplayAlways && present[field] {
			return dErrors.New(dErrors.CodeInvariantViolation, field+" must be empty when display_rule is ALWAYS_SHOW")
		}
		if g.Rule.IsGated() && !present[field] {
			return dErrors.New(dErrors.CodeInvariantViolation, field+" is required when display_rule is "+string(g.Rule))
		}
	}
	if g.Rule == DisplayAlways {
		return nil
	}

	if !g.AnswerRule.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "answer_display_rule is not a known condition")
	}
	if g.LinkSectionID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "display_link_section_id cannot be nil")
	}
	if g.LinkQuestionID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "question_display_link cannot be nil")
	}
	if strings.TrimSpace(*g.AnswerValue) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "answer_display_value cannot be blank")
	}
	if g.AnswerRule.IsNumeric() {
		if _, err := strconv.ParseFloat(strings.TrimSpace(*g.AnswerValue), 64); err != nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "answer_display_value must be numeric for "+string(*g.AnswerRule))
		}
	}
	return nil
}

var gateFields = []string{
	"display_link_section_id",
	"question_display_link",
	"answer_display_rule",
	"answer_display_value",
}

// Condition returns the answer rule and value, or zero values when ungated.
func (g Gate) Condition() (AnswerDisplayRule, *string) {
	if g.AnswerRule == nil {
		return "", g.AnswerValue
	}
	return *g.AnswerRule, g.AnswerValue
}
