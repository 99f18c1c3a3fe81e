// Package display decides whether gated sections and questions are shown, and
// tracks which entities depend on which answers.
package display

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	strs "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/strings"
)

var (
	// ErrNonNumeric is returned when a numeric condition meets a value that is
	// not a number. Well-formed forms never trigger it: numeric conditions are
	// only accepted on number-carrying questions.
	ErrNonNumeric = errors.New("non-numeric operand for numeric condition")
	// ErrUnknownRule is returned for display or answer rules outside the taxonomy.
	ErrUnknownRule = errors.New("unknown display rule")
)

// IsVisible applies a structural rule to a recorded answer. ALWAYS_SHOW is
// visible without looking at the condition; DONT_SHOW_IF negates it.
func IsVisible(answer string, rule models.DisplayRule, cond models.AnswerDisplayRule, condValue *string) (bool, error) {
	switch rule {
	case models.DisplayAlways:
		return true, nil
	case models.DisplayShowIf, models.DisplayDontShowIf:
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownRule, rule)
	}

	met, err := ConditionMet(answer, cond, condValue)
	if err != nil {
		return false, err
	}
	if rule == models.DisplayDontShowIf {
		return !met, nil
	}
	return met, nil
}

// GateVisible is IsVisible over a stored gate.
func GateVisible(answer string, g models.Gate) (bool, error) {
	cond, value := g.Condition()
	return IsVisible(answer, g.Rule, cond, value)
}

// ConditionMet compares a recorded answer with a condition value. A missing
// condition value never meets the condition. Multi-valued sides are split on
// "||" and compared as sets.
func ConditionMet(answer string, cond models.AnswerDisplayRule, condValue *string) (bool, error) {
	if condValue == nil {
		return false, nil
	}

	switch cond {
	case models.AnswerEquals:
		return sameSet(strs.SplitValues(answer), strs.SplitValues(*condValue)), nil
	case models.AnswerIncludes:
		return overlaps(strs.SplitValues(answer), strs.SplitValues(*condValue)), nil
	case models.AnswerExcludes:
		return !overlaps(strs.SplitValues(answer), strs.SplitValues(*condValue)), nil
	case models.AnswerMoreThan, models.AnswerLessThan, models.AnswerMoreThanOrEqual, models.AnswerLessThanOrEqual:
		return compareNumbers(answer, cond, *condValue)
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownRule, cond)
	}
}

// compareNumbers treats an unanswered question as not meeting the condition.
func compareNumbers(answer string, cond models.AnswerDisplayRule, condValue string) (bool, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false, nil
	}
	a, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return false, fmt.Errorf("%w: answer %q", ErrNonNumeric, answer)
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(condValue), 64)
	if err != nil {
		return false, fmt.Errorf("%w: value %q", ErrNonNumeric, condValue)
	}

	switch cond {
	case models.AnswerMoreThan:
		return a > b, nil
	case models.AnswerLessThan:
		return a < b, nil
	case models.AnswerMoreThanOrEqual:
		return a >= b, nil
	default:
		return a <= b, nil
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

func overlaps(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}
