package models

import (
	"fmt"

	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

// OrderChange assigns a new 1-based order (or position) to one sibling.
type OrderChange[ID comparable] struct {
	ID    ID  `json:"id"`
	Order int `json:"order"`
}

// ValidatePermutation checks that changes name every current sibling exactly
// once and that the new orders are exactly 1..N. It returns the new order per
// id. kind names the siblings in messages ("section", "question", ...).
func ValidatePermutation[ID comparable](current []ID, changes []OrderChange[ID], kind string) (map[ID]int, error) {
	if len(changes) != len(current) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("reorder must list all %d %ss, got %d", len(current), kind, len(changes)))
	}
	known := make(map[ID]bool, len(current))
	for _, c := range current {
		known[c] = true
	}

	next := make(map[ID]int, len(changes))
	used := make(map[int]bool, len(changes))
	for _, ch := range changes {
		if !known[ch.ID] {
			return nil, dErrors.New(dErrors.CodeInvariantViolation,
				fmt.Sprintf("%s %v does not belong to this parent", kind, ch.ID))
		}
		if _, dup := next[ch.ID]; dup {
			return nil, dErrors.New(dErrors.CodeInvariantViolation,
				fmt.Sprintf("%s %v is listed more than once", kind, ch.ID))
		}
		if ch.Order < 1 || ch.Order > len(current) {
			return nil, dErrors.New(dErrors.CodeInvariantViolation,
				fmt.Sprintf("order %d is outside 1..%d", ch.Order, len(current)))
		}
		if used[ch.Order] {
			return nil, dErrors.New(dErrors.CodeInvariantViolation,
				fmt.Sprintf("order %d is used more than once", ch.Order))
		}
		used[ch.Order] = true
		next[ch.ID] = ch.Order
	}
	return next, nil
}

// ValidateInsertOrder checks that a new sibling lands within 1..count+1.
func ValidateInsertOrder(order, count int, field string) error {
	if order < 1 || order > count+1 {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("%s must be between 1 and %d", field, count+1))
	}
	return nil
}

// ValidateMoveOrder checks that an existing sibling moves within 1..count.
func ValidateMoveOrder(order, count int, field string) error {
	if order < 1 || order > count {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("%s must be between 1 and %d", field, count))
	}
	return nil
}
