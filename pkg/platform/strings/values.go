// Package strings holds the text helpers shared by validation and display
// evaluation.
package strings

import "strings"

// MultiValueSeparator joins the parts of a multi-valued answer, e.g. the
// options picked in a multiple-choice question: "a||b||c".
const MultiValueSeparator = "||"

// SplitValues splits a multi-valued answer on MultiValueSeparator and returns
// the trimmed, de-duplicated, non-empty parts in their original order.
//
//	SplitValues(" a || b ||a||") // []string{"a", "b"}
func SplitValues(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, MultiValueSeparator)
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// JoinValues is the inverse of SplitValues for already-clean parts.
func JoinValues(values []string) string {
	return strings.Join(values, MultiValueSeparator)
}

// NormalizeSpaces trims s and collapses every run of whitespace to a single
// space.
func NormalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
