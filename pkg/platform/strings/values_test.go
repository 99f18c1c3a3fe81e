package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitValues(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "blank", input: "   ", expected: nil},
		{name: "single", input: "yes", expected: []string{"yes"}},
		{name: "multiple trimmed", input: " a || b ||c", expected: []string{"a", "b", "c"}},
		{name: "drops empty parts and duplicates", input: "a||||b||a||", expected: []string{"a", "b"}},
		{name: "case is significant", input: "Yes||yes", expected: []string{"Yes", "yes"}},
		{name: "single pipe is not a separator", input: "a|b", expected: []string{"a|b"}},
		{name: "only separators", input: "||||", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitValues(tt.input))
		})
	}
}

func TestJoinValuesRoundTrip(t *testing.T) {
	parts := []string{"a", "b"}
	assert.Equal(t, "a||b", JoinValues(parts))
	assert.Equal(t, parts, SplitValues(JoinValues(parts)))
}

func TestNormalizeSpaces(t *testing.T) {
	assert.Equal(t, "hello big world", NormalizeSpaces("  hello \t big\n\nworld  "))
	assert.Equal(t, "", NormalizeSpaces(" \n "))
}
