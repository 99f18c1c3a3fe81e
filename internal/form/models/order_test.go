package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

func TestValidatePermutation(t *testing.T) {
	a, b, c, d := id.NewSectionID(), id.NewSectionID(), id.NewSectionID(), id.NewSectionID()
	current := []id.SectionID{a, b, c, d}
	change := func(pairs ...any) []OrderChange[id.SectionID] {
		var out []OrderChange[id.SectionID]
		for i := 0; i < len(pairs); i += 2 {
			out = append(out, OrderChange[id.SectionID]{ID: pairs[i].(id.SectionID), Order: pairs[i+1].(int)})
		}
		return out
	}

	t.Run("full permutation", func(t *testing.T) {
		next, err := ValidatePermutation(current, change(a, 4, b, 3, c, 2, d, 1), "section")
		require.NoError(t, err)
		assert.Equal(t, map[id.SectionID]int{a: 4, b: 3, c: 2, d: 1}, next)
	})

	rejected := map[string][]OrderChange[id.SectionID]{
		"duplicate order {1,2,2,4}": change(a, 1, b, 2, c, 2, d, 4),
		"gap {1,2,4}":               change(a, 1, b, 2, c, 4),
		"partial list":              change(a, 1, b, 2),
		"foreign id":                change(a, 1, b, 2, c, 3, id.NewSectionID(), 4),
		"repeated id":               change(a, 1, b, 2, c, 3, c, 4),
		"order beyond N":            change(a, 1, b, 2, c, 3, d, 5),
		"zero order":                change(a, 0, b, 1, c, 2, d, 3),
	}
	for name, changes := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := ValidatePermutation(current, changes, "section")
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestValidateInsertOrder(t *testing.T) {
	require.NoError(t, ValidateInsertOrder(1, 0, "order"))
	require.NoError(t, ValidateInsertOrder(4, 3, "order"))
	require.Error(t, ValidateInsertOrder(5, 3, "order"))
	require.Error(t, ValidateInsertOrder(0, 3, "order"))

	require.NoError(t, ValidateMoveOrder(3, 3, "position"))
	err := ValidateMoveOrder(4, 3, "position")
	require.Error(t, err)
	assert.Equal(t, "position must be between 1 and 3", dErrors.MessageOf(err))
}
