package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

func ptr[T any](v T) *T { return &v }

func gatedShowIf() Gate {
	return Gate{
		Rule:           DisplayShowIf,
		LinkSectionID:  ptr(id.NewSectionID()),
		LinkQuestionID: ptr(id.NewQuestionID()),
		AnswerRule:     ptr(AnswerEquals),
		AnswerValue:    ptr("yes"),
	}
}

func TestGate_Validate(t *testing.T) {
	t.Run("always show without links is valid", func(t *testing.T) {
		require.NoError(t, AlwaysShow().Validate())
	})

	t.Run("complete SHOW_IF is valid", func(t *testing.T) {
		require.NoError(t, gatedShowIf().Validate())
	})

	t.Run("SHOW_IF without link fields is rejected", func(t *testing.T) {
		err := Gate{Rule: DisplayShowIf}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		assert.Equal(t, "display_link_section_id is required when display_rule is SHOW_IF", dErrors.MessageOf(err))
	})

	t.Run("DONT_SHOW_IF missing only the value names the value", func(t *testing.T) {
		g := gatedShowIf()
		g.Rule = DisplayDontShowIf
		g.AnswerValue = nil
		err := g.Validate()
		require.Error(t, err)
		assert.Equal(t, "answer_display_value is required when display_rule is DONT_SHOW_IF", dErrors.MessageOf(err))
	})

	t.Run("ALWAYS_SHOW with any link field is rejected", func(t *testing.T) {
		cases := map[string]Gate{
			"section link":  {Rule: DisplayAlways, LinkSectionID: ptr(id.NewSectionID())},
			"question link": {Rule: DisplayAlways, LinkQuestionID: ptr(id.NewQuestionID())},
			"answer rule":   {Rule: DisplayAlways, AnswerRule: ptr(AnswerIncludes)},
			"answer value":  {Rule: DisplayAlways, AnswerValue: ptr("x")},
		}
		for name, g := range cases {
			t.Run(name, func(t *testing.T) {
				err := g.Validate()
				require.Error(t, err)
				assert.Contains(t, dErrors.MessageOf(err), "must be empty when display_rule is ALWAYS_SHOW")
			})
		}
	})

	t.Run("unknown rules are rejected", func(t *testing.T) {
		require.Error(t, Gate{Rule: "SOMETIMES"}.Validate())

		g := gatedShowIf()
		g.AnswerRule = ptr(AnswerDisplayRule("SIMILAR"))
		require.Error(t, g.Validate())
	})

	t.Run("numeric conditions need numeric values", func(t *testing.T) {
		g := gatedShowIf()
		g.AnswerRule = ptr(AnswerMoreThan)
		g.AnswerValue = ptr("ten")
		err := g.Validate()
		require.Error(t, err)
		assert.Equal(t, "answer_display_value must be numeric for MORE_THAN", dErrors.MessageOf(err))

		g.AnswerValue = ptr(" 10.5 ")
		require.NoError(t, g.Validate())
	})

	t.Run("blank value is rejected", func(t *testing.T) {
		g := gatedShowIf()
		g.AnswerValue = ptr("  ")
		require.Error(t, g.Validate())
	})
}
