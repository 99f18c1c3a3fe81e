package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

func opts(pairs ...any) []Option {
	var out []Option
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Option{Type: pairs[i].(OptionType), Value: pairs[i+1].(string)})
	}
	return out
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name    string
		qType   QuestionType
		options []Option
		wantErr string
	}{
		{"choice with two options", QuestionSingleChoice, opts(OptionPrimary, "a", OptionPrimary, "b"), ""},
		{"choice with one option", QuestionMultipleChoice, opts(OptionPrimary, "a"), "MULTIPLE_CHOICE questions need at least 2 options of type 1"},
		{"choice with a column", QuestionSingleChoice, opts(OptionPrimary, "a", OptionPrimary, "b", OptionColumn, "c"), "options of type 2 are not allowed for SINGLE_CHOICE questions"},
		{"matrix complete", QuestionSingleChoiceMatrix, opts(OptionPrimary, "r1", OptionPrimary, "r2", OptionColumn, "c1", OptionColumn, "c2"), ""},
		{"matrix missing columns", QuestionMultipleChoiceMatrix, opts(OptionPrimary, "r1", OptionPrimary, "r2", OptionColumn, "c1"), "MULTIPLE_CHOICE_MATRIX questions need at least 2 options of type 2"},
		{"matrix with scale", QuestionSingleChoiceMatrix, opts(OptionScale, "1"), "options of type 3 are not allowed for SINGLE_CHOICE_MATRIX questions"},
		{"likert complete", QuestionLikert, opts(OptionPrimary, "statement", OptionScale, "1", OptionScale, "2"), ""},
		{"likert one scale point", QuestionLikert, opts(OptionPrimary, "statement", OptionScale, "1"), "LIKERT questions need at least 2 options of type 3"},
		{"fields", QuestionFields, opts(OptionPrimary, "name"), ""},
		{"fields empty", QuestionFields, nil, "FIELDS questions need at least 1 options of type 1"},
		{"open answer without options", QuestionOpenAnswer, nil, ""},
		{"open answer with options", QuestionOpenAnswer, opts(OptionPrimary, "a"), "options of type 1 are not allowed for OPEN_ANSWER questions"},
		{"duplicate value in group", QuestionSingleChoice, opts(OptionPrimary, "a", OptionPrimary, "a"), `option value "a" is repeated for option type 1`},
		{"same value in different groups", QuestionSingleChoiceMatrix, opts(OptionPrimary, "x", OptionPrimary, "y", OptionColumn, "x", OptionColumn, "y"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOptions(tt.qType, tt.options)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
			assert.Equal(t, tt.wantErr, dErrors.MessageOf(err))
		})
	}
}

func TestNewQuestion(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	section, err := NewSection(id.NewSectionID(), id.NewFormID(), "Personal data", 1, AlwaysShow(), now)
	require.NoError(t, err)

	t.Run("assigns option ids and inherits form", func(t *testing.T) {
		q, err := NewQuestion(id.NewQuestionID(), section, 1, QuestionContent{
			Statement: "  Favourite colour ",
			Type:      QuestionSingleChoice,
			Options:   opts(OptionPrimary, " red ", OptionPrimary, "blue"),
		}, AlwaysShow(), now)
		require.NoError(t, err)
		assert.Equal(t, section.FormID, q.FormID)
		assert.Equal(t, "Favourite colour", q.Statement)
		assert.Equal(t, "red", q.Options[0].Value)
		assert.NotEqual(t, q.Options[0].ID, q.Options[1].ID)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewQuestion(id.NewQuestionID(), section, 1, QuestionContent{Statement: "x", Type: "SLIDER"}, AlwaysShow(), now)
		require.Error(t, err)
	})

	t.Run("rejects incomplete gate", func(t *testing.T) {
		_, err := NewQuestion(id.NewQuestionID(), section, 2, QuestionContent{Statement: "x", Type: QuestionOpenAnswer}, Gate{Rule: DisplayShowIf}, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestQuestionType_CarriesNumbers(t *testing.T) {
	assert.True(t, QuestionOpenAnswer.CarriesNumbers())
	assert.True(t, QuestionLikert.CarriesNumbers())
	assert.False(t, QuestionEmail.CarriesNumbers())
	assert.False(t, QuestionMultipleChoice.CarriesNumbers())
}
