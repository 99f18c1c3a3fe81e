package pipeline

import (
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	v "github.com/werterpires/salt-in-forms-back-sub000/internal/form/validation"
)

// allowList maps each question type to the validation types that apply to it.
// A validation outside the list is ignored at answer time and rejected at
// design time.
func allowList() map[models.QuestionType]map[v.Type]bool {
	requiredOnly := []v.Type{v.Required}
	text := []v.Type{
		v.Required, v.GreaterThanOrEqual, v.GreaterThan, v.LessThanOrEqual, v.LessThan,
		v.NumberBetween, v.MinLength, v.MaxLength, v.ExactLength,
		v.IsNumeric, v.IsAlpha, v.IsAlphanumeric, v.IsAlphaSpace,
		v.MinWords, v.MaxWords, v.IsEmail, v.IsURL,
	}
	fields := make([]v.Type, 0, int(v.PastDate))
	for t := v.Required; t <= v.PastDate; t++ {
		fields = append(fields, t)
	}

	table := map[models.QuestionType][]v.Type{
		models.QuestionOpenAnswer:           text,
		models.QuestionMultipleChoice:       requiredOnly,
		models.QuestionSingleChoice:         requiredOnly,
		models.QuestionLikert:               requiredOnly,
		models.QuestionSingleChoiceMatrix:   requiredOnly,
		models.QuestionMultipleChoiceMatrix: requiredOnly,
		models.QuestionTime:                 requiredOnly,
		models.QuestionDate: {
			v.Required, v.IsDate, v.MinDate, v.MaxDate, v.DateBetweenInclusive, v.DateBetweenExclusive,
		},
		models.QuestionEmail: {v.Required, v.IsEmail, v.UniqueEmail},
		models.QuestionMultipleResponses: {
			v.Required, v.MinLength, v.MaxLength, v.ExactLength,
			v.IsNumeric, v.IsAlpha, v.IsAlphanumeric, v.IsAlphaSpace, v.MinWords, v.MaxWords,
		},
		models.QuestionFields: fields,
	}

	out := make(map[models.QuestionType]map[v.Type]bool, len(table))
	for qType, types := range table {
		set := make(map[v.Type]bool, len(types))
		for _, t := range types {
			set[t] = true
		}
		out[qType] = set
	}
	return out
}
