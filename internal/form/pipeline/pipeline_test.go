package pipeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/validation"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

type PipelineSuite struct {
	suite.Suite
	pipeline *Pipeline
	now      time.Time
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) SetupTest() {
	s.pipeline = New(validation.NewRegistry())
	s.now = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
}

func rule(t validation.Type, params ...any) models.Validation {
	var raw validation.RawParams
	copy(raw[:], params)
	return models.Validation{ID: uuid.New(), Type: t, Params: raw}
}

func (s *PipelineSuite) TestRequiredOnEmptyValue() {
	err := s.pipeline.Validate(Input{
		Value:        "",
		QuestionType: models.QuestionOpenAnswer,
		Validations:  []models.Validation{rule(validation.Required)},
		Now:          s.now,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal("This field is required.", dErrors.MessageOf(err))
}

func (s *PipelineSuite) TestEmptyValueSkipsOtherRules() {
	err := s.pipeline.Validate(Input{
		Value:        "",
		QuestionType: models.QuestionOpenAnswer,
		Validations: []models.Validation{
			rule(validation.MinLength, 10),
			rule(validation.IsEmail),
			rule(validation.GreaterThan, 3),
		},
		Now: s.now,
	})
	s.NoError(err)
}

func (s *PipelineSuite) TestCollectsAllFailuresAndSurfacesFirst() {
	in := Input{
		Value:        "ab",
		QuestionType: models.QuestionOpenAnswer,
		Validations: []models.Validation{
			rule(validation.MinLength, 5),
			rule(validation.IsNumeric),
			rule(validation.MaxWords, 3),
		},
		Now: s.now,
	}

	out, err := s.pipeline.Run(in)
	s.Require().NoError(err)
	s.Require().Len(out.Failures, 2)
	s.Equal(validation.MinLength, out.Failures[0].Type)
	s.Equal(validation.IsNumeric, out.Failures[1].Type)

	err = s.pipeline.Validate(in)
	s.Equal("The answer must have at least 5 characters.", dErrors.MessageOf(err))
}

func (s *PipelineSuite) TestIgnoresRulesNotAllowedForType() {
	err := s.pipeline.Validate(Input{
		Value:        "2025-01-10",
		QuestionType: models.QuestionDate,
		Validations: []models.Validation{
			rule(validation.IsNumeric),
			rule(validation.MinDate, "2025-01-01"),
		},
		Now: s.now,
	})
	s.NoError(err)
}

func (s *PipelineSuite) TestDateRejectsImpossibleDay() {
	err := s.pipeline.Validate(Input{
		Value:        "2025-02-30",
		QuestionType: models.QuestionDate,
		Validations:  []models.Validation{rule(validation.IsDate)},
		Now:          s.now,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *PipelineSuite) TestUniqueEmailUsesPriorEmails() {
	in := Input{
		Value:        "Ana@Example.com",
		QuestionType: models.QuestionEmail,
		Validations:  []models.Validation{rule(validation.IsEmail), rule(validation.UniqueEmail)},
		PriorEmails:  []string{"ana@example.com", "bob@example.com"},
		Now:          s.now,
	}
	err := s.pipeline.Validate(in)
	s.Require().Error(err)
	s.Equal("This email has already been used.", dErrors.MessageOf(err))

	in.PriorEmails = nil
	s.NoError(s.pipeline.Validate(in))
}

func (s *PipelineSuite) TestConfigurationErrorIsInternal() {
	err := s.pipeline.Validate(Input{
		Value:        "5",
		QuestionType: models.QuestionOpenAnswer,
		Validations:  []models.Validation{rule(validation.GreaterThan, "five")},
		Now:          s.now,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.ErrorIs(err, validation.ErrInvalidSpecification)
}

func (s *PipelineSuite) TestCheckDefinitions() {
	s.Run("accepts allowed and well-formed", func() {
		err := s.pipeline.CheckDefinitions(models.QuestionOpenAnswer, []models.Validation{
			rule(validation.Required),
			rule(validation.NumberBetween, 1, 10),
		})
		s.NoError(err)
	})

	s.Run("rejects type not allowed for question", func() {
		err := s.pipeline.CheckDefinitions(models.QuestionSingleChoice, []models.Validation{rule(validation.MinLength, 3)})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("validation minLength is not allowed for SINGLE_CHOICE questions", dErrors.MessageOf(err))
	})

	s.Run("rejects unknown type", func() {
		err := s.pipeline.CheckDefinitions(models.QuestionFields, []models.Validation{rule(validation.Type(40))})
		s.Require().Error(err)
	})

	s.Run("rejects malformed parameters", func() {
		err := s.pipeline.CheckDefinitions(models.QuestionFields, []models.Validation{rule(validation.MinAge, "18")})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.ErrorIs(err, validation.ErrInvalidSpecification)
	})

	s.Run("rejects pre-filled injected slot", func() {
		err := s.pipeline.CheckDefinitions(models.QuestionEmail, []models.Validation{rule(validation.UniqueEmail, "x@y.z")})
		s.Require().Error(err)
	})

	s.Run("rejects duplicates", func() {
		err := s.pipeline.CheckDefinitions(models.QuestionOpenAnswer, []models.Validation{
			rule(validation.Required), rule(validation.Required),
		})
		s.Require().Error(err)
	})
}

func TestAllowList(t *testing.T) {
	p := New(validation.NewRegistry())

	for _, qType := range models.QuestionTypes {
		assert.True(t, p.Allows(qType, validation.Required), "%s should allow required", qType)
	}

	dateAllowed := []validation.Type{
		validation.Required, validation.IsDate, validation.MinDate, validation.MaxDate,
		validation.DateBetweenInclusive, validation.DateBetweenExclusive,
	}
	for _, vt := range validation.NewRegistry().Types() {
		want := false
		for _, a := range dateAllowed {
			if a == vt {
				want = true
			}
		}
		assert.Equal(t, want, p.Allows(models.QuestionDate, vt), "DATE and type %d", vt)
	}

	require.False(t, p.Allows(models.QuestionFields, validation.UniqueEmail))
	require.True(t, p.Allows(models.QuestionFields, validation.PastDate))
	require.True(t, p.Allows(models.QuestionEmail, validation.UniqueEmail))
	require.False(t, p.Allows(models.QuestionTime, validation.IsDate))
}
