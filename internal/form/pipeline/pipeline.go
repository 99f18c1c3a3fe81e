// Package pipeline decides whether an answer value satisfies the validations
// declared on its question.
package pipeline

import (
	"fmt"
	"time"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/validation"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
	strs "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/strings"
)

// Input is one answer to check.
type Input struct {
	Value        string
	QuestionType models.QuestionType
	Validations  []models.Validation
	// PriorEmails are the emails the candidate used in other forms of the
	// process; they feed the email uniqueness rule.
	PriorEmails []string
	Now         time.Time
}

// Failure is one rule the value did not satisfy.
type Failure struct {
	Type    validation.Type
	Message string
}

// Outcome lists every failure, in declaration order.
type Outcome struct {
	Failures []Failure
}

func (o Outcome) Valid() bool {
	return len(o.Failures) == 0
}

// FirstMessage is the message surfaced to the candidate.
func (o Outcome) FirstMessage() string {
	if len(o.Failures) == 0 {
		return ""
	}
	return o.Failures[0].Message
}

// Pipeline runs applicable validations through the registry.
type Pipeline struct {
	registry *validation.Registry
	allowed  map[models.QuestionType]map[validation.Type]bool
}

func New(registry *validation.Registry) *Pipeline {
	return &Pipeline{
		registry: registry,
		allowed:  allowList(),
	}
}

// Registry exposes the registry the pipeline evaluates with.
func (p *Pipeline) Registry() *validation.Registry {
	return p.registry
}

// Allows reports whether a validation type applies to a question type.
func (p *Pipeline) Allows(qType models.QuestionType, vType validation.Type) bool {
	return p.allowed[qType][vType]
}

// Applicable keeps the validations that apply to the question type.
func (p *Pipeline) Applicable(qType models.QuestionType, validations []models.Validation) []models.Validation {
	out := make([]models.Validation, 0, len(validations))
	for _, v := range validations {
		if p.Allows(qType, v.Type) {
			out = append(out, v)
		}
	}
	return out
}

// Run evaluates every applicable validation without short-circuiting. The
// error is reserved for configuration problems: a stored validation whose
// parameters do not fit its rule.
func (p *Pipeline) Run(in Input) (Outcome, error) {
	var out Outcome
	for _, v := range p.Applicable(in.QuestionType, in.Validations) {
		raw := v.Params
		if spec, ok := p.registry.Lookup(v.Type); ok && spec.Injects() {
			raw[0] = strs.JoinValues(in.PriorEmails)
		}
		compiled, err := p.registry.Compile(v.Type, raw)
		if err != nil {
			return Outcome{}, fmt.Errorf("validation %s: %w", v.ID, err)
		}
		if res := compiled.Evaluate(in.Value, in.Now); !res.Valid {
			out.Failures = append(out.Failures, Failure{Type: v.Type, Message: res.Message})
		}
	}
	return out, nil
}

// Validate runs the pipeline and folds the outcome into a coded error: the
// first failure message as validation_error, or internal_error for a broken
// configuration.
func (p *Pipeline) Validate(in Input) error {
	out, err := p.Run(in)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "validation configuration error")
	}
	if !out.Valid() {
		return dErrors.New(dErrors.CodeValidation, out.FirstMessage())
	}
	return nil
}

// CheckDefinitions is the design-time check for validations an administrator
// attaches to a question: known type, allowed for the question type, and
// parameters that compile.
func (p *Pipeline) CheckDefinitions(qType models.QuestionType, validations []models.Validation) error {
	seen := make(map[validation.Type]bool, len(validations))
	for _, v := range validations {
		spec, ok := p.registry.Lookup(v.Type)
		if !ok {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("validation type %d does not exist", v.Type))
		}
		if !p.Allows(qType, v.Type) {
			return dErrors.New(dErrors.CodeValidation,
				fmt.Sprintf("validation %s is not allowed for %s questions", spec.Name, qType))
		}
		if seen[v.Type] {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("validation %s is declared more than once", spec.Name))
		}
		seen[v.Type] = true
		if _, err := p.registry.CompileStored(v.Type, v.Params); err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("validation %s has invalid parameters", spec.Name))
		}
	}
	return nil
}
