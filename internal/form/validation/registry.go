// Package validation holds the catalog of answer validation rules.
//
// A Registry is built once at startup and injected wherever answers or
// validation definitions are checked. Each rule declares the kinds of its four
// raw parameter slots; Compile turns stored raw parameters into a typed Params
// value so rule bodies never inspect loosely typed input. A parameter-shape
// mismatch is a configuration error (ErrInvalidSpecification), never a failed
// answer.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Type identifies a validation rule. Values are persisted; never renumber.
type Type int

const (
	Required Type = iota + 1
	GreaterThanOrEqual
	GreaterThan
	LessThanOrEqual
	LessThan
	NumberBetween
	MinLength
	MaxLength
	ExactLength
	IsDate
	MinDate
	MaxDate
	DateBetweenInclusive
	DateBetweenExclusive
	MinAge
	MaxAge
	IsNumeric
	IsAlpha
	IsAlphanumeric
	IsAlphaSpace
	MinWords
	MaxWords
	IsEmail
	IsURL
	FutureDate
	PastDate
	UniqueEmail
)

var (
	// ErrInvalidSpecification marks stored parameters that do not match the
	// rule's declared shape.
	ErrInvalidSpecification = errors.New("invalid validation specification")
	// ErrUnknownType marks a validation type absent from the registry.
	ErrUnknownType = errors.New("unknown validation type")
)

// Result is the outcome of evaluating one rule against one value.
type Result struct {
	Valid   bool
	Message string
}

func pass() Result              { return Result{Valid: true} }
func fail(message string) Result { return Result{Message: message} }

// Spec describes one rule.
type Spec struct {
	Type        Type
	Name        string
	Description string
	Slots       [4]Slot

	compile func(*Spec, RawParams) (Params, error)
	check   func(value string, p Params, now time.Time) Result
}

// Injects reports whether the rule expects caller-supplied parameters at
// evaluation time.
func (s *Spec) Injects() bool {
	for _, slot := range s.Slots {
		if slot.Injected {
			return true
		}
	}
	return false
}

// Compiled is a rule bound to typed parameters, ready to evaluate.
type Compiled struct {
	spec   *Spec
	params Params
}

func (c Compiled) Type() Type     { return c.spec.Type }
func (c Compiled) Name() string   { return c.spec.Name }
func (c Compiled) Params() Params { return c.params }

// Evaluate runs the rule. A blank value passes every rule except Required;
// emptiness is Required's concern alone.
func (c Compiled) Evaluate(value string, now time.Time) Result {
	if c.spec.Type != Required && strings.TrimSpace(value) == "" {
		return pass()
	}
	return c.spec.check(value, c.params, now)
}

// Registry maps validation types to their specifications. It is immutable
// after construction and safe for concurrent use.
type Registry struct {
	specs map[Type]*Spec
}

// NewRegistry builds the catalog of all rules.
func NewRegistry() *Registry {
	r := &Registry{specs: make(map[Type]*Spec)}
	for _, s := range catalog() {
		r.specs[s.Type] = s
	}
	return r
}

// Lookup returns the specification for t.
func (r *Registry) Lookup(t Type) (*Spec, bool) {
	s, ok := r.specs[t]
	return s, ok
}

// Types lists every registered type in ascending order.
func (r *Registry) Types() []Type {
	out := make([]Type, 0, len(r.specs))
	for t := range r.specs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CompileStored compiles parameters as an administrator stores them: injected
// slots must be empty.
func (r *Registry) CompileStored(t Type, raw RawParams) (Compiled, error) {
	return r.compile(t, raw, false)
}

// Compile compiles parameters for evaluation, with injected slots already
// filled in by the caller.
func (r *Registry) Compile(t Type, raw RawParams) (Compiled, error) {
	return r.compile(t, raw, true)
}

func (r *Registry) compile(t Type, raw RawParams, runtime bool) (Compiled, error) {
	spec, ok := r.specs[t]
	if !ok {
		return Compiled{}, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	if err := checkShape(spec, raw, runtime); err != nil {
		return Compiled{}, err
	}
	params, err := spec.compile(spec, raw)
	if err != nil {
		return Compiled{}, err
	}
	return Compiled{spec: spec, params: params}, nil
}

// Evaluate compiles and runs a rule in one step.
func (r *Registry) Evaluate(t Type, value string, raw RawParams, now time.Time) (Result, error) {
	c, err := r.Compile(t, raw)
	if err != nil {
		return Result{}, err
	}
	return c.Evaluate(value, now), nil
}
