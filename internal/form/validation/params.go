package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	strs "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/strings"
)

// Kind is the accepted type of one raw parameter slot.
type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return "absent"
	}
}

// Slot declares one of the four raw parameter positions of a rule.
// Injected slots are filled by the caller at evaluation time and must be
// empty when an administrator stores the validation.
type Slot struct {
	Kind     Kind
	Injected bool
}

// RawParams are the four loosely typed parameter values as stored with a
// validation (valueOne..valueFour).
type RawParams [4]any

// Params is the compiled, typed form of a validation's parameters. Exactly one
// concrete type exists per parameter shape.
type Params interface {
	isParams()
}

// NoParams is used by rules that take no parameters.
type NoParams struct{}

// Bound is a single numeric bound.
type Bound struct{ Value float64 }

// Range is an inclusive numeric interval.
type Range struct{ Min, Max float64 }

// Count is a non-negative integer threshold (lengths, word counts, ages).
type Count struct{ N int }

// DateBound is a single calendar date.
type DateBound struct{ Date time.Time }

// DateRange is a pair of calendar dates, From <= To.
type DateRange struct{ From, To time.Time }

// EmailSet holds the lower-cased emails a candidate already used.
type EmailSet struct{ Emails map[string]struct{} }

func (NoParams) isParams()  {}
func (Bound) isParams()     {}
func (Range) isParams()     {}
func (Count) isParams()     {}
func (DateBound) isParams() {}
func (DateRange) isParams() {}
func (EmailSet) isParams()  {}

// kindOf reports the slot kind a raw value carries.
func kindOf(v any) (Kind, error) {
	switch v.(type) {
	case nil:
		return KindAbsent, nil
	case string:
		return KindString, nil
	case bool:
		return KindBoolean, nil
	case float64, float32, int, int32, int64, json.Number:
		return KindNumber, nil
	default:
		return KindAbsent, fmt.Errorf("unsupported parameter type %T", v)
	}
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

// checkShape enforces the declared slot kinds. When runtime is false the
// injected slots must be empty; when true they must carry their kind.
func checkShape(spec *Spec, raw RawParams, runtime bool) error {
	for i, slot := range spec.Slots {
		got, err := kindOf(raw[i])
		if err != nil {
			return shapeError(spec, i, err.Error())
		}
		want := slot.Kind
		if slot.Injected && !runtime {
			want = KindAbsent
		}
		if got == want {
			continue
		}
		switch {
		case want == KindAbsent:
			return shapeError(spec, i, "unexpected parameter")
		case got == KindAbsent:
			return shapeError(spec, i, "missing "+want.String()+" parameter")
		default:
			return shapeError(spec, i, "expected "+want.String()+", got "+got.String())
		}
	}
	return nil
}

func shapeError(spec *Spec, slot int, reason string) error {
	return fmt.Errorf("%w: %s (type %d) parameter %d: %s", ErrInvalidSpecification, spec.Name, spec.Type, slot+1, reason)
}

// Per-shape compilers. They run after checkShape so slot kinds are known.

func compileNone(*Spec, RawParams) (Params, error) {
	return NoParams{}, nil
}

func compileBound(spec *Spec, raw RawParams) (Params, error) {
	v, err := asFloat(raw[0])
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, shapeError(spec, 0, "not a finite number")
	}
	return Bound{Value: v}, nil
}

func compileRange(spec *Spec, raw RawParams) (Params, error) {
	lo, err := asFloat(raw[0])
	if err != nil || math.IsNaN(lo) || math.IsInf(lo, 0) {
		return nil, shapeError(spec, 0, "not a finite number")
	}
	hi, err := asFloat(raw[1])
	if err != nil || math.IsNaN(hi) || math.IsInf(hi, 0) {
		return nil, shapeError(spec, 1, "not a finite number")
	}
	if lo > hi {
		return nil, shapeError(spec, 1, "upper bound is below lower bound")
	}
	return Range{Min: lo, Max: hi}, nil
}

func compileCount(spec *Spec, raw RawParams) (Params, error) {
	v, err := asFloat(raw[0])
	if err != nil || v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return nil, shapeError(spec, 0, "not a non-negative integer")
	}
	return Count{N: int(v)}, nil
}

func compileDate(spec *Spec, raw RawParams) (Params, error) {
	d, ok := ParseDate(raw[0].(string))
	if !ok {
		return nil, shapeError(spec, 0, "not a YYYY-MM-DD date")
	}
	return DateBound{Date: d}, nil
}

func compileDateRange(spec *Spec, raw RawParams) (Params, error) {
	from, ok := ParseDate(raw[0].(string))
	if !ok {
		return nil, shapeError(spec, 0, "not a YYYY-MM-DD date")
	}
	to, ok := ParseDate(raw[1].(string))
	if !ok {
		return nil, shapeError(spec, 1, "not a YYYY-MM-DD date")
	}
	if to.Before(from) {
		return nil, shapeError(spec, 1, "end date is before start date")
	}
	return DateRange{From: from, To: to}, nil
}

// compileEmails is lenient at design time: the slot is empty until the
// caller injects prior emails.
func compileEmails(_ *Spec, raw RawParams) (Params, error) {
	set := EmailSet{Emails: map[string]struct{}{}}
	joined, _ := raw[0].(string)
	for _, e := range strs.SplitValues(joined) {
		set.Emails[strings.ToLower(e)] = struct{}{}
	}
	return set, nil
}
