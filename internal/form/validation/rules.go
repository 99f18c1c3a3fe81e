package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	strs "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/strings"
)

var (
	numericPattern      = regexp.MustCompile(`^[0-9]+$`)
	alphaPattern        = regexp.MustCompile(`^\p{L}+$`)
	alphanumericPattern = regexp.MustCompile(`^[\p{L}\p{N}]+$`)
	alphaSpacePattern   = regexp.MustCompile(`^[\p{L}\s]+$`)
	emailPattern        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var (
	noSlots    = [4]Slot{}
	oneNumber  = [4]Slot{{Kind: KindNumber}}
	twoNumbers = [4]Slot{{Kind: KindNumber}, {Kind: KindNumber}}
	oneString  = [4]Slot{{Kind: KindString}}
	twoStrings = [4]Slot{{Kind: KindString}, {Kind: KindString}}
	injected   = [4]Slot{{Kind: KindString, Injected: true}}
)

func catalog() []*Spec {
	return []*Spec{
		{
			Type: Required, Name: "required",
			Description: "The answer must not be empty.",
			Slots:       noSlots, compile: compileNone,
			check: func(v string, _ Params, _ time.Time) Result {
				if strings.TrimSpace(v) == "" {
					return fail("This field is required.")
				}
				return pass()
			},
		},
		numeric(GreaterThanOrEqual, "greaterThanOrEqual", "The number must be greater than or equal to the bound.",
			func(n, b float64) bool { return n >= b }, "The value must be greater than or equal to %s."),
		numeric(GreaterThan, "greaterThan", "The number must be greater than the bound.",
			func(n, b float64) bool { return n > b }, "The value must be greater than %s."),
		numeric(LessThanOrEqual, "lessThanOrEqual", "The number must be less than or equal to the bound.",
			func(n, b float64) bool { return n <= b }, "The value must be less than or equal to %s."),
		numeric(LessThan, "lessThan", "The number must be less than the bound.",
			func(n, b float64) bool { return n < b }, "The value must be less than %s."),
		{
			Type: NumberBetween, Name: "numberBetween",
			Description: "The number must lie within the inclusive range.",
			Slots:       twoNumbers, compile: compileRange,
			check: func(v string, p Params, _ time.Time) Result {
				r := p.(Range)
				n, ok := parseNumber(v)
				if !ok {
					return fail("The value must be a number.")
				}
				if n < r.Min || n > r.Max {
					return fail(fmt.Sprintf("The value must be between %s and %s.", formatNumber(r.Min), formatNumber(r.Max)))
				}
				return pass()
			},
		},
		length(MinLength, "minLength", "The text must have at least N characters.",
			func(l, n int) bool { return l >= n }, "The answer must have at least %d characters."),
		length(MaxLength, "maxLength", "The text must have at most N characters.",
			func(l, n int) bool { return l <= n }, "The answer must have at most %d characters."),
		length(ExactLength, "exactLength", "The text must have exactly N characters.",
			func(l, n int) bool { return l == n }, "The answer must have exactly %d characters."),
		{
			Type: IsDate, Name: "isDate",
			Description: "The answer must be a valid YYYY-MM-DD date.",
			Slots:       noSlots, compile: compileNone,
			check: func(v string, _ Params, _ time.Time) Result {
				if _, ok := ParseDate(v); !ok {
					return fail("Enter a valid date in the format YYYY-MM-DD.")
				}
				return pass()
			},
		},
		{
			Type: MinDate, Name: "minDate",
			Description: "The date must be on or after the bound.",
			Slots:       oneString, compile: compileDate,
			check: dateCheck(func(d time.Time, p Params) (bool, string) {
				b := p.(DateBound).Date
				return !d.Before(b), fmt.Sprintf("The date must be on or after %s.", formatDate(b))
			}),
		},
		{
			Type: MaxDate, Name: "maxDate",
			Description: "The date must be on or before the bound.",
			Slots:       oneString, compile: compileDate,
			check: dateCheck(func(d time.Time, p Params) (bool, string) {
				b := p.(DateBound).Date
				return !d.After(b), fmt.Sprintf("The date must be on or before %s.", formatDate(b))
			}),
		},
		{
			Type: DateBetweenInclusive, Name: "dateBetweenInclusive",
			Description: "The date must lie within the range, bounds included.",
			Slots:       twoStrings, compile: compileDateRange,
			check: dateCheck(func(d time.Time, p Params) (bool, string) {
				r := p.(DateRange)
				ok := !d.Before(r.From) && !d.After(r.To)
				return ok, fmt.Sprintf("The date must be between %s and %s.", formatDate(r.From), formatDate(r.To))
			}),
		},
		{
			Type: DateBetweenExclusive, Name: "dateBetweenExclusive",
			Description: "The date must lie strictly inside the range.",
			Slots:       twoStrings, compile: compileDateRange,
			check: dateCheck(func(d time.Time, p Params) (bool, string) {
				r := p.(DateRange)
				ok := d.After(r.From) && d.Before(r.To)
				return ok, fmt.Sprintf("The date must be after %s and before %s.", formatDate(r.From), formatDate(r.To))
			}),
		},
		age(MinAge, "minAge", "The person must be at least N years old.",
			func(a, n int) bool { return a >= n }, "You must be at least %d years old."),
		age(MaxAge, "maxAge", "The person must be at most N years old.",
			func(a, n int) bool { return a <= n }, "You must be at most %d years old."),
		pattern(IsNumeric, "isNumeric", "Digits only.", numericPattern, "Only digits are allowed."),
		pattern(IsAlpha, "isAlpha", "Letters only.", alphaPattern, "Only letters are allowed."),
		pattern(IsAlphanumeric, "isAlphanumeric", "Letters and digits only.", alphanumericPattern, "Only letters and digits are allowed."),
		pattern(IsAlphaSpace, "isAlphaSpace", "Letters and spaces only.", alphaSpacePattern, "Only letters and spaces are allowed."),
		words(MinWords, "minWords", "The text must have at least N words.",
			func(w, n int) bool { return w >= n }, "The answer must have at least %d words."),
		words(MaxWords, "maxWords", "The text must have at most N words.",
			func(w, n int) bool { return w <= n }, "The answer must have at most %d words."),
		{
			Type: IsEmail, Name: "isEmail",
			Description: "The answer must look like an email address.",
			Slots:       noSlots, compile: compileNone,
			check: func(v string, _ Params, _ time.Time) Result {
				if !emailPattern.MatchString(strings.TrimSpace(v)) {
					return fail("Enter a valid email address.")
				}
				return pass()
			},
		},
		{
			Type: IsURL, Name: "isUrl",
			Description: "The answer must be an http or https URL.",
			Slots:       noSlots, compile: compileNone,
			check: func(v string, _ Params, _ time.Time) Result {
				if !isHTTPURL(strings.TrimSpace(v)) {
					return fail("Enter a valid URL.")
				}
				return pass()
			},
		},
		{
			Type: FutureDate, Name: "futureDate",
			Description: "The date must be after today.",
			Slots:       noSlots, compile: compileNone,
			check: func(v string, _ Params, now time.Time) Result {
				d, ok := ParseDate(v)
				if !ok {
					return fail("Enter a valid date in the format YYYY-MM-DD.")
				}
				if !d.After(today(now)) {
					return fail("The date must be in the future.")
				}
				return pass()
			},
		},
		{
			Type: PastDate, Name: "pastDate",
			Description: "The date must be before today.",
			Slots:       noSlots, compile: compileNone,
			check: func(v string, _ Params, now time.Time) Result {
				d, ok := ParseDate(v)
				if !ok {
					return fail("Enter a valid date in the format YYYY-MM-DD.")
				}
				if !d.Before(today(now)) {
					return fail("The date must be in the past.")
				}
				return pass()
			},
		},
		{
			Type: UniqueEmail, Name: "uniqueEmail",
			Description: "The email must not have been used by the candidate in another form of the process.",
			Slots:       injected, compile: compileEmails,
			check: func(v string, p Params, _ time.Time) Result {
				if _, taken := p.(EmailSet).Emails[strings.ToLower(strings.TrimSpace(v))]; taken {
					return fail("This email has already been used.")
				}
				return pass()
			},
		},
	}
}

func numeric(t Type, name, desc string, ok func(n, bound float64) bool, msg string) *Spec {
	return &Spec{
		Type: t, Name: name, Description: desc,
		Slots: oneNumber, compile: compileBound,
		check: func(v string, p Params, _ time.Time) Result {
			b := p.(Bound).Value
			n, parsed := parseNumber(v)
			if !parsed {
				return fail("The value must be a number.")
			}
			if !ok(n, b) {
				return fail(fmt.Sprintf(msg, formatNumber(b)))
			}
			return pass()
		},
	}
}

func length(t Type, name, desc string, ok func(l, n int) bool, msg string) *Spec {
	return &Spec{
		Type: t, Name: name, Description: desc,
		Slots: oneNumber, compile: compileCount,
		check: func(v string, p Params, _ time.Time) Result {
			n := p.(Count).N
			if !ok(utf8.RuneCountInString(strs.NormalizeSpaces(v)), n) {
				return fail(fmt.Sprintf(msg, n))
			}
			return pass()
		},
	}
}

func words(t Type, name, desc string, ok func(w, n int) bool, msg string) *Spec {
	return &Spec{
		Type: t, Name: name, Description: desc,
		Slots: oneNumber, compile: compileCount,
		check: func(v string, p Params, _ time.Time) Result {
			n := p.(Count).N
			if !ok(len(strings.Fields(v)), n) {
				return fail(fmt.Sprintf(msg, n))
			}
			return pass()
		},
	}
}

func age(t Type, name, desc string, ok func(a, n int) bool, msg string) *Spec {
	return &Spec{
		Type: t, Name: name, Description: desc,
		Slots: oneNumber, compile: compileCount,
		check: func(v string, p Params, now time.Time) Result {
			birth, parsed := ParseDate(v)
			if !parsed {
				return fail("Enter a valid date in the format YYYY-MM-DD.")
			}
			n := p.(Count).N
			if !ok(AgeOn(birth, now), n) {
				return fail(fmt.Sprintf(msg, n))
			}
			return pass()
		},
	}
}

func pattern(t Type, name, desc string, re *regexp.Regexp, msg string) *Spec {
	return &Spec{
		Type: t, Name: name, Description: desc,
		Slots: noSlots, compile: compileNone,
		check: func(v string, _ Params, _ time.Time) Result {
			if !re.MatchString(strings.TrimSpace(v)) {
				return fail(msg)
			}
			return pass()
		},
	}
}

func dateCheck(cmp func(d time.Time, p Params) (bool, string)) func(string, Params, time.Time) Result {
	return func(v string, p Params, _ time.Time) Result {
		d, ok := ParseDate(v)
		if !ok {
			return fail("Enter a valid date in the format YYYY-MM-DD.")
		}
		if within, msg := cmp(d, p); !within {
			return fail(msg)
		}
		return pass()
	}
}

func parseNumber(v string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isHTTPURL(v string) bool {
	if strings.ContainsAny(v, " \t\n") {
		return false
	}
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
