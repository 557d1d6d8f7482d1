package descriptor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ValidationError reports a raw token that a checker rejected. It is the
// only failure a checker may return; anything else propagates as a defect.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Invalidf builds a ValidationError from a format string.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Checker coerces one raw command-line token into a typed value. A checker
// is a pure function: same token in, same value or ValidationError out.
type Checker func(raw string) (cty.Value, error)

// Typed returns a checker that converts the raw token to the given cty
// type using the standard conversion rules.
func Typed(ty cty.Type) Checker {
	return func(raw string) (cty.Value, error) {
		val, err := convert.Convert(cty.StringVal(raw), ty)
		if err != nil {
			return cty.NilVal, Invalidf("cannot read %q as %s", raw, ty.FriendlyName())
		}
		return val, nil
	}
}

// String accepts any token unchanged.
var String = Typed(cty.String)

// Number accepts any decimal number.
var Number = Typed(cty.Number)

// Bool accepts the usual boolean spellings ("true", "false", "1", "0").
var Bool = Typed(cty.Bool)

// Int accepts whole numbers only.
var Int Checker = func(raw string) (cty.Value, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return cty.NilVal, Invalidf("%q is not a whole number", raw)
	}
	return cty.NumberIntVal(n), nil
}

// Enum accepts only one of the given choices, verbatim.
func Enum(choices ...string) Checker {
	return func(raw string) (cty.Value, error) {
		for _, c := range choices {
			if raw == c {
				return cty.StringVal(raw), nil
			}
		}
		return cty.NilVal, Invalidf("%q is not one of %s", raw, strings.Join(choices, ", "))
	}
}
