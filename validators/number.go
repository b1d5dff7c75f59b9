package validators

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// NumberOptions configures Number. Exclusive bounds are already resolved:
// a boolean exclusive bound becomes the matching limit or nil.
type NumberOptions struct {
	Required     bool
	Integer      bool
	MultipleOf   *float64
	Minimum      *float64
	Maximum      *float64
	ExclusiveMin *float64
	ExclusiveMax *float64
}

// Number returns the validators for a number property. Values are the text
// typed into the form, so "10.0" and "10" are different inputs.
func Number(o NumberOptions) []Validator[string] {
	exMax, exMin := o.ExclusiveMax, o.ExclusiveMin

	return []Validator[string]{
		{
			Enabled: o.Required,
			IsValid: func(v string) bool { return v != "" },
		},
		{
			Enabled: true,
			IsValid: func(v string) bool { return v == "" || isNumber(v) },
			Message: "Value must be a number.",
		},
		{
			Enabled: exMax != nil && (o.Maximum == nil || *exMax <= *o.Maximum),
			IsValid: func(v string) bool { return toNumber(v) < *exMax },
			Message: fmt.Sprintf("Value must be strictly less than %s.", formatNumber(exMax)),
		},
		{
			Enabled: exMin != nil && (o.Minimum == nil || *exMin >= *o.Minimum),
			IsValid: func(v string) bool { return toNumber(v) > *exMin },
			Message: fmt.Sprintf("Value must be strictly greater than %s.", formatNumber(exMin)),
		},
		{
			Enabled: o.Maximum != nil && (exMax == nil || *exMax > *o.Maximum),
			IsValid: func(v string) bool { return toNumber(v) <= *o.Maximum },
			Message: fmt.Sprintf("Value must be less than or equal to %s.", formatNumber(o.Maximum)),
		},
		{
			Enabled: o.Minimum != nil && (exMin == nil || *exMin < *o.Minimum),
			IsValid: func(v string) bool { return toNumber(v) >= *o.Minimum },
			Message: fmt.Sprintf("Value must be greater than or equal to %s.", formatNumber(o.Minimum)),
		},
		{
			Enabled: o.MultipleOf != nil,
			IsValid: func(v string) bool { return math.Mod(toNumber(v), *o.MultipleOf) == 0 },
			Message: fmt.Sprintf("Value must be a multiple of %s.", formatNumber(o.MultipleOf)),
		},
		{
			Enabled: o.Integer,
			// "10.0" is rejected even though it has no fractional part.
			IsValid: func(v string) bool {
				return math.Mod(toNumber(v), 1) == 0 && !strings.Contains(v, ".")
			},
			Message: "Value must be an integer.",
		},
	}
}

// toNumber converts form text to a number with the rules of a browser number
// field. Blank text is zero. Prefixed integers ("0x1A", "0o17", "0b101") are
// accepted unsigned. The only infinity spelling is "Infinity" with an optional
// sign. Anything else unparseable is NaN, which fails every comparison.
func toNumber(v string) float64 {
	s := strings.TrimSpace(v)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if base := radixOf(s); base != 0 {
		digits := s[2:]
		if digits == "" || digits[0] == '+' || digits[0] == '-' {
			return math.NaN()
		}
		n, ok := new(big.Int).SetString(digits, base)
		if !ok {
			return math.NaN()
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		return f
	}
	// ParseFloat also takes hex floats, underscores and inf/nan spellings.
	if strings.ContainsAny(s, "xXnN_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

func radixOf(s string) int {
	if len(s) < 2 || s[0] != '0' {
		return 0
	}
	switch s[1] {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}

func isNumber(v string) bool {
	return strings.TrimSpace(v) != "" && !math.IsNaN(toNumber(v))
}

func formatNumber(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
