package validators

import (
	"fmt"
	"regexp"
	"unicode/utf16"
)

// StringOptions configures String.
type StringOptions struct {
	Required            bool
	Pattern             string
	PatternErrorMessage string
	MinLength           *int
	MaxLength           *int
	Format              string
}

// String returns the validators for a string property.
func String(o StringOptions) []Validator[string] {
	var re *regexp.Regexp
	if o.Pattern != "" {
		re, _ = regexp.Compile(o.Pattern)
	}
	patternMessage := o.PatternErrorMessage
	if patternMessage == "" {
		patternMessage = fmt.Sprintf("Value must match regex `%s`.", o.Pattern)
	}

	return []Validator[string]{
		{
			Enabled: o.Required,
			IsValid: func(v string) bool { return v != "" },
		},
		{
			Enabled: o.MaxLength != nil,
			IsValid: func(v string) bool { return length(v) <= *o.MaxLength },
			Message: fmt.Sprintf("Value must be %s or fewer characters long.", intString(o.MaxLength)),
		},
		{
			Enabled: o.MinLength != nil,
			IsValid: func(v string) bool { return length(v) >= *o.MinLength },
			Message: fmt.Sprintf("Value must be %s or more characters long.", intString(o.MinLength)),
		},
		{
			Enabled: o.Pattern != "",
			// An uncompilable pattern matches nothing.
			IsValid: func(v string) bool { return re != nil && re.MatchString(v) },
			Message: patternMessage,
		},
		{
			Enabled: o.Format == "file",
			IsValid: func(string) bool { return true },
		},
	}
}

// length counts UTF-16 code units, the unit editors measure text in.
func length(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func intString(p *int) string {
	if p == nil {
		return ""
	}
	return fmt.Sprint(*p)
}
