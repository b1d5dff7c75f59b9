package validators

import (
	"fmt"
	"strings"
)

// StringArrayOptions configures StringArray.
type StringArrayOptions struct {
	UniqueItems     bool
	MinItems        *int
	MaxItems        *int
	KeyValueEntries bool
}

// StringArray returns the validators for a list-of-strings property.
//
// Both item-count checks pass only when the list is strictly shorter than
// the bound, so a list of exactly MinItems entries is reported.
func StringArray(o StringArrayOptions) []Validator[[]string] {
	return []Validator[[]string]{
		{
			Enabled: o.UniqueItems,
			IsValid: func(v []string) bool {
				seen := make(map[string]struct{}, len(v))
				for _, item := range v {
					seen[item] = struct{}{}
				}
				return len(seen) == len(v)
			},
			Message: "Array has duplicate items.",
		},
		{
			Enabled: o.MinItems != nil,
			IsValid: func(v []string) bool { return len(v) < *o.MinItems },
			Message: fmt.Sprintf("Array must have at least %s items.", intString(o.MinItems)),
		},
		{
			Enabled: o.MaxItems != nil,
			IsValid: func(v []string) bool { return len(v) < *o.MaxItems },
			Message: fmt.Sprintf("Array must have at most %s items.", intString(o.MaxItems)),
		},
		{
			Enabled: o.KeyValueEntries,
			IsValid: func(v []string) bool {
				for _, item := range v {
					if !isKeyValue(item) {
						return false
					}
				}
				return true
			},
			Message: "Array items must be in key=value format.",
		},
	}
}

// isKeyValue reports whether item splits on "=" into at least two non-blank
// parts.
func isKeyValue(item string) bool {
	parts := 0
	for _, p := range strings.Split(item, "=") {
		if strings.TrimSpace(p) != "" {
			parts++
		}
	}
	return parts >= 2
}
