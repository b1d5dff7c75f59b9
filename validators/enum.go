package validators

import "github.com/kbukum/pipelinekit/registry"

// EnumOptions configures Enum.
type EnumOptions struct {
	Required bool
	Values   []string
}

// Enum returns the validators for a fixed-choice string property. An empty
// value is left to the required check.
func Enum(o EnumOptions) []Validator[string] {
	return []Validator[string]{
		{
			Enabled: o.Required,
			IsValid: func(v string) bool { return v != "" },
		},
		{
			Enabled: o.Values != nil,
			IsValid: func(v string) bool {
				if v == "" {
					return true
				}
				for _, allowed := range o.Values {
					if v == allowed {
						return true
					}
				}
				return false
			},
			Message: "Value must be a valid option",
		},
	}
}

// NestedValue is a selection in a nested enum.
type NestedValue struct {
	Value  string `json:"value"`
	Option string `json:"option"`
}

// NestedEnumOptions configures NestedEnum.
type NestedEnumOptions struct {
	Required       bool
	Data           []registry.NestedEnumData
	AllowNoOptions bool
}

// NestedEnum returns the validators for a value/option selection. A nil
// value means nothing is selected.
func NestedEnum(o NestedEnumOptions) []Validator[*NestedValue] {
	return []Validator[*NestedValue]{
		{
			Enabled: o.Required,
			IsValid: func(v *NestedValue) bool { return v != nil },
		},
		{
			Enabled: o.Data != nil,
			IsValid: func(v *NestedValue) bool {
				var sel NestedValue
				if v != nil {
					sel = *v
				}
				for _, item := range o.Data {
					if item.Value != sel.Value {
						continue
					}
					if o.AllowNoOptions {
						return true
					}
					for _, opt := range item.Options {
						if opt.Value == sel.Option {
							return true
						}
					}
					return false
				}
				return false
			},
			Message: "Value must be a valid option",
		},
	}
}
