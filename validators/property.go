package validators

import (
	"fmt"
	"strconv"

	"github.com/kbukum/pipelinekit/registry"
)

// ForProperty runs the validator family matching the property's constraints
// against a raw document value and returns the failing messages.
func ForProperty(prop registry.Property, value any) []string {
	switch c := prop.Constraints.(type) {
	case registry.StringConstraints:
		return ErrorMessages(AsString(value), String(StringOptions{
			Required:            prop.Required,
			Pattern:             c.Pattern,
			PatternErrorMessage: c.PatternErrorMessage,
			MinLength:           c.MinLength,
			MaxLength:           c.MaxLength,
			Format:              c.Format,
		}))
	case registry.NumberConstraints:
		return ErrorMessages(AsString(value), Number(NumberOptions{
			Required:     prop.Required,
			Integer:      c.Integer,
			MultipleOf:   c.MultipleOf,
			Minimum:      c.Minimum,
			Maximum:      c.Maximum,
			ExclusiveMin: c.ExclusiveMinimum.Resolve(c.Minimum),
			ExclusiveMax: c.ExclusiveMaximum.Resolve(c.Maximum),
		}))
	case registry.EnumConstraints:
		return ErrorMessages(AsString(value), Enum(EnumOptions{
			Required: prop.Required,
			Values:   c.Values,
		}))
	case registry.NestedEnumConstraints:
		return ErrorMessages(AsNested(value), NestedEnum(NestedEnumOptions{
			Required:       prop.Required,
			Data:           c.Data,
			AllowNoOptions: c.AllowNoOptions,
		}))
	case registry.StringArrayConstraints:
		return ErrorMessages(AsStrings(value), StringArray(StringArrayOptions{
			UniqueItems:     c.UniqueItems,
			MinItems:        c.MinItems,
			MaxItems:        c.MaxItems,
			KeyValueEntries: c.KeyValueEntries,
		}))
	case registry.BooleanConstraints, nil:
		return nil
	default:
		panic(fmt.Sprintf("validators: unhandled constraints %T", c))
	}
}

// AsString renders a scalar document value as form text.
func AsString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

// AsStrings converts a document list to strings.
func AsStrings(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, AsString(item))
		}
		return out
	default:
		return nil
	}
}

// AsNested converts a stored {"value", "option"} object to a selection.
func AsNested(value any) *NestedValue {
	switch v := value.(type) {
	case *NestedValue:
		return v
	case NestedValue:
		return &v
	case map[string]any:
		return &NestedValue{Value: AsString(v["value"]), Option: AsString(v["option"])}
	default:
		return nil
	}
}
