package registry

// Kind names a property value kind.
type Kind string

const (
	KindString      Kind = "string"
	KindNumber      Kind = "number"
	KindBoolean     Kind = "boolean"
	KindEnum        Kind = "enum"
	KindNestedEnum  Kind = "nested-enum"
	KindStringArray Kind = "string-array"
)

// Constraints is the closed set of per-kind constraint structs. Only the
// types in this file implement it, so a type switch over them is exhaustive.
type Constraints interface {
	Kind() Kind
	sealed()
}

// StringConstraints restrict a string value.
type StringConstraints struct {
	Pattern             string `json:"pattern,omitempty"`
	PatternErrorMessage string `json:"patternErrorMessage,omitempty"`
	MinLength           *int   `json:"minLength,omitempty"`
	MaxLength           *int   `json:"maxLength,omitempty"`
	// Format is "file" or empty.
	Format     string   `json:"format,omitempty"`
	Extensions []string `json:"extensions,omitempty"`
}

// NumberConstraints restrict a numeric value given as source text.
type NumberConstraints struct {
	Integer          bool     `json:"integer,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum Bound    `json:"exclusiveMinimum,omitzero"`
	ExclusiveMaximum Bound    `json:"exclusiveMaximum,omitzero"`
}

// BooleanConstraints carry nothing; booleans are never invalid.
type BooleanConstraints struct{}

// EnumConstraints restrict a string to a fixed, case-sensitive set.
type EnumConstraints struct {
	Values []string `json:"enum"`
}

// NestedEnumConstraints restrict a value/option pair to a two-level set.
type NestedEnumConstraints struct {
	Data           []NestedEnumData `json:"data"`
	AllowNoOptions bool             `json:"allowNoOptions,omitempty"`
}

// NestedEnumData is a first-level choice and its options.
type NestedEnumData struct {
	Value   string             `json:"value" yaml:"value" validate:"required"`
	Label   string             `json:"label,omitempty" yaml:"label"`
	Options []NestedEnumOption `json:"options,omitempty" yaml:"options" validate:"dive"`
}

// NestedEnumOption is a second-level choice.
type NestedEnumOption struct {
	Value string `json:"value" yaml:"value" validate:"required"`
	Label string `json:"label,omitempty" yaml:"label"`
}

// StringArrayConstraints restrict a list of strings.
type StringArrayConstraints struct {
	UniqueItems     bool `json:"uniqueItems,omitempty"`
	MinItems        *int `json:"minItems,omitempty"`
	MaxItems        *int `json:"maxItems,omitempty"`
	KeyValueEntries bool `json:"keyValueEntries,omitempty"`
}

func (StringConstraints) Kind() Kind      { return KindString }
func (NumberConstraints) Kind() Kind      { return KindNumber }
func (BooleanConstraints) Kind() Kind     { return KindBoolean }
func (EnumConstraints) Kind() Kind        { return KindEnum }
func (NestedEnumConstraints) Kind() Kind  { return KindNestedEnum }
func (StringArrayConstraints) Kind() Kind { return KindStringArray }

func (StringConstraints) sealed()      {}
func (NumberConstraints) sealed()      {}
func (BooleanConstraints) sealed()     {}
func (EnumConstraints) sealed()        {}
func (NestedEnumConstraints) sealed()  {}
func (StringArrayConstraints) sealed() {}
