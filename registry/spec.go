package registry

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/pipelinekit/validation"
)

// Form controls rendered for each kind.
const (
	ControlString      = "StringControl"
	ControlNumber      = "NumberControl"
	ControlBoolean     = "BooleanControl"
	ControlEnum        = "EnumControl"
	ControlNestedEnum  = "NestedEnumControl"
	ControlStringArray = "StringArrayControl"
)

// Property types accepted in a PropertySpec.
const (
	TypeString     = "string"
	TypeNumber     = "number"
	TypeInteger    = "integer"
	TypeBoolean    = "boolean"
	TypeArray      = "array"
	TypeNestedEnum = "nested-enum"
)

// NodeTypeFile marks a node spec whose nodes point at a file.
const NodeTypeFile = "file"

// NodeSpec is the authoring format of a node type.
type NodeSpec struct {
	Op          string         `json:"op" yaml:"op" validate:"required"`
	Label       string         `json:"label" yaml:"label"`
	Description string         `json:"description,omitempty" yaml:"description"`
	Type        string         `json:"type,omitempty" yaml:"type" validate:"omitempty,oneof=file"`
	Extensions  []string       `json:"extensions,omitempty" yaml:"extensions"`
	Properties  []PropertySpec `json:"properties" yaml:"properties" validate:"dive"`
}

// PropertySpec is the authoring format of a property. It mirrors the
// JSON-schema keywords understood by the validators.
type PropertySpec struct {
	ID          string `json:"id" yaml:"id" validate:"required,excludesall= "`
	Title       string `json:"title,omitempty" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description"`
	Type        string `json:"type" yaml:"type" validate:"required,oneof=string number integer boolean array nested-enum"`
	Required    bool   `json:"required,omitempty" yaml:"required"`
	Default     any    `json:"default,omitempty" yaml:"default"`

	Pattern             string   `json:"pattern,omitempty" yaml:"pattern"`
	PatternErrorMessage string   `json:"patternErrorMessage,omitempty" yaml:"patternErrorMessage"`
	MinLength           *int     `json:"minLength,omitempty" yaml:"minLength" validate:"omitempty,gte=0"`
	MaxLength           *int     `json:"maxLength,omitempty" yaml:"maxLength" validate:"omitempty,gte=0"`
	Format              string   `json:"format,omitempty" yaml:"format" validate:"omitempty,oneof=file"`
	Enum                []string `json:"enum,omitempty" yaml:"enum"`

	Minimum          *float64 `json:"minimum,omitempty" yaml:"minimum"`
	Maximum          *float64 `json:"maximum,omitempty" yaml:"maximum"`
	ExclusiveMinimum Bound    `json:"exclusiveMinimum,omitzero" yaml:"exclusiveMinimum"`
	ExclusiveMaximum Bound    `json:"exclusiveMaximum,omitzero" yaml:"exclusiveMaximum"`
	MultipleOf       *float64 `json:"multipleOf,omitempty" yaml:"multipleOf" validate:"omitempty,gt=0"`

	UniqueItems     bool `json:"uniqueItems,omitempty" yaml:"uniqueItems"`
	MinItems        *int `json:"minItems,omitempty" yaml:"minItems" validate:"omitempty,gte=0"`
	MaxItems        *int `json:"maxItems,omitempty" yaml:"maxItems" validate:"omitempty,gte=0"`
	KeyValueEntries bool `json:"keyValueEntries,omitempty" yaml:"keyValueEntries"`

	Options        []NestedEnumData `json:"options,omitempty" yaml:"options" validate:"dive"`
	AllowNoOptions bool             `json:"allowNoOptions,omitempty" yaml:"allowNoOptions"`
}

// FromSpecs validates node specs and builds a registry from them. All spec
// errors are collected into one validation error.
func FromSpecs(specs []NodeSpec) (*Registry, error) {
	v := validation.New()
	ops := map[string]bool{}
	for i, spec := range specs {
		prefix := fmt.Sprintf("node_types[%d]", i)
		v.Merge(prefix, validation.Validate(spec))
		v.Unique(prefix+".op", spec.Op, ops)
		seen := map[string]bool{"label": true}
		if spec.Type == NodeTypeFile {
			seen["filename"] = true
		}
		checkProperties(v, prefix, spec.Properties, seen)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	r := New()
	for _, spec := range specs {
		r.Register(spec.NodeType())
	}
	return r, nil
}

// Properties validates a pipeline property schema and converts it. Unlike
// node types no label or filename property is added.
func Properties(specs []PropertySpec) ([]Property, error) {
	v := validation.New()
	for i, spec := range specs {
		v.Merge(fmt.Sprintf("properties[%d]", i), validation.Validate(spec))
	}
	checkProperties(v, "", specs, map[string]bool{})
	if err := v.Validate(); err != nil {
		return nil, err
	}

	props := make([]Property, 0, len(specs))
	for _, spec := range specs {
		props = append(props, spec.Property())
	}
	return props, nil
}

func checkProperties(v *validation.Validator, prefix string, specs []PropertySpec, seen map[string]bool) {
	for i, p := range specs {
		field := fmt.Sprintf("properties[%d]", i)
		if prefix != "" {
			field = prefix + "." + field
		}
		if p.ID != "" {
			v.Unique(field+".id", p.ID, seen)
		}
		v.Regexp(field+".pattern", p.Pattern)
		v.OrderedInt(field+".minLength", p.MinLength, p.MaxLength)
		v.OrderedInt(field+".minItems", p.MinItems, p.MaxItems)
		v.OrderedFloat(field+".minimum", p.Minimum, p.Maximum)
		v.Custom(p.Type != TypeNestedEnum || len(p.Options) > 0, field+".options", "is required for nested-enum properties")
	}
}

// NodeType converts a spec into a registry entry. A label property is always
// added, and file nodes also get a filename property.
func (s NodeSpec) NodeType() NodeType {
	t := NodeType{
		Op:          s.Op,
		Label:       s.Label,
		Description: s.Description,
		Extensions:  s.Extensions,
	}
	if t.Label == "" {
		t.Label = s.Op
	}
	for _, p := range s.Properties {
		t.Properties = append(t.Properties, p.Property())
	}
	t.Properties = append(t.Properties, PropertySpec{
		ID:    "label",
		Title: "Label",
		Type:  TypeString,
	}.Property())
	if s.Type == NodeTypeFile {
		t.Properties = append(t.Properties, PropertySpec{
			ID:       "filename",
			Title:    "File",
			Type:     TypeString,
			Format:   NodeTypeFile,
			Required: true,
		}.withExtensions(s.Extensions))
	}
	return t
}

func (s PropertySpec) withExtensions(ext []string) Property {
	p := s.Property()
	if c, ok := p.Constraints.(StringConstraints); ok {
		c.Extensions = ext
		p.Constraints = c
	}
	return p
}

// Property converts a spec into a typed property with its default value.
func (s PropertySpec) Property() Property {
	p := Property{
		ID:          s.ID,
		Label:       s.Title,
		Description: s.Description,
		Required:    s.Required,
	}
	if p.Label == "" {
		p.Label = s.ID
	}

	switch s.Type {
	case TypeBoolean:
		p.Control = ControlBoolean
		p.Constraints = BooleanConstraints{}
		p.Default = false
		if b, ok := s.Default.(bool); ok {
			p.Default = b
		}
	case TypeNumber, TypeInteger:
		p.Control = ControlNumber
		p.Constraints = NumberConstraints{
			Integer:          s.Type == TypeInteger,
			MultipleOf:       s.MultipleOf,
			Minimum:          s.Minimum,
			Maximum:          s.Maximum,
			ExclusiveMinimum: s.ExclusiveMinimum,
			ExclusiveMaximum: s.ExclusiveMaximum,
		}
		p.Default = s.Default
	case TypeArray:
		p.Control = ControlStringArray
		p.Constraints = StringArrayConstraints{
			UniqueItems:     s.UniqueItems,
			MinItems:        s.MinItems,
			MaxItems:        s.MaxItems,
			KeyValueEntries: s.KeyValueEntries,
		}
		p.Default = []any{}
		if s.Default != nil {
			p.Default = s.Default
		}
	case TypeNestedEnum:
		p.Control = ControlNestedEnum
		p.Constraints = NestedEnumConstraints{Data: s.Options, AllowNoOptions: s.AllowNoOptions}
		p.Default = s.Default
	default:
		if len(s.Enum) > 0 {
			p.Control = ControlEnum
			p.Constraints = EnumConstraints{Values: s.Enum}
		} else {
			p.Control = ControlString
			p.Constraints = StringConstraints{
				Pattern:             s.Pattern,
				PatternErrorMessage: s.PatternErrorMessage,
				MinLength:           s.MinLength,
				MaxLength:           s.MaxLength,
				Format:              s.Format,
			}
		}
		p.Default = ""
		if s.Default != nil {
			p.Default = s.Default
		}
	}
	return p
}

// MarshalJSON adds the constraint kind to the encoded property.
func (p Property) MarshalJSON() ([]byte, error) {
	type plain Property
	return json.Marshal(struct {
		plain
		Kind Kind `json:"kind"`
	}{plain(p), p.Kind()})
}
