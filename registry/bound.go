package registry

import (
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Bound is a JSON-schema exclusive bound, which is either a number or a
// boolean that makes the matching minimum/maximum exclusive.
type Bound struct {
	Flag  *bool
	Value *float64
}

// NumberBound returns a numeric bound.
func NumberBound(v float64) Bound { return Bound{Value: &v} }

// FlagBound returns a boolean bound.
func FlagBound(b bool) Bound { return Bound{Flag: &b} }

// IsZero reports whether the bound is unset.
func (b Bound) IsZero() bool { return b.Flag == nil && b.Value == nil }

// Resolve returns the effective exclusive limit. A true flag borrows the
// inclusive limit, a false flag disables the bound.
func (b Bound) Resolve(limit *float64) *float64 {
	if b.Flag != nil {
		if *b.Flag {
			return limit
		}
		return nil
	}
	return b.Value
}

func (b Bound) MarshalJSON() ([]byte, error) {
	switch {
	case b.Flag != nil:
		return json.Marshal(*b.Flag)
	case b.Value != nil:
		return json.Marshal(*b.Value)
	default:
		return []byte("null"), nil
	}
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return b.set(raw)
}

func (b *Bound) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return b.set(raw)
}

func (b *Bound) set(raw any) error {
	*b = Bound{}
	switch v := raw.(type) {
	case nil:
	case bool:
		b.Flag = &v
	case float64:
		b.Value = &v
	case int:
		f := float64(v)
		b.Value = &f
	default:
		return fmt.Errorf("exclusive bound must be a number or a boolean, got %T", raw)
	}
	return nil
}
