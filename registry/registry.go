package registry

import (
	"sort"
	"sync"
)

// Property describes one editable value of a node or pipeline.
type Property struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Description string      `json:"description,omitempty"`
	Required    bool        `json:"required,omitempty"`
	Default     any         `json:"default,omitempty"`
	Control     string      `json:"control"`
	Constraints Constraints `json:"constraints"`
}

// Kind returns the kind of the property's constraints.
func (p Property) Kind() Kind {
	if p.Constraints == nil {
		return KindString
	}
	return p.Constraints.Kind()
}

// NodeType is a registry entry: the schema for every node with this op.
type NodeType struct {
	Op          string     `json:"op"`
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	Extensions  []string   `json:"extensions,omitempty"`
	Properties  []Property `json:"properties"`
}

// Property returns the property with the given id.
func (t *NodeType) Property(id string) (*Property, bool) {
	for i := range t.Properties {
		if t.Properties[i].ID == id {
			return &t.Properties[i], true
		}
	}
	return nil, false
}

// Registry holds node types by op, in registration order.
type Registry struct {
	mu    sync.RWMutex
	types map[string]NodeType
	order []string
}

// New creates a registry holding the given types.
func New(types ...NodeType) *Registry {
	r := &Registry{types: make(map[string]NodeType, len(types))}
	for _, t := range types {
		r.Register(t)
	}
	return r
}

// Register adds a node type, replacing any type with the same op in place.
func (r *Registry) Register(t NodeType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[t.Op]; !ok {
		r.order = append(r.order, t.Op)
	}
	r.types[t.Op] = t
}

// Lookup retrieves a node type by op.
func (r *Registry) Lookup(op string) (NodeType, bool) {
	if r == nil {
		return NodeType{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[op]
	return t, ok
}

// List returns all node types in registration order.
func (r *Registry) List() []NodeType {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]NodeType, 0, len(r.order))
	for _, op := range r.order {
		out = append(out, r.types[op])
	}
	return out
}

// Ops returns the sorted ops of all registered node types.
func (r *Registry) Ops() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ops := make([]string, len(r.order))
	copy(ops, r.order)
	sort.Strings(ops)
	return ops
}

// Len returns the number of registered node types.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
