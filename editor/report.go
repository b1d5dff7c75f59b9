package editor

import (
	"fmt"
	"strings"

	"github.com/kbukum/pipelinekit/errors"
	"github.com/kbukum/pipelinekit/flow"
	"github.com/kbukum/pipelinekit/problems"
	"github.com/kbukum/pipelinekit/registry"
	"github.com/kbukum/pipelinekit/validators"
)

// Report is the result of validating the open document.
type Report struct {
	Problems   []problems.Problem  `json:"problems"`
	Supernodes []flow.SupernodeRef `json:"supernodes"`
	NodeErrors map[string][]string `json:"node_errors"`
}

// PropertyValue is one row of a node's property summary.
type PropertyValue struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Validate runs the problem checks over the open document.
func (c *Controller) Validate() Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	text, err := c.doc.Encode()
	if err != nil {
		c.log.WithError(err).Warn("encoding document for validation")
		return Report{Problems: []problems.Problem{}, NodeErrors: map[string][]string{}}
	}
	found := problems.Validate(text, c.reg,
		problems.WithPipelineProperties(c.pipelineProps),
		problems.WithCycleTimeout(c.cycleTimeout),
		problems.WithLogger(c.log),
	)

	nodeErrors := map[string][]string{}
	for i := range c.doc.Pipelines {
		for _, node := range c.doc.Pipelines[i].Nodes {
			if msgs := c.nodeErrors(&node); len(msgs) > 0 {
				nodeErrors[node.ID] = msgs
			}
		}
	}
	return Report{
		Problems:   found,
		Supernodes: problems.AffectedSupernodes(c.doc, found),
		NodeErrors: nodeErrors,
	}
}

// NodeErrors returns the short error messages shown on a node.
func (c *Controller) NodeErrors(id string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	node, _ := c.doc.FindNode(id)
	if node == nil {
		return nil, errors.NotFound("node", id)
	}
	return c.nodeErrors(node), nil
}

func (c *Controller) nodeErrors(node *flow.Node) []string {
	if node.Type != flow.ExecutionNode {
		return nil
	}
	nodeType, ok := c.reg.Lookup(node.Op)
	if !ok {
		return []string{fmt.Sprintf("%q is an unsupported node type", node.Op)}
	}
	var msgs []string
	params := node.ComponentParameters()
	for _, prop := range nodeType.Properties {
		if prop.ID == "label" {
			continue
		}
		value := params[prop.ID]
		if prop.Required && !HasValue(value) {
			msgs = append(msgs, fmt.Sprintf("property %q is required", prop.Label))
			continue
		}
		if value == nil {
			continue
		}
		if errs := validators.ForProperty(prop, value); len(errs) > 0 {
			msgs = append(msgs, fmt.Sprintf("property %q is invalid: %s", prop.Label, errs[0]))
		}
	}
	return msgs
}

// FindNode returns a copy of the node with the given id and the id of the
// pipeline that owns it.
func (c *Controller) FindNode(id string) (flow.Node, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	node, p := c.doc.FindNode(id)
	if node == nil {
		return flow.Node{}, "", false
	}
	return *node, p.ID, true
}

// Properties summarizes the values of a node for display. Properties without
// a value are left out.
func (c *Controller) Properties(id string) ([]PropertyValue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	node, _ := c.doc.FindNode(id)
	if node == nil {
		return nil, errors.NotFound("node", id)
	}
	nodeType, ok := c.reg.Lookup(node.Op)
	if !ok {
		return nil, errors.ComponentNotFound(node.Op)
	}

	params := node.ComponentParameters()
	var out []PropertyValue
	for _, prop := range nodeType.Properties {
		var value any
		if prop.ID == "label" {
			value = node.Label()
		} else {
			value = params[prop.ID]
		}
		if !HasValue(value) {
			continue
		}
		out = append(out, PropertyValue{ID: prop.ID, Label: propertyLabel(prop), Value: PrettyString(value)})
	}
	return out, nil
}

// Tooltip renders the property summary of a node as "label: value" lines.
func (c *Controller) Tooltip(id string) (string, error) {
	values, err := c.Properties(id)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(values))
	for _, v := range values {
		lines = append(lines, v.Label+": "+v.Value)
	}
	return strings.Join(lines, "\n"), nil
}

func propertyLabel(prop registry.Property) string {
	if prop.Label != "" {
		return prop.Label
	}
	return prop.ID
}

// HasValue reports whether a property value should be shown. Lists must be
// non-empty, booleans always count, and everything else must be non-empty
// text.
func HasValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case bool:
		return true
	default:
		return validators.AsString(v) != ""
	}
}

// PrettyString renders a property value for display. List items are written
// one per line, using the "value" field of object items; booleans read as
// Yes or No.
func PrettyString(value any) string {
	switch v := value.(type) {
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				if inner, ok := m["value"]; ok && inner != nil {
					item = inner
				}
			}
			items = append(items, PrettyString(item))
		}
		return strings.Join(items, "\n")
	case []string:
		return strings.Join(v, "\n")
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case map[string]any:
		if inner, ok := v["value"]; ok {
			return PrettyString(inner)
		}
		return fmt.Sprint(v)
	default:
		return validators.AsString(v)
	}
}
