package problems

import (
	"fmt"
	"math"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kbukum/pipelinekit/dag"
	"github.com/kbukum/pipelinekit/flow"
	"github.com/kbukum/pipelinekit/logger"
	"github.com/kbukum/pipelinekit/registry"
	"github.com/kbukum/pipelinekit/validators"
)

// Option configures Validate.
type Option func(*options)

type options struct {
	pipelineProperties []registry.Property
	cycleTimeout       time.Duration
	log                *logger.Logger
}

// WithPipelineProperties sets the schema of pipeline-level properties.
func WithPipelineProperties(props []registry.Property) Option {
	return func(o *options) { o.pipelineProperties = props }
}

// WithCycleTimeout sets the budget of each cycle search.
func WithCycleTimeout(d time.Duration) Option {
	return func(o *options) { o.cycleTimeout = d }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// Validate checks a serialized pipeline document against a node registry.
// Text that is not a pipeline document yields no problems. Every pipeline of
// the document is checked, in order: pipeline properties, links, then nodes.
func Validate(text []byte, reg *registry.Registry, opts ...Option) []Problem {
	o := options{cycleTimeout: dag.DefaultCycleTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("problems")
	}

	if !gjson.ValidBytes(text) {
		o.log.Debug("skipping validation of malformed document")
		return []Problem{}
	}
	doc, err := flow.Decode(text)
	if err != nil {
		o.log.Debug("skipping validation of undecodable document", logger.Fields(logger.FieldError, err.Error()))
		return []Problem{}
	}

	c := &collector{text: text, reg: reg, opts: o, problems: []Problem{}}
	for i := range doc.Pipelines {
		c.pipeline(i, &doc.Pipelines[i])
	}
	return c.problems
}

type collector struct {
	text     []byte
	reg      *registry.Registry
	opts     options
	problems []Problem
}

func (c *collector) add(path []any, message string, info Info) {
	c.problems = append(c.problems, Problem{
		Message:  message,
		Severity: SeverityError,
		Range:    rangeAt(c.text, path),
		Info:     info,
	})
}

func (c *collector) pipeline(index int, p *flow.Pipeline) {
	before := len(c.problems)
	base := []any{"pipelines", index}

	c.pipelineProperties(base, p)
	c.links(base, p)
	c.nodes(base, p)

	c.opts.log.WithPipeline(p.ID).Debug("validated pipeline", logger.Fields(logger.FieldProblems, len(c.problems)-before))
}

func (c *collector) pipelineProperties(base []any, p *flow.Pipeline) {
	values := p.Properties()
	defaults := p.Defaults()
	for _, prop := range c.opts.pipelineProperties {
		value := resolve(values, defaults, prop.ID)
		path := join(base, "app_data", flow.PropertiesKey, prop.ID)
		info := Info{PipelineID: p.ID, Property: prop.ID}

		if missing(prop, value) {
			info.Type = MissingProperty
			c.add(path, fmt.Sprintf("The pipeline property '%s' is required.", prop.Label), info)
			continue
		}
		if value == nil {
			continue
		}
		if msgs := validators.ForProperty(prop, value); len(msgs) > 0 {
			info.Type = InvalidProperty
			info.Message = msgs[0]
			c.add(path, fmt.Sprintf("The pipeline property '%s' is invalid: %s", prop.Label, msgs[0]), info)
		}
	}
}

func (c *collector) links(base []any, p *flow.Pipeline) {
	links := p.Links()
	cycles := dag.FindCycles(dag.EdgesOf(links), dag.WithTimeout(c.opts.cycleTimeout))
	if !cycles.Complete {
		c.opts.log.WithPipeline(p.ID).Debug("cycle search timed out, reporting partial result")
	}
	for _, l := range links {
		if !cycles.Has(l.ID) {
			continue
		}
		source, target := p.FindNode(l.Source), p.FindNode(l.Target)
		path := append(join(base, l.Path...), "node_id_ref")
		c.add(path,
			fmt.Sprintf("The connection between nodes '%s' and '%s' is part of a circular reference.", source.Label(), target.Label()),
			Info{Type: CircularReference, PipelineID: p.ID, LinkID: l.ID},
		)
	}
}

func (c *collector) nodes(base []any, p *flow.Pipeline) {
	defaults := p.Defaults()
	for n := range p.Nodes {
		node := &p.Nodes[n]
		if node.Type != flow.ExecutionNode {
			continue
		}
		nodePath := join(base, "nodes", n)

		nodeType, ok := c.reg.Lookup(node.Op)
		if !ok {
			c.add(join(nodePath, "op"),
				fmt.Sprintf("The component '%s' used by node '%s' cannot be found.", node.Op, node.Label()),
				Info{Type: MissingComponent, PipelineID: p.ID, NodeID: node.ID, Op: node.Op},
			)
			continue
		}

		params := node.ComponentParameters()
		for _, prop := range nodeType.Properties {
			value := resolve(params, defaults, prop.ID)
			path := join(nodePath, "app_data", flow.ComponentParametersKey, prop.ID)
			info := Info{PipelineID: p.ID, NodeID: node.ID, Property: prop.ID}

			if missing(prop, value) {
				info.Type = MissingProperty
				c.add(path, fmt.Sprintf("The property '%s' on node '%s' is required.", prop.Label, node.Label()), info)
				continue
			}
			if value == nil {
				continue
			}
			if msgs := validators.ForProperty(prop, value); len(msgs) > 0 {
				info.Type = InvalidProperty
				info.Message = msgs[0]
				c.add(path, fmt.Sprintf("The property '%s' on node '%s' is invalid: %s", prop.Label, node.Label(), msgs[0]), info)
			}
		}
	}
}

// resolve reads a property value, falling back to the pipeline defaults when
// the value is absent.
func resolve(values, defaults map[string]any, id string) any {
	if v, ok := values[id]; ok && v != nil {
		return v
	}
	return defaults[id]
}

// missing is the required check. Any falsy value counts as absent, so 0 and
// false are missing unless the property is a boolean.
func missing(prop registry.Property, value any) bool {
	if !prop.Required || prop.Kind() == registry.KindBoolean {
		return false
	}
	return falsy(value)
}

func falsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case float64:
		return v == 0 || math.IsNaN(v)
	case int:
		return v == 0
	default:
		return false
	}
}

func join(base []any, elems ...any) []any {
	out := make([]any, 0, len(base)+len(elems))
	out = append(out, base...)
	return append(out, elems...)
}
