package editor

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/pipelinekit/dag"
	"github.com/kbukum/pipelinekit/errors"
	"github.com/kbukum/pipelinekit/flow"
	"github.com/kbukum/pipelinekit/logger"
	"github.com/kbukum/pipelinekit/migration"
	"github.com/kbukum/pipelinekit/registry"
)

// Port ids given to nodes created by the controller.
const (
	InputPortID  = "inPort"
	OutputPortID = "outPort"
)

// Option configures a Controller.
type Option func(*Controller)

// WithPipelineProperties sets the pipeline property schema used by Validate.
func WithPipelineProperties(props []registry.Property) Option {
	return func(c *Controller) { c.pipelineProps = props }
}

// WithCycleTimeout sets the cycle search budget used by Validate.
func WithCycleTimeout(d time.Duration) Option {
	return func(c *Controller) { c.cycleTimeout = d }
}

// WithMigrateOnOpen makes Open migrate older documents instead of rejecting
// them with a PIPELINE_OUT_OF_DATE error.
func WithMigrateOnOpen(enabled bool) Option {
	return func(c *Controller) { c.migrateOnOpen = enabled }
}

// WithLogger sets the controller logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller owns one open pipeline document and serializes every read and
// edit of it.
type Controller struct {
	mu  sync.Mutex
	doc *flow.Document
	reg *registry.Registry

	pipelineProps []registry.Property
	cycleTimeout  time.Duration
	migrateOnOpen bool
	log           *logger.Logger
}

// New creates a controller holding an empty document.
func New(reg *registry.Registry, opts ...Option) *Controller {
	c := &Controller{reg: reg, doc: flow.New(), cycleTimeout: dag.DefaultCycleTimeout}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get("editor")
	}
	return c
}

// Open replaces the current document. Empty input opens a new document.
// A document at a different version is rejected with PIPELINE_OUT_OF_DATE,
// EDITOR_OUT_OF_DATE or UNKNOWN_VERSION; the current document is kept.
func (c *Controller) Open(data []byte) error {
	doc, err := c.load(data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.doc = doc
	c.mu.Unlock()
	c.log.WithPipeline(doc.PrimaryPipeline).Debug("opened pipeline document")
	return nil
}

func (c *Controller) load(data []byte) (*flow.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return flow.New(), nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.InvalidPipeline("The pipeline document is not valid JSON.").WithCause(err)
	}
	pipelines, _ := raw["pipelines"].([]any)
	if len(pipelines) == 0 {
		return nil, errors.InvalidPipeline("The pipeline document has no pipelines.")
	}

	version, ok := migration.Version(raw)
	switch {
	case !ok:
		first, _ := pipelines[0].(map[string]any)
		appData, _ := first["app_data"].(map[string]any)
		return nil, errors.UnknownVersion(appData["version"])
	case version > flow.CurrentVersion:
		return nil, errors.EditorOutOfDate(version, flow.CurrentVersion)
	case version < flow.CurrentVersion && !c.migrateOnOpen:
		return nil, errors.PipelineOutOfDate(version, flow.CurrentVersion)
	case version < flow.CurrentVersion:
		migrated, err := json.Marshal(migration.Migrate(raw, migration.WithLogger(c.log)))
		if err != nil {
			return nil, errors.Internal(err)
		}
		data = migrated
	}

	doc, err := flow.Decode(data)
	if err != nil {
		return nil, errors.InvalidPipeline("The pipeline document does not match the pipeline-flow format.").WithCause(err)
	}
	return doc, nil
}

// Document returns a copy of the open document.
func (c *Controller) Document() (*flow.Document, error) {
	data, err := c.Bytes()
	if err != nil {
		return nil, err
	}
	return flow.Decode(data)
}

// Bytes returns the open document serialized as JSON.
func (c *Controller) Bytes() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Encode()
}

// AddNode appends an execution node for op to the primary pipeline. Property
// defaults from the node type are filled in and then overridden by params.
// A "filename" parameter also names the node when no label is given.
func (c *Controller) AddNode(op string, params map[string]any) (string, error) {
	nodeType, ok := c.reg.Lookup(op)
	if !ok {
		return "", errors.ComponentNotFound(op)
	}

	values := map[string]any{}
	for _, p := range nodeType.Properties {
		if p.ID != "label" && p.Default != nil {
			values[p.ID] = p.Default
		}
	}
	label := nodeType.Label
	if filename, ok := params["filename"].(string); ok && filename != "" {
		label = baseName(filename)
	}
	for k, v := range params {
		if k == "label" {
			if s, ok := v.(string); ok && s != "" {
				label = s
			}
			continue
		}
		values[k] = v
	}

	node := flow.Node{
		ID:   uuid.NewString(),
		Type: flow.ExecutionNode,
		Op:   op,
		AppData: map[string]any{
			"label":                     label,
			flow.ComponentParametersKey: values,
			"ui_data":                   map[string]any{"label": label},
		},
		Inputs:  []flow.Port{{ID: InputPortID}},
		Outputs: []flow.Port{{ID: OutputPortID}},
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.doc.Primary()
	if p == nil {
		return "", errors.InvalidPipeline("The pipeline document has no pipelines.")
	}
	p.Nodes = append(p.Nodes, node)
	c.log.WithFields(logger.Fields(logger.FieldNodeID, node.ID, logger.FieldOp, op)).Debug("node added")
	return node.ID, nil
}

// RemoveNode deletes a node and every link into or out of it.
func (c *Controller) RemoveNode(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	node, p := c.doc.FindNode(id)
	if node == nil {
		return errors.NotFound("node", id)
	}
	idx := p.NodeIndex(id)
	p.Nodes = append(p.Nodes[:idx], p.Nodes[idx+1:]...)
	for i := range p.Nodes {
		for j := range p.Nodes[i].Inputs {
			p.Nodes[i].Inputs[j].Links = dropLinks(p.Nodes[i].Inputs[j].Links, func(l flow.LinkRef) bool {
				return l.NodeIDRef == id
			})
		}
	}
	return nil
}

// AddLink connects source to target inside one pipeline and returns the link
// id. Links that close a cycle are accepted; Validate reports them.
func (c *Controller) AddLink(source, target string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	src, srcPipeline := c.doc.FindNode(source)
	if src == nil {
		return "", errors.NotFound("node", source)
	}
	trg, trgPipeline := c.doc.FindNode(target)
	if trg == nil {
		return "", errors.NotFound("node", target)
	}
	if srcPipeline.ID != trgPipeline.ID {
		return "", errors.InvalidInput("target", "nodes must belong to the same pipeline")
	}
	for _, l := range srcPipeline.Links() {
		if l.Source == source && l.Target == target {
			return "", errors.AlreadyExists("link", l.ID)
		}
	}

	if len(trg.Inputs) == 0 {
		trg.Inputs = []flow.Port{{ID: InputPortID}}
	}
	srcPort := OutputPortID
	if len(src.Outputs) > 0 {
		srcPort = src.Outputs[0].ID
	}
	link := flow.LinkRef{ID: uuid.NewString(), NodeIDRef: source, PortIDRef: srcPort}
	trg.Inputs[0].Links = append(trg.Inputs[0].Links, link)
	return link.ID, nil
}

// RemoveLink deletes a data link by id.
func (c *Controller) RemoveLink(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for pi := range c.doc.Pipelines {
		p := &c.doc.Pipelines[pi]
		for ni := range p.Nodes {
			for ii := range p.Nodes[ni].Inputs {
				port := &p.Nodes[ni].Inputs[ii]
				before := len(port.Links)
				port.Links = dropLinks(port.Links, func(l flow.LinkRef) bool { return l.ID == id })
				if len(port.Links) != before {
					return nil
				}
			}
		}
	}
	return errors.NotFound("link", id)
}

// SetNodeProperty stores a node property value. The "label" key renames the
// node; every other key is a component parameter.
func (c *Controller) SetNodeProperty(nodeID, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	node, _ := c.doc.FindNode(nodeID)
	if node == nil {
		return errors.NotFound("node", nodeID)
	}
	if key == "label" {
		label, ok := value.(string)
		if !ok {
			return errors.InvalidInput("label", "label must be a string")
		}
		if node.AppData == nil {
			node.AppData = map[string]any{}
		}
		node.AppData["label"] = label
		if uiData, ok := node.AppData["ui_data"].(map[string]any); ok {
			uiData["label"] = label
		}
		return nil
	}
	node.SetComponentParameter(key, value)
	return nil
}

// SetPipelineProperty stores a property of the primary pipeline.
func (c *Controller) SetPipelineProperty(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.doc.Primary()
	if p == nil {
		return errors.InvalidPipeline("The pipeline document has no pipelines.")
	}
	p.SetProperty(key, value)
	return nil
}

func dropLinks(links []flow.LinkRef, drop func(flow.LinkRef) bool) []flow.LinkRef {
	out := links[:0]
	for _, l := range links {
		if !drop(l) {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
