package flow

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// CurrentVersion is the pipeline document version this module reads and
// writes. It is stored in the first pipeline's app_data.version and is the
// target of the migration chain.
const CurrentVersion = 3

// Pipeline-flow envelope constants written by New.
const (
	DocType    = "pipeline"
	DocVersion = "3.0"
	JSONSchema = "http://api.dataplatform.ibm.com/schemas/common-pipeline/pipeline-flow/pipeline-flow-v3-schema.json"
)

// NodeKind tags the variant of a Node.
type NodeKind string

const (
	ExecutionNode    NodeKind = "execution_node"
	SuperNode        NodeKind = "super_node"
	BindingEntryNode NodeKind = "binding_entry_node"
	BindingExitNode  NodeKind = "binding_exit_node"
	ModelNode        NodeKind = "model_node"
)

// Document is a pipeline-flow document holding one or more pipelines.
type Document struct {
	DocType         string         `json:"doc_type"`
	Version         string         `json:"version"`
	JSONSchema      string         `json:"json_schema,omitempty"`
	ID              string         `json:"id"`
	PrimaryPipeline string         `json:"primary_pipeline"`
	Pipelines       []Pipeline     `json:"pipelines"`
	Schemas         []any          `json:"schemas"`
	AppData         map[string]any `json:"app_data,omitempty"`
}

// Pipeline is a single graph of nodes. Nested pipelines are referenced from
// supernodes of another pipeline in the same document.
type Pipeline struct {
	ID         string         `json:"id"`
	Nodes      []Node         `json:"nodes"`
	AppData    map[string]any `json:"app_data,omitempty"`
	RuntimeRef string         `json:"runtime_ref"`
}

// Node is a pipeline node. Execution nodes carry an Op and their values in
// app_data.component_parameters; supernodes carry a SubflowRef.
type Node struct {
	ID         string         `json:"id"`
	Type       NodeKind       `json:"type"`
	Op         string         `json:"op,omitempty"`
	AppData    map[string]any `json:"app_data,omitempty"`
	Inputs     []Port         `json:"inputs,omitempty"`
	Outputs    []Port         `json:"outputs,omitempty"`
	SubflowRef *SubflowRef    `json:"subflow_ref,omitempty"`
}

// SubflowRef points a supernode at the pipeline it stands in for.
type SubflowRef struct {
	PipelineIDRef string `json:"pipeline_id_ref"`
	URL           string `json:"url,omitempty"`
}

// Port is a node input or output. Links are stored on the target node's input
// ports and point back at their source node.
type Port struct {
	ID      string         `json:"id"`
	Links   []LinkRef      `json:"links,omitempty"`
	AppData map[string]any `json:"app_data,omitempty"`
}

// LinkRef is the stored form of a link on an input port.
type LinkRef struct {
	ID        string         `json:"id"`
	NodeIDRef string         `json:"node_id_ref"`
	PortIDRef string         `json:"port_id_ref,omitempty"`
	AppData   map[string]any `json:"app_data,omitempty"`
}

// Decode parses a pipeline-flow document.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("flow: decoding document: %w", err)
	}
	return &doc, nil
}

// Encode serializes the document with two-space indentation.
func (d *Document) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// New returns an empty document with a single primary pipeline at
// CurrentVersion.
func New() *Document {
	pipelineID := uuid.NewString()
	return &Document{
		DocType:         DocType,
		Version:         DocVersion,
		JSONSchema:      JSONSchema,
		ID:              uuid.NewString(),
		PrimaryPipeline: pipelineID,
		Pipelines: []Pipeline{{
			ID:    pipelineID,
			Nodes: []Node{},
			AppData: map[string]any{
				"ui_data": map[string]any{"comments": []any{}},
				"version": CurrentVersion,
			},
		}},
		Schemas: []any{},
	}
}

// Primary returns the pipeline named by PrimaryPipeline, or the first
// pipeline when the reference is missing or dangling.
func (d *Document) Primary() *Pipeline {
	if p := d.Pipeline(d.PrimaryPipeline); p != nil {
		return p
	}
	if len(d.Pipelines) == 0 {
		return nil
	}
	return &d.Pipelines[0]
}

// Pipeline returns the pipeline with the given id.
func (d *Document) Pipeline(id string) *Pipeline {
	for i := range d.Pipelines {
		if d.Pipelines[i].ID == id {
			return &d.Pipelines[i]
		}
	}
	return nil
}

// VersionOf reads a version number from an app_data bag. An absent version
// is 0. The second result is false when the value is present but is not an
// integer.
func VersionOf(appData map[string]any) (int, bool) {
	raw, ok := appData["version"]
	if !ok || raw == nil {
		return 0, true
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

// DocumentVersion reads the version of the first pipeline.
func (d *Document) DocumentVersion() (int, bool) {
	if len(d.Pipelines) == 0 {
		return 0, true
	}
	return VersionOf(d.Pipelines[0].AppData)
}
