package migration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"

	"github.com/kbukum/pipelinekit/flow"
	"github.com/kbukum/pipelinekit/logger"
)

// Step upgrades a document to Version from the version before it. Apply
// mutates the document in place.
type Step struct {
	Version     int
	Description string
	Apply       func(doc map[string]any)
}

var steps = []Step{
	{Version: 1, Description: "rename legacy pipeline and node fields", Apply: toV1},
	{Version: 2, Description: "reduce node filenames to their base name", Apply: toV2},
	{Version: 3, Description: "mark support for script nodes", Apply: toV3},
}

// Steps returns the migration chain in application order.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// Option configures Migrate.
type Option func(*options)

type options struct {
	log *logger.Logger
}

// WithLogger sets the logger that records applied steps.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// Version reads the document version from the first pipeline. An absent
// version is 0. The second result is false when there is no pipeline or the
// version is not an integer.
func Version(doc map[string]any) (int, bool) {
	first := firstPipeline(doc)
	if first == nil {
		return 0, false
	}
	appData, _ := first["app_data"].(map[string]any)
	return flow.VersionOf(appData)
}

// NeedsMigration reports whether Migrate would change the document.
func NeedsMigration(doc map[string]any) bool {
	v, ok := Version(doc)
	return ok && v < flow.CurrentVersion
}

// Migrate returns a copy of doc upgraded to flow.CurrentVersion. The input is
// never modified. Documents that are current, newer, or whose version cannot
// be read are returned as an unchanged copy.
func Migrate(doc map[string]any, opts ...Option) map[string]any {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("migration")
	}

	out, _ := deepCopy(doc).(map[string]any)
	version, ok := Version(out)
	if !ok {
		o.log.Debug("document version unreadable, skipping migration")
		return out
	}
	for _, step := range steps {
		if version >= step.Version {
			continue
		}
		o.log.Debug("migrating pipeline", logger.Fields(
			logger.FieldFromVer, step.Version-1,
			logger.FieldToVer, step.Version,
			logger.FieldOperation, step.Description,
		))
		step.Apply(out)
	}
	return out
}

// MigrateJSON decodes, migrates and re-encodes a document. Errors are only
// returned for input that is not a JSON object.
func MigrateJSON(data []byte, opts ...Option) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("migration: decoding document: %w", err)
	}
	return json.MarshalIndent(Migrate(doc, opts...), "", "  ")
}

func firstPipeline(doc map[string]any) map[string]any {
	pipelines, _ := doc["pipelines"].([]any)
	if len(pipelines) == 0 {
		return nil
	}
	first, _ := pipelines[0].(map[string]any)
	return first
}

func nodesOf(pipeline map[string]any) []map[string]any {
	raw, _ := pipeline["nodes"].([]any)
	nodes := make([]map[string]any, 0, len(raw))
	for _, n := range raw {
		if node, ok := n.(map[string]any); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func rename(m map[string]any, from, to string) {
	if v, ok := m[from]; ok {
		m[to] = v
		delete(m, from)
	}
}

func setVersion(pipeline map[string]any, v int) {
	appData, ok := pipeline["app_data"].(map[string]any)
	if !ok {
		appData = map[string]any{}
		pipeline["app_data"] = appData
	}
	appData["version"] = v
}

func toV1(doc map[string]any) {
	p := firstPipeline(doc)
	if appData, ok := p["app_data"].(map[string]any); ok {
		rename(appData, "title", "name")
		delete(appData, "export")
		delete(appData, "export_format")
		delete(appData, "export_path")
	}
	for _, node := range nodesOf(p) {
		if node["type"] == "pipeline_node" {
			node["type"] = string(flow.ExecutionNode)
		}
		node["op"] = "execute-notebook-node"
		appData, ok := node["app_data"].(map[string]any)
		if !ok {
			continue
		}
		rename(appData, "notebook", "filename")
		rename(appData, "artifact", "filename")
		rename(appData, "docker_image", "runtime_image")
		rename(appData, "image", "runtime_image")
		rename(appData, "vars", "env_vars")
		rename(appData, "file_dependencies", "dependencies")
		rename(appData, "recursive_dependencies", "include_subdirectories")
	}
	setVersion(p, 1)
}

func toV2(doc map[string]any) {
	p := firstPipeline(doc)
	for _, node := range nodesOf(p) {
		appData, ok := node["app_data"].(map[string]any)
		if !ok {
			continue
		}
		if filename, ok := appData["filename"].(string); ok && filename != "" {
			appData["filename"] = path.Base(filename)
		}
	}
	setVersion(p, 2)
}

func toV3(doc map[string]any) {
	setVersion(firstPipeline(doc), 3)
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
