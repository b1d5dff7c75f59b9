package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestRegistry_RegisterLookup(t *testing.T) {
	r := New(NodeType{Op: "b"}, NodeType{Op: "a"})
	r.Register(NodeType{Op: "b", Label: "B2"})

	if r.Len() != 2 {
		t.Fatalf("expected 2 types, got %d", r.Len())
	}
	got, ok := r.Lookup("b")
	if !ok || got.Label != "B2" {
		t.Fatalf("expected replaced type, got %+v", got)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Fatal("expected missing op")
	}
	list := r.List()
	if list[0].Op != "b" || list[1].Op != "a" {
		t.Errorf("expected registration order, got %v", list)
	}
	if !reflect.DeepEqual(r.Ops(), []string{"a", "b"}) {
		t.Errorf("expected sorted ops, got %v", r.Ops())
	}

	var nilReg *Registry
	if _, ok := nilReg.Lookup("a"); ok || nilReg.Len() != 0 {
		t.Error("nil registry should be empty")
	}
}

func TestPropertySpec_Property(t *testing.T) {
	tests := []struct {
		name        string
		spec        PropertySpec
		wantControl string
		wantKind    Kind
		wantDefault any
	}{
		{"boolean", PropertySpec{ID: "b", Type: TypeBoolean}, ControlBoolean, KindBoolean, false},
		{"number", PropertySpec{ID: "n", Type: TypeNumber, Default: 4}, ControlNumber, KindNumber, 4},
		{"integer", PropertySpec{ID: "i", Type: TypeInteger}, ControlNumber, KindNumber, nil},
		{"string", PropertySpec{ID: "s", Type: TypeString}, ControlString, KindString, ""},
		{"string default", PropertySpec{ID: "s", Type: TypeString, Default: "x"}, ControlString, KindString, "x"},
		{"enum", PropertySpec{ID: "e", Type: TypeString, Enum: []string{"a"}}, ControlEnum, KindEnum, ""},
		{"array", PropertySpec{ID: "a", Type: TypeArray}, ControlStringArray, KindStringArray, []any{}},
		{"nested", PropertySpec{ID: "ne", Type: TypeNestedEnum}, ControlNestedEnum, KindNestedEnum, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.spec.Property()
			if p.Control != tt.wantControl {
				t.Errorf("control = %q, want %q", p.Control, tt.wantControl)
			}
			if p.Kind() != tt.wantKind {
				t.Errorf("kind = %q, want %q", p.Kind(), tt.wantKind)
			}
			if !reflect.DeepEqual(p.Default, tt.wantDefault) {
				t.Errorf("default = %#v, want %#v", p.Default, tt.wantDefault)
			}
			if p.Label != tt.spec.ID {
				t.Errorf("expected label to fall back to id, got %q", p.Label)
			}
		})
	}

	n := PropertySpec{ID: "n", Type: TypeInteger, Minimum: floatPtr(1), ExclusiveMaximum: FlagBound(true)}.Property()
	c := n.Constraints.(NumberConstraints)
	if !c.Integer || *c.Minimum != 1 || c.ExclusiveMaximum.Flag == nil {
		t.Errorf("unexpected number constraints %+v", c)
	}
}

func TestNodeSpec_NodeType(t *testing.T) {
	spec := NodeSpec{
		Op:         "run-notebook",
		Type:       NodeTypeFile,
		Extensions: []string{".ipynb"},
		Properties: []PropertySpec{{ID: "runtime_image", Title: "Runtime Image", Type: TypeString, Required: true}},
	}
	nt := spec.NodeType()
	if nt.Label != "run-notebook" {
		t.Errorf("expected label to fall back to op, got %q", nt.Label)
	}
	var ids []string
	for _, p := range nt.Properties {
		ids = append(ids, p.ID)
	}
	if !reflect.DeepEqual(ids, []string{"runtime_image", "label", "filename"}) {
		t.Fatalf("unexpected properties %v", ids)
	}
	label, _ := nt.Property("label")
	if label.Label != "Label" || label.Required {
		t.Errorf("unexpected label property %+v", label)
	}
	file, _ := nt.Property("filename")
	fc := file.Constraints.(StringConstraints)
	if file.Label != "File" || fc.Format != "file" || !reflect.DeepEqual(fc.Extensions, []string{".ipynb"}) {
		t.Errorf("unexpected filename property %+v", file)
	}

	plain := NodeSpec{Op: "x"}.NodeType()
	if _, ok := plain.Property("filename"); ok {
		t.Error("non-file node types should not get a filename property")
	}
}

func TestFromSpecs_Valid(t *testing.T) {
	r, err := FromSpecs([]NodeSpec{
		{Op: "a", Label: "A", Properties: []PropertySpec{{ID: "x", Type: TypeNumber, Minimum: floatPtr(0), Maximum: floatPtr(5)}}},
		{Op: "b", Type: NodeTypeFile},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 types, got %d", r.Len())
	}
}

func TestFromSpecs_CollectsErrors(t *testing.T) {
	_, err := FromSpecs([]NodeSpec{
		{Op: "a", Properties: []PropertySpec{
			{ID: "p", Type: "object"},
			{ID: "q", Type: TypeString, Pattern: "([", MinLength: intPtr(5), MaxLength: intPtr(2)},
			{ID: "p", Type: TypeArray, MinItems: intPtr(-1)},
			{ID: "label", Type: TypeString},
			{ID: "ne", Type: TypeNestedEnum},
		}},
		{Op: "a", Type: "dir"},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{
		"node_types[0].properties[0].type: must be one of",
		"node_types[0].properties[1].pattern: must be a valid regular expression",
		"node_types[0].properties[1].minLength: minimum 5 must not exceed maximum 2",
		"node_types[0].properties[2].id: duplicate value",
		"node_types[0].properties[2].minItems: must be greater than or equal to 0",
		"node_types[0].properties[3].id: duplicate value \"label\"",
		"node_types[0].properties[4].options: is required for nested-enum properties",
		"node_types[1].type: must be one of: file",
		"node_types[1].op: duplicate value \"a\"",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in:\n%s", want, msg)
		}
	}
}

func TestProperties(t *testing.T) {
	props, err := Properties([]PropertySpec{{ID: "runtime", Title: "Runtime", Type: TypeString, Required: true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(props) != 1 || props[0].ID != "runtime" {
		t.Errorf("expected no generated properties, got %+v", props)
	}
	if _, err := Properties([]PropertySpec{{ID: "a", Type: TypeString}, {ID: "a", Type: TypeString}}); err == nil {
		t.Error("expected duplicate id error")
	}
}

func TestBound(t *testing.T) {
	max := 10.0
	if got := FlagBound(true).Resolve(&max); got == nil || *got != 10 {
		t.Errorf("true flag should borrow the limit, got %v", got)
	}
	if got := FlagBound(false).Resolve(&max); got != nil {
		t.Errorf("false flag should disable the bound, got %v", *got)
	}
	if got := NumberBound(3).Resolve(&max); *got != 3 {
		t.Errorf("expected 3, got %v", *got)
	}
	if !(Bound{}).IsZero() {
		t.Error("expected zero bound")
	}

	var spec struct {
		A Bound `json:"a" yaml:"a"`
		B Bound `json:"b" yaml:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": true, "b": 2.5}`), &spec); err != nil {
		t.Fatalf("json: %v", err)
	}
	if spec.A.Flag == nil || !*spec.A.Flag || spec.B.Value == nil || *spec.B.Value != 2.5 {
		t.Errorf("unexpected json bounds %+v", spec)
	}
	if err := yaml.Unmarshal([]byte("a: false\nb: 7\n"), &spec); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if spec.A.Flag == nil || *spec.A.Flag || *spec.B.Value != 7 {
		t.Errorf("unexpected yaml bounds %+v", spec)
	}
	if err := json.Unmarshal([]byte(`{"a": "x"}`), &spec); err == nil {
		t.Error("expected error for string bound")
	}

	data, _ := json.Marshal(NumberBound(1.5))
	if string(data) != "1.5" {
		t.Errorf("unexpected encoding %s", data)
	}
}

func TestPropertyMarshalIncludesKind(t *testing.T) {
	data, err := json.Marshal(PropertySpec{ID: "x", Type: TypeArray}.Property())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"kind":"string-array"`) {
		t.Errorf("expected kind in %s", data)
	}
}

const notebookYAML = `
op: run-notebook
label: Notebook
type: file
extensions: [.ipynb]
properties:
  - id: runtime_image
    title: Runtime Image
    type: string
    required: true
  - id: cpu
    type: integer
    minimum: 1
    exclusiveMaximum: 64
`

const scriptsJSON = `[
  {"op": "run-python", "label": "Python", "type": "file", "extensions": [".py"],
   "properties": [{"id": "env_vars", "type": "array", "keyValueEntries": true}]},
  {"op": "run-r", "label": "R", "type": "file", "extensions": [".r"]}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	specs, err := LoadFile(writeFile(t, dir, "notebook.yaml", notebookYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specs) != 1 || specs[0].Op != "run-notebook" {
		t.Fatalf("unexpected specs %+v", specs)
	}
	cpu := specs[0].Properties[1]
	if cpu.Minimum == nil || *cpu.Minimum != 1 || cpu.ExclusiveMaximum.Value == nil || *cpu.ExclusiveMaximum.Value != 64 {
		t.Errorf("unexpected cpu spec %+v", cpu)
	}

	list, err := LoadFile(writeFile(t, dir, "scripts.json", scriptsJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 specs, got %d", len(list))
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadFile(writeFile(t, dir, "bad.yaml", "op: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notebook.yaml", notebookYAML)
	writeFile(t, dir, "nested/scripts.json", scriptsJSON)
	writeFile(t, dir, "README.md", "ignored")

	r, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r.Ops(), []string{"run-notebook", "run-python", "run-r"}) {
		t.Errorf("unexpected ops %v", r.Ops())
	}

	writeFile(t, dir, "dup.yaml", "op: run-r\n")
	if _, err := Load(dir); err == nil {
		t.Error("expected duplicate op error")
	}
	if _, err := Load(filepath.Join(dir, "nope")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestLoadProperties(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pipeline.yaml", `
- id: runtime_image
  title: Runtime Image
  type: string
  required: true
- id: cos_bucket
  type: string
  pattern: "^[a-z0-9.-]+$"
`)
	props, err := LoadProperties(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(props) != 2 || !props[0].Required || props[0].Label != "Runtime Image" {
		t.Errorf("unexpected properties %+v", props)
	}
}
