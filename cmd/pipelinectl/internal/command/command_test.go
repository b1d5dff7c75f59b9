package command

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/pipelinekit/flow"
)

const palette = `
- op: run-notebook
  label: Notebook
  type: file
  properties:
    - id: runtime_image
      title: Runtime Image
      type: string
`

const selfLoop = `{
  "doc_type": "pipeline",
  "version": "3.0",
  "id": "doc",
  "primary_pipeline": "p1",
  "pipelines": [{
    "id": "p1",
    "nodes": [{
      "id": "A",
      "type": "execution_node",
      "op": "run-notebook",
      "app_data": {"label": "Node A", "component_parameters": {"filename": ""}},
      "inputs": [{"id": "in", "links": [{"id": "loop", "node_id_ref": "A", "port_id_ref": "out"}]}]
    }],
    "app_data": {"version": 3},
    "runtime_ref": ""
  }],
  "schemas": []
}`

const diamond = `{
  "doc_type": "pipeline",
  "version": "3.0",
  "id": "doc",
  "primary_pipeline": "p1",
  "pipelines": [{
    "id": "p1",
    "nodes": [
      {"id": "a", "type": "execution_node", "op": "run-notebook",
       "app_data": {"label": "Load", "component_parameters": {"filename": "load.ipynb"}}},
      {"id": "b", "type": "execution_node", "op": "run-notebook",
       "app_data": {"label": "Train", "component_parameters": {"filename": "train.ipynb"}},
       "inputs": [{"id": "in", "links": [{"id": "ab", "node_id_ref": "a"}]}]},
      {"id": "c", "type": "execution_node", "op": "run-notebook",
       "app_data": {"label": "Report", "component_parameters": {"filename": "report.ipynb"}},
       "inputs": [{"id": "in", "links": [{"id": "ac", "node_id_ref": "a"}]}]}
    ],
    "app_data": {"version": 3},
    "runtime_ref": ""
  }],
  "schemas": []
}`

const legacy = `{
  "doc_type": "pipeline",
  "version": "3.0",
  "id": "doc",
  "primary_pipeline": "p1",
  "pipelines": [{
    "id": "p1",
    "nodes": [{
      "id": "A",
      "type": "pipeline_node",
      "op": "run-notebook",
      "app_data": {"notebook": "work/a.ipynb", "docker_image": "py:3"}
    }],
    "app_data": {"title": "demo"},
    "runtime_ref": ""
  }],
  "schemas": []
}`

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand(NewCLI(&out, &errOut))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	reg := writeFile(t, dir, "palette.yaml", palette)
	clean := writeFile(t, dir, "clean.pipeline", diamond)
	broken := writeFile(t, dir, "broken.pipeline", selfLoop)

	t.Run("clean", func(t *testing.T) {
		out, _, err := run(t, "validate", "-r", reg, clean)
		require.NoError(t, err)
		assert.Contains(t, out, "Valid! no problems found in 1 file(s).")
	})

	t.Run("problems text", func(t *testing.T) {
		out, _, err := run(t, "validate", "-r", reg, clean, broken)
		require.ErrorIs(t, err, ErrProblems)
		assert.Contains(t, out, broken+":13:71: ")
		assert.Contains(t, out, "error: The connection between nodes 'Node A' and 'Node A' is part of a circular reference.")
		assert.Contains(t, out, "The property 'File' on node 'Node A' is required.")
		assert.Contains(t, out, "Invalid! 2 problem(s) found.")
	})

	t.Run("problems json", func(t *testing.T) {
		out, _, err := run(t, "validate", "-o", "json", "-r", reg, broken)
		require.ErrorIs(t, err, ErrProblems)

		var results []fileProblems
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 1)
		assert.Equal(t, broken, results[0].File)
		require.Len(t, results[0].Problems, 2)
		assert.Equal(t, 13, results[0].Problems[0].Line)
	})

	t.Run("missing component", func(t *testing.T) {
		_, _, err := run(t, "validate", broken)
		require.ErrorIs(t, err, ErrProblems)
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, _, err := run(t, "validate", "-r", reg, filepath.Join(dir, "nope.pipeline"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrProblems)
	})
}

func TestMigrate(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "old.pipeline", legacy)

	out, _, err := run(t, "migrate", file)
	require.NoError(t, err)
	doc, err := flow.Decode([]byte(out))
	require.NoError(t, err)
	v, _ := doc.DocumentVersion()
	assert.Equal(t, flow.CurrentVersion, v)

	before, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, legacy, string(before), "migrate without --write must not touch the file")

	_, stderr, err := run(t, "migrate", "--write", file)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Migrated")

	written, err := os.ReadFile(file)
	require.NoError(t, err)
	doc, err = flow.Decode(written)
	require.NoError(t, err)
	v, _ = doc.DocumentVersion()
	assert.Equal(t, flow.CurrentVersion, v)
	assert.Equal(t, "a.ipynb", doc.Primary().FindNode("A").AppData["filename"])

	_, _, err = run(t, "migrate", writeFile(t, dir, "bad.pipeline", "["))
	require.Error(t, err)
}

func TestLevels(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, "levels", writeFile(t, dir, "d.pipeline", diamond))
	require.NoError(t, err)
	assert.Equal(t, "1: Load\n2: Train, Report\n", out)

	out, _, err = run(t, "levels", "-o", "json", filepath.Join(dir, "d.pipeline"))
	require.NoError(t, err)
	var levels [][]string
	require.NoError(t, json.Unmarshal([]byte(out), &levels))
	assert.Equal(t, [][]string{{"Load"}, {"Train", "Report"}}, levels)

	_, _, err = run(t, "levels", writeFile(t, dir, "loop.pipeline", selfLoop))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version", "-o", "json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, float64(flow.CurrentVersion), info["document_version"])

	out, _, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "document version: 3")
}

func TestInvalidOutputFormat(t *testing.T) {
	_, _, err := run(t, "version", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid output format "yaml"`)
}
