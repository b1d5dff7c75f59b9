// Package editor holds a pipeline document open for editing.
//
// A Controller serializes access to one document. It checks the document
// version on Open, applies node and link edits, and produces validation
// reports with per-node error messages for display next to each node.
//
//	c := editor.New(reg, editor.WithMigrateOnOpen(true))
//	if err := c.Open(data); err != nil {
//	    return err
//	}
//	id, err := c.AddNode("run-notebook", map[string]any{"filename": "train.ipynb"})
//	report := c.Validate()
package editor
