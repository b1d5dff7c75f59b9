// Package registry holds the node-type schemas that pipeline nodes are
// validated against.
//
// Node types are authored as NodeSpec files (YAML or JSON) and converted into
// typed properties whose Constraints are one of a closed set of structs:
//
//	reg, err := registry.Load("./nodes")
//	if err != nil {
//	    return err
//	}
//	t, ok := reg.Lookup("run-notebook")
package registry
