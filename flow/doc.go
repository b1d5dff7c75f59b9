// Package flow models pipeline-flow documents: a Document holds pipelines,
// pipelines hold nodes, and links are stored on the input ports of the node
// they point into.
//
// The typed model is used for reading and editing. Migration works on the raw
// decoded map instead, since documents older than CurrentVersion do not fit
// the typed shape.
//
// Usage:
//
//	doc, err := flow.Decode(data)
//	if err != nil {
//	    return err
//	}
//	for _, link := range doc.Primary().Links() {
//	    fmt.Println(link.Source, "->", link.Target)
//	}
package flow
