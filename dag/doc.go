// Package dag analyses the link graph of a pipeline.
//
// FindCycles reports every link that lies on a cycle so an editor can mark
// all of them at once, not just the first one found. BuildLevels groups the
// nodes of an acyclic pipeline into execution levels:
//
//	g := dag.FromPipeline(doc.Primary())
//	if cycles := dag.FindCycles(g.Edges); len(cycles.Links) > 0 {
//	    // report cycles.Links
//	}
//	levels, err := dag.BuildLevels(g)
package dag
