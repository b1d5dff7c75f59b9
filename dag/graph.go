package dag

import (
	"fmt"

	"github.com/kbukum/pipelinekit/flow"
)

// Graph declares nodes and edges (dependency relationships).
type Graph struct {
	Nodes []string
	Edges []Edge
}

// Edge is a directed link: To depends on From. ID names the link the edge
// was built from.
type Edge struct {
	ID   string
	From string
	To   string
}

// FromPipeline builds a graph over the nodes and data links of a pipeline.
// Comment links never take part.
func FromPipeline(p *flow.Pipeline) *Graph {
	g := &Graph{Nodes: make([]string, 0, len(p.Nodes))}
	for _, n := range p.Nodes {
		g.Nodes = append(g.Nodes, n.ID)
	}
	g.Edges = EdgesOf(p.Links())
	return g
}

// EdgesOf converts flattened links to edges, skipping comment links.
func EdgesOf(links []flow.Link) []Edge {
	edges := make([]Edge, 0, len(links))
	for _, l := range links {
		if l.Kind == flow.CommentLink {
			continue
		}
		edges = append(edges, Edge{ID: l.ID, From: l.Source, To: l.Target})
	}
	return edges
}

// BuildLevels uses Kahn's algorithm to group nodes by dependency level.
// Nodes within the same level have no dependency on each other and keep the
// order in which they were declared.
// Returns an error if a cycle is detected.
func BuildLevels(g *Graph) ([][]string, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	dependents := make(map[string][]string) // from -> [to...]

	for _, name := range g.Nodes {
		if _, dup := inDegree[name]; dup {
			return nil, fmt.Errorf("dag: duplicate node %q", name)
		}
		inDegree[name] = 0
	}

	for _, e := range g.Edges {
		if _, ok := inDegree[e.From]; !ok {
			return nil, fmt.Errorf("dag: edge references unknown node %q", e.From)
		}
		if _, ok := inDegree[e.To]; !ok {
			return nil, fmt.Errorf("dag: edge references unknown node %q", e.To)
		}
		inDegree[e.To]++
		dependents[e.From] = append(dependents[e.From], e.To)
	}

	// Collect nodes with no incoming edges (level 0)
	var queue []string
	for _, name := range g.Nodes {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var levels [][]string
	visited := 0

	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		var next []string
		for _, name := range queue {
			for _, dep := range dependents[name] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		queue = next
	}

	if visited != len(g.Nodes) {
		return nil, fmt.Errorf("dag: cycle detected, processed %d of %d nodes", visited, len(g.Nodes))
	}

	return levels, nil
}
