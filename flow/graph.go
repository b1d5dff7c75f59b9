package flow

// LinkKind separates data links from comment links.
type LinkKind string

const (
	DataLink    LinkKind = "data"
	CommentLink LinkKind = "comment"
)

// Link is a flattened directed edge between two ids of one pipeline.
// Path locates the stored link entry relative to its pipeline, e.g.
// ["nodes", 2, "inputs", 0, "links", 1].
type Link struct {
	ID     string
	Source string
	Target string
	Kind   LinkKind
	Path   []any
}

// FindNode returns the node with the given id.
func (p *Pipeline) FindNode(id string) *Node {
	for i := range p.Nodes {
		if p.Nodes[i].ID == id {
			return &p.Nodes[i]
		}
	}
	return nil
}

// NodeIndex returns the position of a node in Nodes, or -1.
func (p *Pipeline) NodeIndex(id string) int {
	for i := range p.Nodes {
		if p.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Links returns the data links of the pipeline in storage order. Links whose
// source node is not in this pipeline are dropped.
func (p *Pipeline) Links() []Link {
	var links []Link
	for n, node := range p.Nodes {
		for i, input := range node.Inputs {
			for l, ref := range input.Links {
				if p.FindNode(ref.NodeIDRef) == nil {
					continue
				}
				links = append(links, Link{
					ID:     ref.ID,
					Source: ref.NodeIDRef,
					Target: node.ID,
					Kind:   DataLink,
					Path:   []any{"nodes", n, "inputs", i, "links", l},
				})
			}
		}
	}
	return links
}

// CommentLinks returns one link per comment association stored under
// app_data.ui_data.comments.
func (p *Pipeline) CommentLinks() []Link {
	uiData, _ := p.AppData["ui_data"].(map[string]any)
	comments, _ := uiData["comments"].([]any)
	var links []Link
	for c, raw := range comments {
		comment, _ := raw.(map[string]any)
		commentID, _ := comment["id"].(string)
		refs, _ := comment["associated_id_refs"].([]any)
		for r, rawRef := range refs {
			ref, _ := rawRef.(map[string]any)
			target, _ := ref["node_ref"].(string)
			if target == "" {
				continue
			}
			id, _ := ref["id"].(string)
			if id == "" {
				id = commentID + "-" + target
			}
			links = append(links, Link{
				ID:     id,
				Source: commentID,
				Target: target,
				Kind:   CommentLink,
				Path:   []any{"app_data", "ui_data", "comments", c, "associated_id_refs", r},
			})
		}
	}
	return links
}

// AllLinks returns data links followed by comment links.
func (p *Pipeline) AllLinks() []Link {
	return append(p.Links(), p.CommentLinks()...)
}

// DataLinks filters a link list down to data links.
func DataLinks(links []Link) []Link {
	out := make([]Link, 0, len(links))
	for _, l := range links {
		if l.Kind != CommentLink {
			out = append(out, l)
		}
	}
	return out
}

// Supernodes returns the supernodes of the pipeline.
func (p *Pipeline) Supernodes() []*Node {
	var out []*Node
	for i := range p.Nodes {
		if p.Nodes[i].Type == SuperNode {
			out = append(out, &p.Nodes[i])
		}
	}
	return out
}

// SubflowID returns the id of the pipeline a supernode stands in for.
func (n *Node) SubflowID() string {
	if n.SubflowRef == nil {
		return ""
	}
	return n.SubflowRef.PipelineIDRef
}

// Label returns the display label of a node: app_data.ui_data.label, then
// app_data.label, then the node id.
func (n *Node) Label() string {
	if uiData, ok := n.AppData["ui_data"].(map[string]any); ok {
		if label, ok := uiData["label"].(string); ok && label != "" {
			return label
		}
	}
	if label, ok := n.AppData["label"].(string); ok && label != "" {
		return label
	}
	return n.ID
}

// FindNode searches the primary pipeline and then the subflows of its
// supernodes, returning the node and the pipeline that owns it.
func (d *Document) FindNode(id string) (*Node, *Pipeline) {
	primary := d.Primary()
	if primary == nil {
		return nil, nil
	}
	visited := map[string]bool{}
	queue := []*Pipeline{primary}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if visited[p.ID] {
			continue
		}
		visited[p.ID] = true
		if n := p.FindNode(id); n != nil {
			return n, p
		}
		for _, sn := range p.Supernodes() {
			if sub := d.Pipeline(sn.SubflowID()); sub != nil {
				queue = append(queue, sub)
			}
		}
	}
	return nil, nil
}

// Parents maps each pipeline id to the supernodes, across all pipelines,
// whose subflow is that pipeline.
func (d *Document) Parents() map[string][]SupernodeRef {
	parents := make(map[string][]SupernodeRef)
	for i := range d.Pipelines {
		p := &d.Pipelines[i]
		for _, sn := range p.Supernodes() {
			sub := sn.SubflowID()
			if sub == "" {
				continue
			}
			parents[sub] = append(parents[sub], SupernodeRef{PipelineID: p.ID, NodeID: sn.ID})
		}
	}
	return parents
}

// SupernodeRef identifies a supernode by its owning pipeline.
type SupernodeRef struct {
	PipelineID string `json:"pipeline_id"`
	NodeID     string `json:"node_id"`
}
