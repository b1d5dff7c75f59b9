package problems

import "github.com/kbukum/pipelinekit/flow"

// Severity follows the editor diagnostic levels.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Type tags the kind of a problem.
type Type string

const (
	CircularReference Type = "circularReference"
	MissingProperty   Type = "missingProperty"
	InvalidProperty   Type = "invalidProperty"
	MissingComponent  Type = "missingComponent"
)

// Range is a byte span of the validated document text.
type Range struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// Info identifies what a problem is about. PipelineID is always set; the
// other fields depend on Type.
type Info struct {
	Type       Type   `json:"type"`
	PipelineID string `json:"pipelineID"`
	NodeID     string `json:"nodeID,omitempty"`
	Property   string `json:"property,omitempty"`
	LinkID     string `json:"linkID,omitempty"`
	Op         string `json:"op,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Problem is one validation finding.
type Problem struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Range    Range    `json:"range"`
	Info     Info     `json:"info"`
}

// ForNode returns the problems attached to a node.
func ForNode(problems []Problem, nodeID string) []Problem {
	var out []Problem
	for _, p := range problems {
		if p.Info.NodeID == nodeID {
			out = append(out, p)
		}
	}
	return out
}

// AffectedSupernodes returns every supernode whose subflow has a problem,
// directly or through further nesting. Each supernode appears once, in the
// order it is reached walking up from the problem pipelines.
func AffectedSupernodes(doc *flow.Document, problems []Problem) []flow.SupernodeRef {
	parents := doc.Parents()

	var queue []string
	flagged := map[string]bool{}
	for _, p := range problems {
		if id := p.Info.PipelineID; !flagged[id] {
			flagged[id] = true
			queue = append(queue, id)
		}
	}

	var out []flow.SupernodeRef
	seen := map[flow.SupernodeRef]bool{}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, ref := range parents[id] {
			if seen[ref] {
				continue
			}
			seen[ref] = true
			out = append(out, ref)
			if !flagged[ref.PipelineID] {
				flagged[ref.PipelineID] = true
				queue = append(queue, ref.PipelineID)
			}
		}
	}
	return out
}

// Position converts a byte offset into a 1-based line and column.
func Position(text []byte, offset int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	line, col = 1, 1
	for _, b := range text[:max(offset, 0)] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
