package knowledge

import "maps"

// NodeType tags what a node represents.
type NodeType string

const (
	NodeTypeGeneral NodeType = "general"
	NodeTypeSource  NodeType = "source"
	NodeTypeConcept NodeType = "concept"
)

// DefaultEdgeWeight is the weight NewEdge gives new edges.
const DefaultEdgeWeight = 1.0

// Node is a fact or source discovered during research. Nodes are identified
// by ID: adding a node whose ID already exists replaces it.
type Node struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Source   string         `json:"source,omitempty"` // origin URL, if any
	Type     NodeType       `json:"node_type"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Edge is a directed, typed, weighted relationship between two nodes.
type Edge struct {
	SourceID string         `json:"source_id"`
	TargetID string         `json:"target_id"`
	Relation string         `json:"relation"`
	Weight   float64        `json:"weight"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewNode creates a general node with empty metadata.
func NewNode(id, content string) Node {
	return Node{
		ID:       id,
		Content:  content,
		Type:     NodeTypeGeneral,
		Metadata: make(map[string]any),
	}
}

// NewEdge creates an edge with the default weight.
func NewEdge(sourceID, targetID, relation string) Edge {
	return Edge{
		SourceID: sourceID,
		TargetID: targetID,
		Relation: relation,
		Weight:   DefaultEdgeWeight,
		Metadata: make(map[string]any),
	}
}

func (n Node) clone() Node {
	n.Metadata = maps.Clone(n.Metadata)
	return n
}

func (e Edge) clone() Edge {
	e.Metadata = maps.Clone(e.Metadata)
	return e
}
