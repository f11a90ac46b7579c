package knowledge

import (
	"slices"
	"sync"
)

// Graph is an in-memory knowledge graph: nodes keyed by ID plus a directed
// multigraph of edges. A Graph belongs to a single research session.
//
// The adjacency index duplicates information held in the edge list so that
// neighbor lookups do not rescan every edge. It always satisfies:
//
//	adjacency[x] == [e.TargetID for e in edges if e.SourceID == x] (in order)
//
// Every mutation of edges goes through AddEdge or Clear, which keep both in step.
type Graph struct {
	mu        sync.RWMutex
	nodes     map[string]Node
	order     []string // node IDs in first-insertion order
	edges     []Edge
	adjacency map[string][]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:     make(map[string]Node),
		adjacency: make(map[string][]string),
	}
}

// AddNode inserts node or replaces the node with the same ID. A replaced node
// keeps its original position in AllNodes.
func (g *Graph) AddNode(node Node) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if node.Type == "" {
		node.Type = NodeTypeGeneral
	}
	if _, exists := g.nodes[node.ID]; !exists {
		g.order = append(g.order, node.ID)
	}
	g.nodes[node.ID] = node.clone()
}

// AddEdge appends edge to the graph. Both endpoints must already be present;
// otherwise a *ReferenceError is returned and nothing changes. The weight is
// stored as given; NewEdge supplies DefaultEdgeWeight.
func (g *Graph) AddEdge(edge Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var missing []string
	if _, ok := g.nodes[edge.SourceID]; !ok {
		missing = append(missing, edge.SourceID)
	}
	if _, ok := g.nodes[edge.TargetID]; !ok {
		missing = append(missing, edge.TargetID)
	}
	if len(missing) > 0 {
		return &ReferenceError{Kind: ReferenceMissingEndpoint, Edge: edge, Missing: missing}
	}

	g.edges = append(g.edges, edge.clone())
	g.adjacency[edge.SourceID] = append(g.adjacency[edge.SourceID], edge.TargetID)
	return nil
}

// GetNode returns the node with the given ID. The boolean is false when no
// such node exists.
func (g *Graph) GetNode(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// GetNeighbors returns the target IDs of id's outgoing edges in insertion
// order, duplicates included. Unknown IDs yield an empty slice.
func (g *Graph) GetNeighbors(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	neighbors := g.adjacency[id]
	if len(neighbors) == 0 {
		return []string{}
	}
	return slices.Clone(neighbors)
}

// GetEdgesBetween returns every edge from sourceID to targetID in insertion order.
func (g *Graph) GetEdgesBetween(sourceID, targetID string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]Edge, 0)
	for _, e := range g.edges {
		if e.SourceID == sourceID && e.TargetID == targetID {
			result = append(result, e.clone())
		}
	}
	return result
}

// AllNodes returns a copy of every node in insertion order.
func (g *Graph) AllNodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		result = append(result, g.nodes[id].clone())
	}
	return result
}

// AllEdges returns a copy of every edge in insertion order.
func (g *Graph) AllEdges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		result = append(result, e.clone())
	}
	return result
}

// NodesByType returns the nodes of type t in insertion order.
func (g *Graph) NodesByType(t NodeType) []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]Node, 0)
	for _, id := range g.order {
		if n := g.nodes[id]; n.Type == t {
			result = append(result, n.clone())
		}
	}
	return result
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Clear removes all nodes, edges and adjacency entries. The graph stays usable.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make(map[string]Node)
	g.order = nil
	g.edges = nil
	g.adjacency = make(map[string][]string)
}

// Snapshot is a point-in-time, JSON-serializable view of a graph.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Snapshot returns nodes and edges captured under a single lock.
func (g *Graph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Snapshot{
		Nodes: make([]Node, 0, len(g.order)),
		Edges: make([]Edge, 0, len(g.edges)),
	}
	for _, id := range g.order {
		s.Nodes = append(s.Nodes, g.nodes[id].clone())
	}
	for _, e := range g.edges {
		s.Edges = append(s.Edges, e.clone())
	}
	return s
}
