// Package knowledge provides the in-memory knowledge graph a research session
// builds while it discovers sources.
//
// Nodes are upserted by ID. Edges are directed, typed and weighted, and the
// graph is a multigraph: the same pair of nodes may be linked any number of
// times, with the same or different relations. An edge can only be added once
// both of its endpoints exist; otherwise AddEdge returns a *ReferenceError and
// the graph is unchanged.
//
//	g := knowledge.NewGraph()
//	g.AddNode(knowledge.Node{ID: "https://go.dev", Type: knowledge.NodeTypeSource})
//	g.AddNode(knowledge.NewNode("query:go", "go memory model"))
//	if err := g.AddEdge(knowledge.NewEdge("query:go", "https://go.dev", "cites")); err != nil {
//		return err
//	}
//	g.GetNeighbors("query:go") // ["https://go.dev"]
//
// All accessors return copies, so callers may modify what they get back.
package knowledge
