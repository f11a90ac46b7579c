package knowledge

import (
	"errors"
	"fmt"
)

// ErrMissingEndpoint is matched by errors.Is for every ReferenceError of kind
// ReferenceMissingEndpoint.
var ErrMissingEndpoint = errors.New("edge endpoint not found")

// ReferenceKind classifies a ReferenceError.
type ReferenceKind int

const (
	// ReferenceMissingEndpoint means an edge named a node that is not in the graph.
	ReferenceMissingEndpoint ReferenceKind = iota
)

func (k ReferenceKind) String() string {
	switch k {
	case ReferenceMissingEndpoint:
		return "missing-endpoint"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ReferenceError is returned by AddEdge when the edge refers to a node that
// does not exist. The graph is left untouched.
type ReferenceError struct {
	Kind ReferenceKind
	// Edge is the rejected edge
	Edge Edge
	// Missing lists the absent node IDs, source first
	Missing []string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: edge %s -[%s]-> %s references unknown node(s) %v",
		e.Kind, e.Edge.SourceID, e.Edge.Relation, e.Edge.TargetID, e.Missing)
}

// Is reports whether target is ErrMissingEndpoint for a missing-endpoint error.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrMissingEndpoint && e.Kind == ReferenceMissingEndpoint
}
