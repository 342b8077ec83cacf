package brep

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// UnresolvedReferenceError reports a reference that does not resolve in the
// repository a builder was given: dangling, foreign or of the wrong kind.
type UnresolvedReferenceError struct {
	Kind string // expected entity keyword
	ID   int
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("brep: unresolved %s reference #%d", e.Kind, e.ID)
}

// DegenerateEdgeError reports an edge whose endpoints coincide.
type DegenerateEdgeError struct {
	Start, End int // vertex record ids
	At         v3.Vec
}

func (e *DegenerateEdgeError) Error() string {
	return fmt.Sprintf("brep: cannot create an edge between coincident vertices #%d and #%d at %v",
		e.Start, e.End, e.At)
}

// NonClosedLoopError reports a face boundary whose edges do not chain
// end-to-start back to the first vertex.
type NonClosedLoopError struct {
	Index int // position in the loop where the chain breaks
	Len   int
}

func (e *NonClosedLoopError) Error() string {
	if e.Len < 3 {
		return fmt.Sprintf("brep: edge loop has %d edges, need at least 3", e.Len)
	}
	return fmt.Sprintf("brep: edge loop of %d edges is not closed at edge %d", e.Len, e.Index)
}

// FaceOrientationError reports a loop whose winding disagrees with the
// plane normal it was given (or, for polyhedra, a face that points into the
// solid).
type FaceOrientationError struct {
	Face   int // face index within a polyhedron, -1 for a single face
	Want   v3.Vec
	Got    v3.Vec
	Reason string
}

func (e *FaceOrientationError) Error() string {
	prefix := "brep: face"
	if e.Face >= 0 {
		prefix = fmt.Sprintf("brep: face %d", e.Face)
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Reason)
	}
	return fmt.Sprintf("%s: loop winds towards %v, plane normal is %v", prefix, e.Got, e.Want)
}

// OpenShellError reports an edge of a polyhedron that is not shared by
// exactly two faces traversing it in opposite directions.
type OpenShellError struct {
	A, B    int // vertex indices of the edge
	Forward int // traversals A->B
	Reverse int // traversals B->A
}

func (e *OpenShellError) Error() string {
	return fmt.Sprintf("brep: edge %d-%d is used %d time(s) forward and %d time(s) reversed, want once each",
		e.A, e.B, e.Forward, e.Reverse)
}

// InvalidPlaneError reports a plane placement that is not an orthonormal
// frame.
type InvalidPlaneError struct {
	Reason string
}

func (e *InvalidPlaneError) Error() string {
	return "brep: invalid plane: " + e.Reason
}

// InvalidPolyhedronError reports malformed polyhedron input: bad indices,
// short loops, too few faces.
type InvalidPolyhedronError struct {
	Reason string
}

func (e *InvalidPolyhedronError) Error() string {
	return "brep: invalid polyhedron: " + e.Reason
}
