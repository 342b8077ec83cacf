package brep

import (
	"github.com/chazu/stepforge/pkg/step"
)

// EdgePair is the (start, end) input of one straight edge.
type EdgePair struct {
	Start, End step.Ref[*step.VertexPoint]
}

// CreateLineEdge adds a straight EDGE_CURVE from start to end. Its carrier
// LINE passes through a copy of the start point along the unit direction
// end-start, with the edge length as the VECTOR magnitude.
//
// Records are added in the order DIRECTION, VECTOR, CARTESIAN_POINT, LINE,
// EDGE_CURVE. Nothing is added when an error is returned.
func CreateLineEdge(repo *step.Repository, start, end step.Ref[*step.VertexPoint]) (step.Ref[*step.EdgeCurve], error) {
	p0, err := VertexPosition(repo, start)
	if err != nil {
		return step.Ref[*step.EdgeCurve]{}, err
	}
	p1, err := VertexPosition(repo, end)
	if err != nil {
		return step.Ref[*step.EdgeCurve]{}, err
	}

	d := p1.Sub(p0)
	length := d.Length()
	if length == 0 {
		return step.Ref[*step.EdgeCurve]{}, &DegenerateEdgeError{Start: start.ID(), End: end.ID(), At: p0}
	}

	dir := step.Add(repo, &step.Direction{X: d.X / length, Y: d.Y / length, Z: d.Z / length})
	vec := step.Add(repo, &step.Vector{Orientation: dir, Magnitude: length})
	origin := step.Add(repo, &step.CartesianPoint{X: p0.X, Y: p0.Y, Z: p0.Z})
	line := step.Add(repo, &step.Line{Point: origin, Direction: vec})
	return step.Add(repo, &step.EdgeCurve{
		Start:     start,
		End:       end,
		Geometry:  line,
		SameSense: true,
	}), nil
}

// CreateLineEdges creates one edge per pair, in order. The first failure
// aborts the batch and no references are returned.
func CreateLineEdges(repo *step.Repository, pairs []EdgePair) ([]step.Ref[*step.EdgeCurve], error) {
	edges := make([]step.Ref[*step.EdgeCurve], 0, len(pairs))
	for _, p := range pairs {
		e, err := CreateLineEdge(repo, p.Start, p.End)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, nil
}

// edgeEnds resolves an edge to its start and end vertices.
func edgeEnds(repo *step.Repository, ref step.Ref[*step.EdgeCurve]) (start, end step.Ref[*step.VertexPoint], err error) {
	e, ok := ref.Resolve(repo)
	if !ok {
		return start, end, &UnresolvedReferenceError{Kind: "EDGE_CURVE", ID: ref.ID()}
	}
	return e.Start, e.End, nil
}
