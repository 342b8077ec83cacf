package exchange

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chazu/stepforge/pkg/brep"
	"github.com/chazu/stepforge/pkg/config"
	"github.com/chazu/stepforge/pkg/graph"
	"github.com/chazu/stepforge/pkg/primitive"
	"github.com/chazu/stepforge/pkg/step"
)

var fixedTime = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func newConverter(opts ...Option) *Converter {
	return New(config.Default(), append([]Option{WithClock(func() time.Time { return fixedTime })}, opts...)...)
}

func parse(t *testing.T, doc Document) *step.Document {
	t.Helper()
	parsed, err := step.Parse(strings.NewReader(doc.Text))
	require.NoError(t, err)
	return parsed
}

// reachable returns every record id reachable from id.
func reachable(d *step.Document, id int) map[int]bool {
	seen := map[int]bool{id: true}
	queue := []int{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		rec, ok := d.Get(cur)
		if !ok {
			continue
		}
		for _, ref := range rec.Refs {
			if !seen[ref] {
				seen[ref] = true
				queue = append(queue, ref)
			}
		}
	}
	return seen
}

func TestConvertCubeStructure(t *testing.T) {
	doc, err := newConverter().ConvertCube(primitive.CubeOperation{
		Size:   primitive.Size{10},
		Center: []float64{10, 20, 30},
	})
	require.NoError(t, err)
	assert.Equal(t, "cube", doc.Name)

	assert.True(t, strings.HasPrefix(doc.Text, "ISO-10303-21;"))
	assert.Contains(t, doc.Text, "END-ISO-10303-21;")

	d := parse(t, doc)
	counts := map[string]int{
		"MANIFOLD_SOLID_BREP":                1,
		"CLOSED_SHELL":                       1,
		"ADVANCED_FACE":                      6,
		"VERTEX_POINT":                       8,
		"EDGE_CURVE":                         12,
		"ORIENTED_EDGE":                      24,
		"PLANE":                              6,
		"PRODUCT":                            1,
		"PRODUCT_DEFINITION":                 1,
		"PRODUCT_DEFINITION_SHAPE":           1,
		"SHAPE_DEFINITION_REPRESENTATION":    1,
		"ADVANCED_BREP_SHAPE_REPRESENTATION": 1,
		"APPLICATION_PROTOCOL_DEFINITION":    1,
		"UNCERTAINTY_MEASURE_WITH_UNIT":      1,
		"SI_UNIT":                            3,
	}
	for keyword, want := range counts {
		assert.Equal(t, want, d.Count(keyword), keyword)
	}
	assert.Len(t, d.Records, doc.Entities)
	assert.Empty(t, d.Check())
}

func TestConvertCubeCorners(t *testing.T) {
	doc, err := newConverter().ConvertCube(primitive.CubeOperation{
		Size:   primitive.Size{10},
		Center: []float64{10, 20, 30},
	})
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "(5.,10.,25.)")
	assert.Contains(t, doc.Text, "(15.,30.,35.)")
}

func TestProductChainReachesSolid(t *testing.T) {
	doc, err := newConverter().ConvertCube(primitive.CubeOperation{Name: "block"})
	require.NoError(t, err)
	d := parse(t, doc)

	sdr := d.Find("SHAPE_DEFINITION_REPRESENTATION")
	require.Len(t, sdr, 1)
	apd := d.Find("APPLICATION_PROTOCOL_DEFINITION")
	require.Len(t, apd, 1)

	seen := reachable(d, sdr[0].ID)
	for id := range reachable(d, apd[0].ID) {
		seen[id] = true
	}
	for _, r := range d.Records {
		assert.True(t, seen[r.ID], "#%d %s unreachable", r.ID, r.Keyword())
	}

	solid := d.Find("MANIFOLD_SOLID_BREP")
	require.Len(t, solid, 1)
	assert.True(t, reachable(d, sdr[0].ID)[solid[0].ID])

	assert.ElementsMatch(t, []int{sdr[0].ID, apd[0].ID}, d.Roots())

	product := d.Find("PRODUCT")
	require.Len(t, product, 1)
	assert.Equal(t, []string{"block", "block", ""}, product[0].Strings)
}

func TestHeader(t *testing.T) {
	cfg := config.Default()
	cfg.Metadata.Author = "alice"
	cfg.Metadata.Organization = "acme"
	doc, err := New(cfg, WithClock(func() time.Time { return fixedTime })).
		ConvertCube(primitive.CubeOperation{Name: "plate"})
	require.NoError(t, err)

	assert.Contains(t, doc.Text, "FILE_NAME('plate','2024-03-01T12:30:00',('alice'),('acme'),")
	assert.Contains(t, doc.Text, "FILE_SCHEMA(('AUTOMOTIVE_DESIGN { 1 0 10303 214 1 1 1 1 }'));")
	assert.Contains(t, doc.Text, "FILE_DESCRIPTION(('plate'),'2;1');")
}

func TestUnits(t *testing.T) {
	doc, err := newConverter().ConvertCube(primitive.CubeOperation{})
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "SI_UNIT(.MILLI.,.METRE.)")
	assert.Contains(t, doc.Text, "SI_UNIT($,.RADIAN.)")
	assert.Contains(t, doc.Text, "SI_UNIT($,.STERADIAN.)")
	assert.Contains(t, doc.Text, "LENGTH_MEASURE(1.E-05)")
	assert.Contains(t, doc.Text, "'distance_accuracy_value','confusion accuracy'")

	cfg := config.Default()
	cfg.Units.LengthPrefix = ""
	doc, err = New(cfg).ConvertCube(primitive.CubeOperation{})
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "SI_UNIT($,.METRE.)")
}

func TestConvertIsDeterministic(t *testing.T) {
	op := primitive.CubeOperation{Size: primitive.Size{3, 4, 5}, Rotation: []float64{10, 20, 30}}
	a, err := newConverter().ConvertCube(op)
	require.NoError(t, err)
	b, err := newConverter().ConvertCube(op)
	require.NoError(t, err)
	assert.Equal(t, a.Text, b.Text)
}

func TestConvertErrors(t *testing.T) {
	c := newConverter()

	_, err := c.ConvertCube(primitive.CubeOperation{Size: primitive.Size{0}})
	var degenerate *brep.DegenerateEdgeError
	assert.True(t, errors.As(err, &degenerate), "zero size: %v", err)


	_, err = c.ConvertCube(primitive.CubeOperation{Center: []float64{1}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exchange: cube:")
}

func TestConvertNegativeSize(t *testing.T) {
	doc, err := newConverter().ConvertCube(primitive.CubeOperation{Size: primitive.Size{-2}})
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "(-1.,-1.,-1.)")
	assert.Contains(t, doc.Text, "(1.,1.,1.)")
	assert.Equal(t, 6, parse(t, doc).Count("ADVANCED_FACE"))
}

func TestConvertThinRotatedBoxFarFromOrigin(t *testing.T) {
	tests := []primitive.CubeOperation{
		{Size: primitive.Size{1e-3, 5, 5}, Center: []float64{1e4, 1e4, 1e4}, Rotation: []float64{1, 2, 3}},
		{Size: primitive.Size{1}, Center: []float64{1e6, 1e6, 1e6}, Rotation: []float64{30, 45, 60}},
		{Size: primitive.Size{0.01, 200, 0.02}, Center: []float64{-5e3, 2e3, 7e3}, Rotation: []float64{17, -33, 89}},
	}
	for _, op := range tests {
		doc, err := newConverter().ConvertCube(op)
		require.NoError(t, err, "%+v", op)
		d := parse(t, doc)
		assert.Equal(t, 6, d.Count("ADVANCED_FACE"))
		assert.Empty(t, d.Check())
	}
}

func TestConvertPolyhedron(t *testing.T) {
	p := brep.Polyhedron{
		Vertices: []v3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}},
		Faces: []brep.PolyFace{
			{Loop: []int{0, 2, 1}},
			{Loop: []int{0, 1, 3}},
			{Loop: []int{1, 2, 3}},
			{Loop: []int{0, 3, 2}},
		},
	}
	doc, err := newConverter().ConvertPolyhedron("tetra", p)
	require.NoError(t, err)
	d := parse(t, doc)
	assert.Equal(t, 4, d.Count("ADVANCED_FACE"))
	assert.Equal(t, 6, d.Count("EDGE_CURVE"))
	assert.Equal(t, 1, d.Count("PRODUCT"))
}

func TestConvertDesign(t *testing.T) {
	g := graph.New()
	base := &graph.Node{
		ID:   graph.NewNodeID("defpart/base"),
		Kind: graph.NodePrimitive,
		Name: "base",
		Data: graph.CuboidData{Size: graph.Vec3{X: 10, Y: 10, Z: 10}},
	}
	place := &graph.Node{
		ID:       graph.NewNodeID("place/base/0"),
		Kind:     graph.NodeTransform,
		Children: []graph.NodeID{base.ID},
		Data:     graph.TransformData{Translation: &graph.Vec3{X: 100}},
	}
	root := &graph.Node{
		ID:       graph.NewNodeID("assembly/row"),
		Kind:     graph.NodeGroup,
		Name:     "row",
		Children: []graph.NodeID{base.ID, place.ID},
		Data:     graph.GroupData{},
	}
	for _, n := range []*graph.Node{base, place, root} {
		g.AddNode(n)
	}
	g.AddRoot(root.ID)

	docs, err := newConverter().ConvertDesign(g)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "base", docs[0].Name)
	assert.Equal(t, "base-2", docs[1].Name)
	assert.Contains(t, docs[0].Text, "(-5.,-5.,-5.)")
	assert.Contains(t, docs[1].Text, "(95.,-5.,-5.)")
	assert.Contains(t, docs[1].Text, "(105.,5.,5.)")
}

func TestConvertDesignErrors(t *testing.T) {
	g := graph.New()
	g.AddRoot(graph.NewNodeID("missing"))
	_, err := newConverter().ConvertDesign(g)
	assert.Error(t, err)

	g = graph.New()
	n := &graph.Node{
		ID:   graph.NewNodeID("defpart/flat"),
		Kind: graph.NodePrimitive,
		Name: "flat",
		Data: graph.CuboidData{Size: graph.Vec3{X: 1, Y: 1}},
	}
	g.AddNode(n)
	docs, err := newConverter().ConvertDesign(g)
	assert.Error(t, err)
	assert.Nil(t, docs)
}

// The exported corners bound the same region the mesh kernel fills.
func TestCornersMatchKernelBounds(t *testing.T) {
	box := primitive.Box{Center: v3.Vec{X: 1, Y: 2, Z: 3}, Size: v3.Vec{X: 4, Y: 6, Z: 8}}
	s, err := sdf.Box3D(box.Size, 0)
	require.NoError(t, err)
	s = sdf.Transform3D(s, sdf.Translate3d(box.Center))
	bb := s.BoundingBox()

	c := box.Corners()
	assert.InDelta(t, bb.Min.X, c[0].X, 1e-9)
	assert.InDelta(t, bb.Min.Y, c[0].Y, 1e-9)
	assert.InDelta(t, bb.Min.Z, c[0].Z, 1e-9)
	assert.InDelta(t, bb.Max.X, c[6].X, 1e-9)
	assert.InDelta(t, bb.Max.Y, c[6].Y, 1e-9)
	assert.InDelta(t, bb.Max.Z, c[6].Z, 1e-9)

	_, err = newConverter().ConvertBox("kernel", box)
	require.NoError(t, err)
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := newConverter(WithLogger(zap.New(core))).ConvertCube(primitive.CubeOperation{Name: "logged"})
	require.NoError(t, err)

	entries := logs.FilterMessage("converted").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "logged", fields["name"])
	assert.NotEmpty(t, fields["conversion_id"])
	assert.Greater(t, fields["bytes"], int64(0))
	assert.Equal(t, 1, logs.FilterMessage("solid built").Len())
}

func TestInvalidRecordGraphError(t *testing.T) {
	repo := step.NewRepository()
	other := step.NewRepository()
	foreign := step.Add(other, &step.CartesianPoint{})
	step.Add(repo, &step.VertexPoint{Point: foreign})

	c := newConverter()
	err := c.check(zap.NewNop(), repo)
	require.Error(t, err)

	var invalid *InvalidRecordGraphError
	require.True(t, errors.As(err, &invalid))
	assert.Len(t, invalid.Findings, 1)

	var finding step.ValidationError
	require.True(t, errors.As(err, &finding))
	assert.Equal(t, 1, finding.ID)
	assert.Contains(t, err.Error(), "another repository")
}
