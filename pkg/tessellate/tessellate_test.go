package tessellate_test

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/stepforge/pkg/graph"
	"github.com/chazu/stepforge/pkg/kernel"
	"github.com/chazu/stepforge/pkg/kernel/sdfx"
	"github.com/chazu/stepforge/pkg/tessellate"
)

// newKernel returns a coarse sdfx kernel for testing.
func newKernel() kernel.Kernel {
	return sdfx.NewWithCells(24)
}

// makeCube creates a cuboid primitive node with the given name and size.
func makeCube(name string, x, y, z float64) *graph.Node {
	return &graph.Node{
		ID:   graph.NewNodeID("defpart/" + name),
		Kind: graph.NodePrimitive,
		Name: name,
		Data: graph.CuboidData{Size: graph.Vec3{X: x, Y: y, Z: z}},
	}
}

// makePlaceTransform creates a transform node with a translation.
func makePlaceTransform(name string, tx, ty, tz float64, children ...graph.NodeID) *graph.Node {
	t := graph.Vec3{X: tx, Y: ty, Z: tz}
	return &graph.Node{
		ID:       graph.NewNodeID("place/" + name),
		Kind:     graph.NodeTransform,
		Children: children,
		Data:     graph.TransformData{Translation: &t},
	}
}

// makeGroup creates a group node with children.
func makeGroup(name string, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID("assembly/" + name),
		Kind:     graph.NodeGroup,
		Name:     name,
		Children: children,
		Data:     graph.GroupData{Description: name},
	}
}

// meshBounds returns the axis-aligned bounds of a mesh.
func meshBounds(m *kernel.Mesh) (min, max [3]float64) {
	for a := 0; a < 3; a++ {
		min[a], max[a] = math.Inf(1), math.Inf(-1)
	}
	for i := 0; i < m.VertexCount(); i++ {
		for a := 0; a < 3; a++ {
			v := float64(m.Vertices[i*3+a])
			min[a] = math.Min(min[a], v)
			max[a] = math.Max(max[a], v)
		}
	}
	return min, max
}

func TestSingleCube(t *testing.T) {
	g := graph.New()
	cube := makeCube("block", 10, 20, 30)
	g.AddNode(cube)
	g.AddRoot(cube.ID)

	meshes, err := tessellate.Tessellate(g, newKernel())
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(meshes))
	}
	if meshes[0].PartName != "block" {
		t.Errorf("PartName = %q, want %q", meshes[0].PartName, "block")
	}
	if meshes[0].IsEmpty() {
		t.Error("mesh is empty")
	}
}

func TestPlacementMovesMesh(t *testing.T) {
	g := graph.New()
	cube := makeCube("block", 10, 10, 10)
	place := makePlaceTransform("block", 100, 0, 0, cube.ID)
	group := makeGroup("asm", place.ID)
	for _, n := range []*graph.Node{cube, place, group} {
		g.AddNode(n)
	}
	g.AddRoot(group.ID)

	meshes, err := tessellate.Tessellate(g, newKernel())
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(meshes))
	}
	min, max := meshBounds(meshes[0])
	center := (min[0] + max[0]) / 2
	if math.Abs(center-100) > 1 {
		t.Errorf("mesh x center = %f, want ~100", center)
	}
}

func TestMultipleParts(t *testing.T) {
	g := graph.New()
	a := makeCube("a", 10, 10, 10)
	b := makeCube("b", 5, 5, 5)
	group := makeGroup("asm", a.ID, b.ID)
	for _, n := range []*graph.Node{a, b, group} {
		g.AddNode(n)
	}
	g.AddRoot(group.ID)

	meshes, err := tessellate.Tessellate(g, newKernel())
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(meshes) != 2 || meshes[0].PartName != "a" || meshes[1].PartName != "b" {
		t.Fatalf("unexpected meshes: %d", len(meshes))
	}
}

func TestNilAndEmptyGraph(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil, newKernel())
	if err != nil || meshes != nil {
		t.Errorf("Tessellate(nil) = %v, %v", meshes, err)
	}
	meshes, err = tessellate.Tessellate(graph.New(), newKernel())
	if err != nil || len(meshes) != 0 {
		t.Errorf("Tessellate(empty) = %v, %v", meshes, err)
	}
}

func TestNonPositiveSize(t *testing.T) {
	_, err := tessellate.Placed(newKernel(), graph.Placed{
		Name:  "flat",
		Size:  graph.Vec3{X: 10, Y: 0, Z: 10},
		Frame: sdf.Identity3d(),
	})
	if err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestFlattenErrorPropagates(t *testing.T) {
	g := graph.New()
	g.AddRoot(graph.NewNodeID("ghost"))
	if _, err := tessellate.Tessellate(g, newKernel()); err == nil {
		t.Fatal("expected error for missing root")
	}
}
