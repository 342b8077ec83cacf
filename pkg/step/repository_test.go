package step

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAssignsSequentialIDs(t *testing.T) {
	repo := NewRepository()
	a := Add(repo, &CartesianPoint{X: 1})
	b := Add(repo, &CartesianPoint{X: 2})
	c := Add(repo, &VertexPoint{Point: b})

	assert.Equal(t, 1, a.ID())
	assert.Equal(t, 2, b.ID())
	assert.Equal(t, 3, c.ID())
	assert.Equal(t, 3, repo.Len())

	var order []int
	repo.Each(func(id int, _ Entity) { order = append(order, id) })
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestResolve(t *testing.T) {
	repo := NewRepository()
	p := Add(repo, &CartesianPoint{X: 1, Y: 2, Z: 3})
	v := Add(repo, &VertexPoint{Point: p})

	got, ok := p.Resolve(repo)
	require.True(t, ok)
	assert.Equal(t, 2.0, got.Y)

	vertex, ok := v.Resolve(repo)
	require.True(t, ok)
	assert.Equal(t, p, vertex.Point)

	t.Run("foreign repository", func(t *testing.T) {
		other := NewRepository()
		Add(other, &CartesianPoint{})
		_, ok := p.Resolve(other)
		assert.False(t, ok)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, ok := p.Resolve(nil)
		assert.False(t, ok)
	})

	t.Run("kind mismatch", func(t *testing.T) {
		wrong := Ref[*Direction]{id: p.ID(), repo: repo}
		_, ok := wrong.Resolve(repo)
		assert.False(t, ok)
	})

	t.Run("out of range", func(t *testing.T) {
		dangling := Ref[*CartesianPoint]{id: 99, repo: repo}
		_, ok := dangling.Resolve(repo)
		assert.False(t, ok)
	})

	t.Run("zero ref", func(t *testing.T) {
		var zero Ref[*CartesianPoint]
		assert.True(t, zero.IsZero())
		_, ok := zero.Resolve(repo)
		assert.False(t, ok)
	})

	t.Run("untyped", func(t *testing.T) {
		e, ok := v.Untyped().Resolve(repo)
		require.True(t, ok)
		assert.Equal(t, "VERTEX_POINT", e.Keyword())
	})
}

func TestCountIncludesComplexParts(t *testing.T) {
	repo := NewRepository()
	Add(repo, &CartesianPoint{})
	Add(repo, NewComplex(
		Part{Keyword: "SI_UNIT", Attributes: []Value{Enum("MILLI"), Enum("METRE")}},
		Part{Keyword: "LENGTH_UNIT"},
		Part{Keyword: "NAMED_UNIT", Attributes: []Value{Derived}},
	))

	assert.Equal(t, 1, repo.Count("CARTESIAN_POINT"))
	assert.Equal(t, 1, repo.Count("LENGTH_UNIT"))
	assert.Equal(t, 1, repo.Count("SI_UNIT"))
	assert.Equal(t, 0, repo.Count("PLANE_ANGLE_UNIT"))
}

func TestReferences(t *testing.T) {
	repo := NewRepository()
	p := Add(repo, &CartesianPoint{})
	a := Add(repo, &Direction{Z: 1})
	r := Add(repo, &Direction{X: 1})
	place := &Axis2Placement3D{Location: p, Axis: a, RefDirection: r}

	refs := References(place)
	require.Len(t, refs, 3)
	assert.Equal(t, 1, refs[0].ID())
	assert.Equal(t, 2, refs[1].ID())
	assert.Equal(t, 3, refs[2].ID())

	unit := Add(repo, NewComplex(Part{Keyword: "LENGTH_UNIT"}))
	ctx := NewComplex(Part{
		Keyword:    "GLOBAL_UNIT_ASSIGNED_CONTEXT",
		Attributes: []Value{List{unit}},
	})
	refs = References(ctx)
	require.Len(t, refs, 1)
	assert.Equal(t, unit.ID(), refs[0].ID())

	u := &UncertaintyMeasureWithUnit{Value: Typed{Keyword: "LENGTH_MEASURE", Value: Real(1e-5)}, Unit: unit}
	assert.Len(t, References(u), 1)
}

func TestNewComplexSortsParts(t *testing.T) {
	c := NewComplex(
		Part{Keyword: "SI_UNIT"},
		Part{Keyword: "LENGTH_UNIT"},
		Part{Keyword: "NAMED_UNIT"},
	)
	assert.Equal(t, "LENGTH_UNIT+NAMED_UNIT+SI_UNIT", c.Keyword())
	assert.Nil(t, c.Attributes())
}
