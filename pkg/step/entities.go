package step

import "sort"

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

// CartesianPoint is a point in model space.
type CartesianPoint struct {
	Name    string
	X, Y, Z float64
}

func (*CartesianPoint) Keyword() string { return "CARTESIAN_POINT" }
func (p *CartesianPoint) Attributes() []Value {
	return []Value{String(p.Name), Reals(p.X, p.Y, p.Z)}
}

// Direction is a direction given by its ratios; builders always store
// unit vectors.
type Direction struct {
	Name    string
	X, Y, Z float64
}

func (*Direction) Keyword() string { return "DIRECTION" }
func (d *Direction) Attributes() []Value {
	return []Value{String(d.Name), Reals(d.X, d.Y, d.Z)}
}

// Vector is a direction with a magnitude.
type Vector struct {
	Name        string
	Orientation Ref[*Direction]
	Magnitude   float64
}

func (*Vector) Keyword() string { return "VECTOR" }
func (v *Vector) Attributes() []Value {
	return []Value{String(v.Name), v.Orientation, Real(v.Magnitude)}
}

// Line is an unbounded line through Point along Direction.
type Line struct {
	Name      string
	Point     Ref[*CartesianPoint]
	Direction Ref[*Vector]
}

func (*Line) Keyword() string { return "LINE" }
func (l *Line) Attributes() []Value {
	return []Value{String(l.Name), l.Point, l.Direction}
}

// Axis2Placement3D is a local frame: origin, axis (normal) and reference
// direction.
type Axis2Placement3D struct {
	Name         string
	Location     Ref[*CartesianPoint]
	Axis         Ref[*Direction]
	RefDirection Ref[*Direction]
}

func (*Axis2Placement3D) Keyword() string { return "AXIS2_PLACEMENT_3D" }
func (a *Axis2Placement3D) Attributes() []Value {
	return []Value{String(a.Name), a.Location, a.Axis, a.RefDirection}
}

// Plane is an unbounded plane positioned by a placement.
type Plane struct {
	Name     string
	Position Ref[*Axis2Placement3D]
}

func (*Plane) Keyword() string { return "PLANE" }
func (p *Plane) Attributes() []Value {
	return []Value{String(p.Name), p.Position}
}

// ---------------------------------------------------------------------------
// Topology
// ---------------------------------------------------------------------------

// VertexPoint is a topological vertex located at a point.
type VertexPoint struct {
	Name  string
	Point Ref[*CartesianPoint]
}

func (*VertexPoint) Keyword() string { return "VERTEX_POINT" }
func (v *VertexPoint) Attributes() []Value {
	return []Value{String(v.Name), v.Point}
}

// EdgeCurve is a topological edge between two vertices carried by a line.
type EdgeCurve struct {
	Name      string
	Start     Ref[*VertexPoint]
	End       Ref[*VertexPoint]
	Geometry  Ref[*Line]
	SameSense bool
}

func (*EdgeCurve) Keyword() string { return "EDGE_CURVE" }
func (c *EdgeCurve) Attributes() []Value {
	return []Value{String(c.Name), c.Start, c.End, c.Geometry, Logical(c.SameSense)}
}

// OrientedEdge is an edge as used by one loop. Its start and end are
// derived from the edge and the orientation.
type OrientedEdge struct {
	Name        string
	Edge        Ref[*EdgeCurve]
	Orientation bool
}

func (*OrientedEdge) Keyword() string { return "ORIENTED_EDGE" }
func (o *OrientedEdge) Attributes() []Value {
	return []Value{String(o.Name), Derived, Derived, o.Edge, Logical(o.Orientation)}
}

// EdgeLoop is a closed chain of oriented edges.
type EdgeLoop struct {
	Name  string
	Edges []Ref[*OrientedEdge]
}

func (*EdgeLoop) Keyword() string { return "EDGE_LOOP" }
func (l *EdgeLoop) Attributes() []Value {
	return []Value{String(l.Name), RefList(l.Edges)}
}

// FaceOuterBound is the outer boundary of a face.
type FaceOuterBound struct {
	Name        string
	Bound       Ref[*EdgeLoop]
	Orientation bool
}

func (*FaceOuterBound) Keyword() string { return "FACE_OUTER_BOUND" }
func (b *FaceOuterBound) Attributes() []Value {
	return []Value{String(b.Name), b.Bound, Logical(b.Orientation)}
}

// AdvancedFace is a bounded face on a surface.
type AdvancedFace struct {
	Name      string
	Bounds    []Ref[*FaceOuterBound]
	Surface   Ref[*Plane]
	SameSense bool
}

func (*AdvancedFace) Keyword() string { return "ADVANCED_FACE" }
func (f *AdvancedFace) Attributes() []Value {
	return []Value{String(f.Name), RefList(f.Bounds), f.Surface, Logical(f.SameSense)}
}

// ClosedShell is a set of faces enclosing a volume.
type ClosedShell struct {
	Name  string
	Faces []Ref[*AdvancedFace]
}

func (*ClosedShell) Keyword() string { return "CLOSED_SHELL" }
func (s *ClosedShell) Attributes() []Value {
	return []Value{String(s.Name), RefList(s.Faces)}
}

// ManifoldSolidBrep is a solid bounded by one closed shell.
type ManifoldSolidBrep struct {
	Name  string
	Outer Ref[*ClosedShell]
}

func (*ManifoldSolidBrep) Keyword() string { return "MANIFOLD_SOLID_BREP" }
func (m *ManifoldSolidBrep) Attributes() []Value {
	return []Value{String(m.Name), m.Outer}
}

// ---------------------------------------------------------------------------
// Representation and context
// ---------------------------------------------------------------------------

// Part is one partial entity of a Complex instance.
type Part struct {
	Keyword    string
	Attributes []Value
}

// Complex is an instance of several partial entities, written as
// "( A(...) B(...) )". Units and representation contexts need it.
type Complex struct {
	Parts []Part
}

// NewComplex returns a complex instance with parts sorted by keyword, the
// order the exchange-file encoding requires.
func NewComplex(parts ...Part) *Complex {
	sorted := append([]Part(nil), parts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Keyword < sorted[j].Keyword })
	return &Complex{Parts: sorted}
}

// Keyword joins the partial keywords with "+".
func (c *Complex) Keyword() string {
	s := ""
	for i, p := range c.Parts {
		if i > 0 {
			s += "+"
		}
		s += p.Keyword
	}
	return s
}

// Attributes is empty for complex instances; see Parts.
func (*Complex) Attributes() []Value { return nil }

// UncertaintyMeasureWithUnit declares the model's distance tolerance.
type UncertaintyMeasureWithUnit struct {
	Value       Value
	Unit        Ref[*Complex]
	Name        string
	Description string
}

func (*UncertaintyMeasureWithUnit) Keyword() string { return "UNCERTAINTY_MEASURE_WITH_UNIT" }
func (u *UncertaintyMeasureWithUnit) Attributes() []Value {
	return []Value{u.Value, u.Unit, String(u.Name), String(u.Description)}
}

// AdvancedBrepShapeRepresentation groups solids with their geometric
// context.
type AdvancedBrepShapeRepresentation struct {
	Name    string
	Items   []Ref[Entity]
	Context Ref[*Complex]
}

func (*AdvancedBrepShapeRepresentation) Keyword() string {
	return "ADVANCED_BREP_SHAPE_REPRESENTATION"
}
func (r *AdvancedBrepShapeRepresentation) Attributes() []Value {
	return []Value{String(r.Name), RefList(r.Items), r.Context}
}

// ---------------------------------------------------------------------------
// Product structure
// ---------------------------------------------------------------------------

// ApplicationContext names the application protocol's domain.
type ApplicationContext struct {
	Application string
}

func (*ApplicationContext) Keyword() string { return "APPLICATION_CONTEXT" }
func (a *ApplicationContext) Attributes() []Value {
	return []Value{String(a.Application)}
}

// ApplicationProtocolDefinition ties an application context to a schema.
type ApplicationProtocolDefinition struct {
	Status     string
	SchemaName string
	Year       int
	Context    Ref[*ApplicationContext]
}

func (*ApplicationProtocolDefinition) Keyword() string { return "APPLICATION_PROTOCOL_DEFINITION" }
func (a *ApplicationProtocolDefinition) Attributes() []Value {
	return []Value{String(a.Status), String(a.SchemaName), Integer(a.Year), a.Context}
}

// ProductContext is the discipline a product is defined in.
type ProductContext struct {
	Name           string
	Frame          Ref[*ApplicationContext]
	DisciplineType string
}

func (*ProductContext) Keyword() string { return "PRODUCT_CONTEXT" }
func (p *ProductContext) Attributes() []Value {
	return []Value{String(p.Name), p.Frame, String(p.DisciplineType)}
}

// Product is the named item the solid describes.
type Product struct {
	ID          string
	Name        string
	Description string
	Frames      []Ref[*ProductContext]
}

func (*Product) Keyword() string { return "PRODUCT" }
func (p *Product) Attributes() []Value {
	return []Value{String(p.ID), String(p.Name), String(p.Description), RefList(p.Frames)}
}

// ProductDefinitionFormation is a version of a product.
type ProductDefinitionFormation struct {
	ID          string
	Description string
	OfProduct   Ref[*Product]
}

func (*ProductDefinitionFormation) Keyword() string { return "PRODUCT_DEFINITION_FORMATION" }
func (p *ProductDefinitionFormation) Attributes() []Value {
	return []Value{String(p.ID), String(p.Description), p.OfProduct}
}

// ProductDefinitionContext is the life-cycle stage of a definition.
type ProductDefinitionContext struct {
	Name           string
	Frame          Ref[*ApplicationContext]
	LifeCycleStage string
}

func (*ProductDefinitionContext) Keyword() string { return "PRODUCT_DEFINITION_CONTEXT" }
func (p *ProductDefinitionContext) Attributes() []Value {
	return []Value{String(p.Name), p.Frame, String(p.LifeCycleStage)}
}

// ProductDefinition is a view of a product version.
type ProductDefinition struct {
	ID          string
	Description string
	Formation   Ref[*ProductDefinitionFormation]
	Frame       Ref[*ProductDefinitionContext]
}

func (*ProductDefinition) Keyword() string { return "PRODUCT_DEFINITION" }
func (p *ProductDefinition) Attributes() []Value {
	return []Value{String(p.ID), String(p.Description), p.Formation, p.Frame}
}

// ProductDefinitionShape is the shape aspect of a product definition.
type ProductDefinitionShape struct {
	Name        string
	Description string
	Definition  Ref[*ProductDefinition]
}

func (*ProductDefinitionShape) Keyword() string { return "PRODUCT_DEFINITION_SHAPE" }
func (p *ProductDefinitionShape) Attributes() []Value {
	return []Value{String(p.Name), String(p.Description), p.Definition}
}

// ShapeDefinitionRepresentation links a product shape to its geometry.
type ShapeDefinitionRepresentation struct {
	Definition         Ref[*ProductDefinitionShape]
	UsedRepresentation Ref[*AdvancedBrepShapeRepresentation]
}

func (*ShapeDefinitionRepresentation) Keyword() string { return "SHAPE_DEFINITION_REPRESENTATION" }
func (s *ShapeDefinitionRepresentation) Attributes() []Value {
	return []Value{s.Definition, s.UsedRepresentation}
}
