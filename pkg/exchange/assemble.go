package exchange

import (
	"github.com/chazu/stepforge/pkg/step"
)

// ---------------------------------------------------------------------------
// Units and geometric context
// ---------------------------------------------------------------------------

// siUnit returns a complex SI unit instance of the given kind. An empty
// prefix is written as "$".
func siUnit(kind, prefix, name string) *step.Complex {
	var p step.Value = step.Omitted
	if prefix != "" {
		p = step.Enum(prefix)
	}
	return step.NewComplex(
		step.Part{Keyword: kind},
		step.Part{Keyword: "NAMED_UNIT", Attributes: []step.Value{step.Derived}},
		step.Part{Keyword: "SI_UNIT", Attributes: []step.Value{p, step.Enum(name)}},
	)
}

// context appends the unit, uncertainty and geometric context records and
// returns the context.
func (c *Converter) context(repo *step.Repository, name string) step.Ref[*step.Complex] {
	length := step.Add(repo, siUnit("LENGTH_UNIT", c.cfg.Units.LengthPrefix, "METRE"))
	angle := step.Add(repo, siUnit("PLANE_ANGLE_UNIT", "", "RADIAN"))
	solidAngle := step.Add(repo, siUnit("SOLID_ANGLE_UNIT", "", "STERADIAN"))

	uncertainty := step.Add(repo, &step.UncertaintyMeasureWithUnit{
		Value:       step.Typed{Keyword: "LENGTH_MEASURE", Value: step.Real(c.cfg.Units.Uncertainty)},
		Unit:        length,
		Name:        "distance_accuracy_value",
		Description: "confusion accuracy",
	})

	return step.Add(repo, step.NewComplex(
		step.Part{Keyword: "GEOMETRIC_REPRESENTATION_CONTEXT", Attributes: []step.Value{step.Integer(3)}},
		step.Part{Keyword: "GLOBAL_UNCERTAINTY_ASSIGNED_CONTEXT", Attributes: []step.Value{step.List{uncertainty}}},
		step.Part{Keyword: "GLOBAL_UNIT_ASSIGNED_CONTEXT", Attributes: []step.Value{step.List{length, angle, solidAngle}}},
		step.Part{Keyword: "REPRESENTATION_CONTEXT", Attributes: []step.Value{step.String(name), step.String("3D")}},
	))
}

// ---------------------------------------------------------------------------
// Product structure
// ---------------------------------------------------------------------------

// assemble wraps solid in its shape representation and the product
// chain. Every record it adds references only records added before it.
// It returns the validation roots: the shape definition representation
// and the application protocol definition.
func (c *Converter) assemble(repo *step.Repository, name string, solid step.Ref[*step.ManifoldSolidBrep]) []step.Reference {
	geometric := c.context(repo, name)
	shape := step.Add(repo, &step.AdvancedBrepShapeRepresentation{
		Name:    name,
		Items:   []step.Ref[step.Entity]{solid.Untyped()},
		Context: geometric,
	})

	app := step.Add(repo, &step.ApplicationContext{Application: c.cfg.Schema.ApplicationContext})
	apd := step.Add(repo, &step.ApplicationProtocolDefinition{
		Status:     c.cfg.Schema.ProtocolStatus,
		SchemaName: c.cfg.Schema.ProtocolName,
		Year:       c.cfg.Schema.ProtocolYear,
		Context:    app,
	})
	productContext := step.Add(repo, &step.ProductContext{
		Frame:          app,
		DisciplineType: c.cfg.Product.Discipline,
	})
	product := step.Add(repo, &step.Product{
		ID:     name,
		Name:   name,
		Frames: []step.Ref[*step.ProductContext]{productContext},
	})
	formation := step.Add(repo, &step.ProductDefinitionFormation{OfProduct: product})
	definitionContext := step.Add(repo, &step.ProductDefinitionContext{
		Name:           c.cfg.Product.DefinitionContext,
		Frame:          app,
		LifeCycleStage: c.cfg.Product.LifeCycleStage,
	})
	definition := step.Add(repo, &step.ProductDefinition{
		ID:        c.cfg.Product.DefinitionID,
		Formation: formation,
		Frame:     definitionContext,
	})
	definitionShape := step.Add(repo, &step.ProductDefinitionShape{Definition: definition})
	sdr := step.Add(repo, &step.ShapeDefinitionRepresentation{
		Definition:         definitionShape,
		UsedRepresentation: shape,
	})
	return []step.Reference{sdr, apd}
}
